// Package orchestrate plans and runs the IR-emission side of an
// analysis invocation: resolving a module root, building one CompileJob
// per source file, running an external IR-emitting collaborator under
// bounded parallelism, caching by content hash, and assembling the
// execution-metadata record the output formatters consume.
package orchestrate

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// CompilerInfo is one distinct compiler seen across a set of compile
// jobs, de-duplicated by path.
type CompilerInfo struct {
	Path    string
	Version string
}

// ExecutionMetadata is the provenance record attached to an output
// bundle.
type ExecutionMetadata struct {
	ToolVersion string
	ConfigPath  string
	IROptLevel  string
	IREnabled   bool
	Timestamp   int64 // epoch seconds
	SourceFiles []string
	Compilers   []CompilerInfo
}

// CompileJob is one source file's pending or cached IR-emission work
// item.
type CompileJob struct {
	SourcePath   string
	CompilerPath string
	Argv         []string
	IRPath       string
	StderrPath   string
	Cached       bool
}

// CompileError reports a position-carrying failure from an IR-emission
// or module-discovery step. When Err is set, Error() wraps it with
// eris so a caller unwrapping the chain still reaches the underlying
// OS or subprocess failure with its stack trace intact.
type CompileError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	prefix := e.File
	if e.Line > 0 {
		prefix = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Err != nil {
		return eris.Wrapf(e.Err, "%s: %s", prefix, e.Message).Error()
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// JobResult is the outcome of running one CompileJob.
type JobResult struct {
	Job      CompileJob
	ExitCode int
	Stderr   string
	Err      error
}
