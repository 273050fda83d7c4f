package orchestrate

import (
	"context"
	"os"
	"os/exec"
)

// ShellIREmitter runs job.CompilerPath with job.Argv as a real
// subprocess, capturing stderr to job.StderrPath rather than the
// parent's own stderr so concurrent jobs don't interleave output. The
// compiler it invokes is expected to write job.IRPath in the JSON
// lowering format ir.DecodeModule accepts — this emitter only
// orchestrates the subprocess, it never inspects or parses what the
// subprocess writes.
type ShellIREmitter struct{}

func (ShellIREmitter) Emit(ctx context.Context, job CompileJob) (int, error) {
	errFile, err := os.Create(job.StderrPath)
	if err != nil {
		return -1, &CompileError{File: job.SourcePath, Message: "creating stderr capture file", Err: err}
	}
	defer errFile.Close()

	cmd := exec.CommandContext(ctx, job.CompilerPath, job.Argv...)
	cmd.Stderr = errFile

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, &CompileError{File: job.SourcePath, Message: "invoking compiler", Err: err}
}
