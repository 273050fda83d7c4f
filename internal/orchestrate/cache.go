package orchestrate

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// hashJobKey derives the deterministic cache key for a source file
// under a given argv and tool version, combining source bytes, compile
// args, and tool version into a single digest (sha256 — no correctness
// dependence on the specific digest, only on determinism).
func hashJobKey(sourceBytes []byte, argv []string, toolVersion string) string {
	h := sha256.New()
	h.Write(sourceBytes)
	for _, a := range argv {
		h.Write([]byte(a))
	}
	h.Write([]byte(toolVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// PlanJob builds the CompileJob for one source file: a deterministic
// IR/stderr temp-file pair keyed by content hash, and a Cached flag
// set when a matching IR file already exists on disk from a prior run.
func PlanJob(sourcePath, compilerPath string, argv []string, toolVersion, tmpDir string) (CompileJob, error) {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return CompileJob{}, &CompileError{File: sourcePath, Message: "reading source for cache key", Err: err}
	}

	key := hashJobKey(src, argv, toolVersion)
	irPath := filepath.Join(tmpDir, "faultline-"+key+".ll")
	errPath := filepath.Join(tmpDir, "faultline-"+key+".err")

	_, statErr := os.Stat(irPath)
	cached := statErr == nil

	fullArgv := append(append([]string{}, argv...), "-o", irPath, sourcePath)

	return CompileJob{
		SourcePath:   sourcePath,
		CompilerPath: compilerPath,
		Argv:         fullArgv,
		IRPath:       irPath,
		StderrPath:   errPath,
		Cached:       cached,
	}, nil
}
