package orchestrate

import (
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleRoot walks up from startDir looking for a go.mod, parsing it
// with modfile to confirm it's well-formed before trusting it as a
// root, and returns the directory containing it and the module's
// declared path. Used to resolve compile-database entries and source
// paths relative to the project being analyzed, not this analyzer's
// own module.
func ModuleRoot(startDir string) (dir, modulePath string, err error) {
	dir = startDir
	for {
		modPath := filepath.Join(dir, "go.mod")
		data, readErr := os.ReadFile(modPath)
		if readErr == nil {
			mf, parseErr := modfile.Parse(modPath, data, nil)
			if parseErr == nil && mf.Module != nil {
				return dir, mf.Module.Mod.Path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", &CompileError{File: startDir, Message: "no go.mod found walking up from this directory"}
		}
		dir = parent
	}
}
