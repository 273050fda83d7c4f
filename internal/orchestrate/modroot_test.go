package orchestrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestModuleRoot_FindsGoModWalkingUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/widget\n\ngo 1.24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	dir, modPath, err := ModuleRoot(nested)
	if err != nil {
		t.Fatalf("ModuleRoot: %v", err)
	}
	if dir != root {
		t.Errorf("dir = %q, want %q", dir, root)
	}
	if modPath != "example.com/widget" {
		t.Errorf("modPath = %q, want example.com/widget", modPath)
	}
}

func TestModuleRoot_NoGoModReturnsError(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := ModuleRoot(dir); err == nil {
		t.Fatal("expected an error when no go.mod exists anywhere above dir")
	}
}

func TestModuleRoot_MalformedGoModSkippedInFavorOfParent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/outer\n\ngo 1.24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "go.mod"), []byte("not a valid go.mod {{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, modPath, err := ModuleRoot(nested)
	if err != nil {
		t.Fatalf("ModuleRoot: %v", err)
	}
	if dir != root || modPath != "example.com/outer" {
		t.Errorf("got (%q, %q), want the valid parent go.mod", dir, modPath)
	}
}
