package orchestrate

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlanJob_NotCachedWhenIRFileAbsent(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.cc", "int main() {}")

	job, err := PlanJob(src, "/usr/bin/clang", []string{"-S", "-emit-llvm"}, "v1", dir)
	if err != nil {
		t.Fatalf("PlanJob: %v", err)
	}
	if job.Cached {
		t.Error("expected Cached = false when no prior IR file exists")
	}
	if job.IRPath == "" || job.StderrPath == "" {
		t.Error("expected non-empty IR and stderr paths")
	}
}

func TestPlanJob_CachedWhenMatchingIRFileExists(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.cc", "int main() {}")

	job1, err := PlanJob(src, "/usr/bin/clang", []string{"-S", "-emit-llvm"}, "v1", dir)
	if err != nil {
		t.Fatalf("PlanJob: %v", err)
	}
	if err := os.WriteFile(job1.IRPath, []byte("; fake ir"), 0o644); err != nil {
		t.Fatal(err)
	}

	job2, err := PlanJob(src, "/usr/bin/clang", []string{"-S", "-emit-llvm"}, "v1", dir)
	if err != nil {
		t.Fatalf("PlanJob: %v", err)
	}
	if !job2.Cached {
		t.Error("expected Cached = true once the IR file exists on disk")
	}
	if job1.IRPath != job2.IRPath {
		t.Errorf("expected identical IR paths for identical inputs: %q vs %q", job1.IRPath, job2.IRPath)
	}
}

func TestPlanJob_DifferentArgvChangesCacheKey(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.cc", "int main() {}")

	job1, _ := PlanJob(src, "/usr/bin/clang", []string{"-O0"}, "v1", dir)
	job2, _ := PlanJob(src, "/usr/bin/clang", []string{"-O2"}, "v1", dir)
	if job1.IRPath == job2.IRPath {
		t.Error("expected different argv to produce different cache keys")
	}
}

func TestPlanJob_MissingSourceErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := PlanJob(filepath.Join(dir, "missing.cc"), "/usr/bin/clang", nil, "v1", dir); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
