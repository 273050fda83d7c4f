package orchestrate

import (
	"context"
	"errors"
	"testing"

	"github.com/faultline-dev/faultline/internal/ir"
)

type fakeLowerer struct {
	fail map[string]bool
}

func (f *fakeLowerer) Lower(ctx context.Context, irPath string) (*ir.IRModule, error) {
	if f.fail != nil && f.fail[irPath] {
		return nil, errors.New("parse error")
	}
	return &ir.IRModule{Functions: []*ir.IRFunction{{MangledName: irPath}}}, nil
}

func TestCollectModules_MergesSuccessfulJobsInOrder(t *testing.T) {
	results := []JobResult{
		{Job: CompileJob{SourcePath: "a.cc", IRPath: "a.ll"}, ExitCode: 0},
		{Job: CompileJob{SourcePath: "b.cc", IRPath: "b.ll"}, ExitCode: 0},
	}
	mod, errs := CollectModules(context.Background(), results, &fakeLowerer{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(mod.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(mod.Functions))
	}
	if mod.Functions[0].MangledName != "a.ll" || mod.Functions[1].MangledName != "b.ll" {
		t.Errorf("unexpected merge order: %+v", mod.Functions)
	}
}

func TestCollectModules_SkipsFailedEmissionAndRecordsError(t *testing.T) {
	results := []JobResult{
		{Job: CompileJob{SourcePath: "a.cc", IRPath: "a.ll"}, ExitCode: 1},
		{Job: CompileJob{SourcePath: "b.cc", IRPath: "b.ll"}, ExitCode: 0},
	}
	mod, errs := CollectModules(context.Background(), results, &fakeLowerer{})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("got %d functions, want 1 (the failed job should be skipped)", len(mod.Functions))
	}
}

func TestCollectModules_SkipsLoweringFailure(t *testing.T) {
	results := []JobResult{
		{Job: CompileJob{SourcePath: "a.cc", IRPath: "a.ll"}, ExitCode: 0},
	}
	mod, errs := CollectModules(context.Background(), results, &fakeLowerer{fail: map[string]bool{"a.ll": true}})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(mod.Functions) != 0 {
		t.Fatalf("got %d functions, want 0", len(mod.Functions))
	}
}
