package orchestrate

import (
	"context"

	"github.com/faultline-dev/faultline/internal/ir"
)

// IRLowerer is the external collaborator that parses one emitted IR
// file into the analyzer's Go-native IRModule shape. The core never
// parses a real IR text or bitcode format itself.
type IRLowerer interface {
	Lower(ctx context.Context, irPath string) (*ir.IRModule, error)
}

// CollectModules walks results in job order — the order RunJobs
// returns them in, matching the jobs slice — lowering every
// successfully emitted (or cache-hit) job's IR file and merging
// functions into one IRModule. IR parsing is intentionally serial: the
// lowering collaborator's context is not guaranteed thread-safe across
// concurrent calls.
func CollectModules(ctx context.Context, results []JobResult, lowerer IRLowerer) (*ir.IRModule, []error) {
	mod := &ir.IRModule{}
	var errs []error

	for _, r := range results {
		if r.Err != nil || r.ExitCode != 0 {
			errs = append(errs, &CompileError{File: r.Job.SourcePath, Message: "IR emission failed", Err: r.Err})
			continue
		}
		lowered, err := lowerer.Lower(ctx, r.Job.IRPath)
		if err != nil {
			errs = append(errs, &CompileError{File: r.Job.IRPath, Message: "lowering IR", Err: err})
			continue
		}
		mod.Functions = append(mod.Functions, lowered.Functions...)
	}

	return mod, errs
}
