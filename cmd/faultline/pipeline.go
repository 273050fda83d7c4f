package main

import (
	"context"
	"os"
	"time"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/config"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/escape"
	"github.com/faultline-dev/faultline/internal/hotpath"
	"github.com/faultline-dev/faultline/internal/ir"
	"github.com/faultline-dev/faultline/internal/logging"
	"github.com/faultline-dev/faultline/internal/orchestrate"
	"github.com/faultline-dev/faultline/internal/refine"
	"github.com/faultline-dev/faultline/internal/rules"
	"github.com/spf13/pflag"
)

// pipelineFlags is the declaration/IR input surface shared by analyze
// and hypothesize: a declaration bundle plus an optional way to obtain
// lowered IR for the refinement pass.
type pipelineFlags struct {
	bundle     string
	config     string
	noIR       bool
	irBundle   string
	irCompiler string
	irArgs     []string
	irOpt      string
}

func registerPipelineFlags(f *pflag.FlagSet, pf *pipelineFlags) {
	f.StringVar(&pf.bundle, "bundle", "", "Path to the declaration bundle JSON a frontend adapter emitted (required)")
	f.StringVar(&pf.config, "config", "", "Path to faultline.yaml")
	f.BoolVar(&pf.noIR, "no-ir", false, "Disable the IR analysis and refinement pass (AST-only mode)")
	f.StringVar(&pf.irBundle, "ir-bundle", "", "Path to a lowered-IR JSON bundle (direct mode, skips compiler invocation)")
	f.StringVar(&pf.irCompiler, "ir-compiler", "", "Path to the compiler/adapter executable to invoke for IR emission")
	f.StringSliceVar(&pf.irArgs, "ir-arg", nil, "Extra argv entries passed to --ir-compiler (repeatable)")
	f.StringVar(&pf.irOpt, "ir-opt", "O0", "Optimization level for IR emission (O0|O1|O2)")
}

// astDecodeError marks a failure in the declaration-bundle decode step
// itself, distinct from ordinary CLI/config errors, so a caller can map
// it to its own exit code.
type astDecodeError struct{ err error }

func (e *astDecodeError) Error() string { return e.err.Error() }
func (e *astDecodeError) Unwrap() error { return e.err }

// runPipeline decodes the bundle, runs the rule engine, and — unless
// disabled — lowers and analyzes IR to refine the resulting
// diagnostics. Diagnostics are returned sorted and unfiltered; callers
// own severity/evidence filtering and calibration suppression.
func runPipeline(ctx context.Context, pf pipelineFlags) ([]*diagnostic.Diagnostic, orchestrate.ExecutionMetadata, error) {
	data, err := os.ReadFile(pf.bundle)
	if err != nil {
		return nil, orchestrate.ExecutionMetadata{}, &astDecodeError{err}
	}
	tu, layoutOracle, err := astmodel.DecodeBundle(data)
	if err != nil {
		return nil, orchestrate.ExecutionMetadata{}, &astDecodeError{err}
	}

	cfg := config.Defaults()
	if pf.config != "" {
		cfg, err = config.LoadFile(pf.config)
		if err != nil {
			logging.New("pipeline").Warn("config load failed; using defaults", "path", pf.config, "error", err)
			cfg = config.Defaults()
		}
	}

	rctx := &rules.Context{
		Layout: layoutOracle,
		Escape: escape.NewOracle(layoutOracle),
		Hot:    hotpath.New(cfg.HotFunctionPatterns, cfg.HotFilePatterns),
		Config: cfg,
	}
	diags := rules.Run(tu, rctx)

	meta := orchestrate.ExecutionMetadata{
		ToolVersion: toolVersion,
		ConfigPath:  pf.config,
		IROptLevel:  pf.irOpt,
		IREnabled:   !pf.noIR,
		Timestamp:   time.Now().Unix(),
		SourceFiles: []string{tu.Path},
	}

	if !pf.noIR {
		mod, compilers, err := collectIR(ctx, pf, tu.Path)
		if err != nil {
			return nil, orchestrate.ExecutionMetadata{}, err
		}
		meta.Compilers = compilers
		if mod != nil {
			profiles := ir.Analyze(mod)
			refine.Refine(diags, profiles, refine.Options{StackFrameWarnBytes: cfg.StackFrameWarnBytes})
		}
	}

	diagnostic.SortDiagnostics(diags)
	return diags, meta, nil
}

// collectIR obtains a lowered IRModule either directly from a JSON IR
// bundle, or by planning and running one compile job through the
// orchestration pool and lowering its output. Neither path parses a
// real IR text/bitcode format — decodeModule/JSONLowerer consume the
// same JSON wire format astmodel.DecodeBundle uses for declarations.
func collectIR(ctx context.Context, pf pipelineFlags, sourcePath string) (*ir.IRModule, []orchestrate.CompilerInfo, error) {
	switch {
	case pf.irBundle != "":
		data, err := os.ReadFile(pf.irBundle)
		if err != nil {
			return nil, nil, err
		}
		mod, err := ir.DecodeModule(data)
		return mod, nil, err

	case pf.irCompiler != "":
		tmpDir, err := os.MkdirTemp("", "faultline-ir-*")
		if err != nil {
			return nil, nil, err
		}
		defer os.RemoveAll(tmpDir)

		argv := append([]string{"-" + pf.irOpt}, pf.irArgs...)
		job, err := orchestrate.PlanJob(sourcePath, pf.irCompiler, argv, toolVersion, tmpDir)
		if err != nil {
			return nil, nil, err
		}

		jobs := []orchestrate.CompileJob{job}
		results := orchestrate.RunJobs(ctx, jobs, orchestrate.ShellIREmitter{})
		mod, errs := orchestrate.CollectModules(ctx, results, ir.JSONLowerer{})
		if len(errs) > 0 {
			return nil, nil, errs[0]
		}
		compilers := orchestrate.DedupeCompilers(jobs, func(string) string { return "" })
		return mod, compilers, nil

	default:
		return nil, nil, nil
	}
}
