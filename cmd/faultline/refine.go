package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faultline-dev/faultline/internal/config"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
	"github.com/faultline-dev/faultline/internal/logging"
	"github.com/faultline-dev/faultline/internal/output"
	"github.com/faultline-dev/faultline/internal/refine"
)

var refineFlags struct {
	config     string
	outputPath string
}

var refineCmd = &cobra.Command{
	Use:   "refine <diagnostics.json> <ir-bundle.json>",
	Short: "Refine a standalone diagnostics document against a lowered-IR bundle",
	Long: `refine runs the IR refinement pass on its own, for pipelines that
split the AST and IR stages across separate invocations or machines:
one stage runs "analyze --format=json --no-ir" and hands off the
resulting document, a second stage lowers IR independently, and refine
joins the two and re-sorts the result.`,
	Args: cobra.ExactArgs(2),
	RunE: runRefine,
}

func init() {
	f := refineCmd.Flags()
	f.StringVar(&refineFlags.config, "config", "", "Path to faultline.yaml")
	f.StringVarP(&refineFlags.outputPath, "output", "o", "", "Write output to file instead of stdout")
}

func runRefine(cmd *cobra.Command, args []string) error {
	diagsData, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	diags, meta, err := output.DecodeDocument(diagsData)
	if err != nil {
		return fmt.Errorf("decoding diagnostics document: %w", err)
	}

	irData, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	mod, err := ir.DecodeModule(irData)
	if err != nil {
		return fmt.Errorf("decoding IR bundle: %w", err)
	}

	cfg := config.Defaults()
	if refineFlags.config != "" {
		cfg, err = config.LoadFile(refineFlags.config)
		if err != nil {
			logging.New("refine").Warn("config load failed; using defaults", "path", refineFlags.config, "error", err)
			cfg = config.Defaults()
		}
	}

	profiles := ir.Analyze(mod)
	refine.Refine(diags, profiles, refine.Options{StackFrameWarnBytes: cfg.StackFrameWarnBytes})
	diagnostic.SortDiagnostics(diags)

	meta.IREnabled = true
	rendered, err := output.RenderJSON(diags, meta)
	if err != nil {
		return err
	}

	if refineFlags.outputPath != "" {
		return os.WriteFile(refineFlags.outputPath, []byte(rendered), 0o644)
	}
	fmt.Print(rendered)
	return nil
}
