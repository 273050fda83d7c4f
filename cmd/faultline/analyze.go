package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/faultline-dev/faultline/internal/calibration"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/hypothesis"
	"github.com/faultline-dev/faultline/internal/logging"
	"github.com/faultline-dev/faultline/internal/output"
	"github.com/faultline-dev/faultline/internal/severity"
)

var analyzeFlags struct {
	pipelineFlags
	format           string
	jsonAlias        bool
	outputPath       string
	minSeverity      string
	minEvidence      string
	calibrationStore string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the rule engine and IR refiner over a declaration bundle",
	Long: `analyze decodes a declaration bundle emitted by a frontend adapter,
runs every enabled structural rule, and — unless --no-ir is set — lowers
and analyzes the matching IR to refine confidence and evidence tier
before rendering the result as a table, JSON, or SARIF document.

Exit code 0 means a clean run with nothing to report, 1 means findings
were reported after filtering, and 2 means the declaration bundle
itself could not be decoded.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	registerPipelineFlags(f, &analyzeFlags.pipelineFlags)
	f.StringVar(&analyzeFlags.format, "format", "table", "Output format (table|json|sarif)")
	f.BoolVar(&analyzeFlags.jsonAlias, "json", false, "Emit JSON output (deprecated: use --format=json)")
	f.StringVarP(&analyzeFlags.outputPath, "output", "o", "", "Write output to file instead of stdout")
	f.StringVar(&analyzeFlags.minSeverity, "min-severity", "Informational", "Minimum severity to report (Informational|Medium|High|Critical)")
	f.StringVar(&analyzeFlags.minEvidence, "min-evidence", "speculative", "Minimum evidence tier to report (proven|likely|speculative)")
	f.StringVar(&analyzeFlags.calibrationStore, "calibration-store", "", "Path to a calibration feedback store for false-positive suppression")
	_ = analyzeCmd.MarkFlagRequired("bundle")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logging.New("analyze")
	ctx := context.Background()

	diags, meta, err := runPipeline(ctx, analyzeFlags.pipelineFlags)
	var astErr *astDecodeError
	if errors.As(err, &astErr) {
		fmt.Fprintln(os.Stderr, astErr)
		os.Exit(2)
	}
	if err != nil {
		return err
	}

	if analyzeFlags.calibrationStore != "" {
		if err := suppressKnownFalsePositives(diags, analyzeFlags.calibrationStore, log); err != nil {
			return err
		}
	}

	minSev := severity.ParseSeverity(analyzeFlags.minSeverity)
	minTier := severity.ParseEvidenceTier(analyzeFlags.minEvidence)
	reported := filterDiagnostics(diags, minSev, minTier)

	format := output.ParseFormat(analyzeFlags.format)
	if analyzeFlags.jsonAlias {
		format = output.JSON
	}
	rendered, err := output.Render(format, reported, meta)
	if err != nil {
		return err
	}

	if analyzeFlags.outputPath != "" {
		if err := os.WriteFile(analyzeFlags.outputPath, []byte(rendered), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Println(rendered)
	}

	if len(reported) > 0 {
		os.Exit(1)
	}
	return nil
}

func filterDiagnostics(diags []*diagnostic.Diagnostic, minSev severity.Severity, minTier severity.EvidenceTier) []*diagnostic.Diagnostic {
	out := make([]*diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Suppressed {
			continue
		}
		if !d.Severity.AtLeast(minSev) {
			continue
		}
		if !d.Tier.StrongerOrEqual(minTier) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// suppressKnownFalsePositives marks diagnostics the calibration store
// has seen refuted at least three independent times for their hazard
// class. Critical- or High-severity Proven-tier findings are never
// suppressed this way regardless of what the store reports — the store
// itself stays a pure query with no severity awareness, so that rail
// lives here at the CLI boundary.
func suppressKnownFalsePositives(diags []*diagnostic.Diagnostic, storePath string, log *slog.Logger) error {
	store, err := calibration.Open(storePath)
	if err != nil {
		return fmt.Errorf("opening calibration store: %w", err)
	}
	defer store.Close()

	for _, d := range diags {
		if isCalibrationProtected(d) {
			continue
		}
		hyp, ok := hypothesis.Construct(d)
		if !ok {
			continue
		}
		known, err := store.IsKnownFalsePositive(hyp.FeatureVector, hyp.HazardClass)
		if err != nil {
			log.Warn("calibration lookup failed", "findingID", hyp.FindingID, "error", err)
			continue
		}
		if known {
			d.Suppressed = true
			d.Escalate("suppressed: %s has >=3 independent refutations in the calibration store", hyp.HazardClass)
		}
	}
	return nil
}

func isCalibrationProtected(d *diagnostic.Diagnostic) bool {
	return d.Tier == severity.Proven && (d.Severity == severity.Critical || d.Severity == severity.High)
}
