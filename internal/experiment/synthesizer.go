// Package experiment turns one LatencyHypothesis and its MeasurementPlan
// into a synthesized, on-disk experiment bundle: the harness source,
// build tooling, and collection-script wiring a human runs to actually
// confirm or refute the hypothesis.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/faultline-dev/faultline/internal/hypothesis"
)

// ExperimentFile is one generated artifact, addressed relative to the
// bundle's root directory.
type ExperimentFile struct {
	RelativePath string
	Content      string
}

// ExperimentBundle is the full synthesized bundle for one hypothesis.
type ExperimentBundle struct {
	FindingID    string
	HypothesisID string
	OutputDir    string
	Files        []ExperimentFile
	Plan         hypothesis.MeasurementPlan
}

// generator produces one file of the bundle from the hypothesis and
// its plan; most use only one of the two arguments.
type generator func(hypothesis.LatencyHypothesis, hypothesis.MeasurementPlan) (ExperimentFile, error)

var generators = []generator{
	generateCommonHeader,
	generateHarness,
	generateBuildScript,
	generateRunAll,
	generateMakefile,
	generateReadme,
	generateHypothesisJSON,
}

// Synthesize builds the seven-file experiment bundle for h: a common
// header, a harness source, a build script, a run-all orchestration
// script, a Makefile, a README, and the hypothesis as JSON.
func Synthesize(h hypothesis.LatencyHypothesis, plan hypothesis.MeasurementPlan, outputDir string) (ExperimentBundle, error) {
	bundle := ExperimentBundle{
		FindingID:    h.FindingID,
		HypothesisID: h.HypothesisID,
		OutputDir:    outputDir,
		Plan:         plan,
	}
	for _, gen := range generators {
		f, err := gen(h, plan)
		if err != nil {
			return ExperimentBundle{}, err
		}
		bundle.Files = append(bundle.Files, f)
	}
	return bundle, nil
}

// WriteToDisk materializes every file in bundle under
// OutputDir/HypothesisID, creating intermediate directories (e.g.
// "src/") as needed.
func WriteToDisk(bundle ExperimentBundle) error {
	root := filepath.Join(bundle.OutputDir, bundle.HypothesisID)
	for _, f := range bundle.Files {
		path := filepath.Join(root, f.RelativePath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("experiment: creating directory for %s: %w", f.RelativePath, err)
		}
		mode := os.FileMode(0o644)
		if filepath.Ext(f.RelativePath) == ".sh" {
			mode = 0o755
		}
		if err := os.WriteFile(path, []byte(f.Content), mode); err != nil {
			return fmt.Errorf("experiment: writing %s: %w", f.RelativePath, err)
		}
	}
	return nil
}
