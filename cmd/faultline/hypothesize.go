package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faultline-dev/faultline/internal/experiment"
	"github.com/faultline-dev/faultline/internal/hypothesis"
	"github.com/faultline-dev/faultline/internal/logging"
)

var hypothesizeFlags struct {
	pipelineFlags
	skuFamily        string
	maxCounters      int
	outputPath       string
	calibrationStore string
	experimentDir    string
}

var hypothesizeCmd = &cobra.Command{
	Use:   "hypothesize",
	Short: "Turn a declaration bundle's diagnostics into falsifiable hypotheses and measurement plans",
	Long: `hypothesize runs the same rule engine and IR refiner as analyze, then
converts every surviving diagnostic into a LatencyHypothesis with an
ordered PMU measurement plan, and flags any pair of hypotheses whose
hazards are eligible to compose super-additively.`,
	RunE: runHypothesize,
}

func init() {
	f := hypothesizeCmd.Flags()
	registerPipelineFlags(f, &hypothesizeFlags.pipelineFlags)
	f.StringVar(&hypothesizeFlags.skuFamily, "sku-family", "generic", "SKU family recorded on every generated measurement plan")
	f.IntVar(&hypothesizeFlags.maxCounters, "max-counters-per-group", 4, "Max PMU counters per collection group")
	f.StringVarP(&hypothesizeFlags.outputPath, "output", "o", "", "Write output to file instead of stdout")
	f.StringVar(&hypothesizeFlags.calibrationStore, "calibration-store", "", "Path to a calibration feedback store for false-positive suppression")
	f.StringVar(&hypothesizeFlags.experimentDir, "experiment-dir", "", "Synthesize a one-directory-per-hypothesis experiment bundle under this directory")
	_ = hypothesizeCmd.MarkFlagRequired("bundle")
}

// jsonCounter, jsonHypothesis, jsonPlan, and jsonInteraction mirror the
// hypothesis package's domain types the way internal/output mirrors
// diagnostic.Diagnostic: the domain model stays presentation-agnostic,
// and this command owns the wire shape it hands back to a caller.
type jsonCounter struct {
	Name          string `json:"name"`
	Tier          string `json:"tier"`
	Justification string `json:"justification"`
}

type jsonHypothesis struct {
	FindingID    string `json:"findingID"`
	HypothesisID string `json:"hypothesisID"`
	HazardClass  string `json:"hazardClass"`

	H0 string `json:"h0"`
	H1 string `json:"h1"`

	MetricName       string `json:"metricName"`
	MetricUnit       string `json:"metricUnit"`
	MetricPercentile string `json:"metricPercentile"`

	RequiredCounters []jsonCounter `json:"requiredCounters"`
	OptionalCounters []jsonCounter `json:"optionalCounters"`

	MinimumDetectableEffect float64 `json:"minimumDetectableEffect"`
	Alpha                   float64 `json:"alpha"`
	Power                   float64 `json:"power"`
	RequiredRuns            int     `json:"requiredRuns"`

	Control   string `json:"control"`
	Treatment string `json:"treatment"`

	FeatureVector []float64 `json:"featureVector"`
	EvidenceTier  string    `json:"evidenceTier"`
	Verdict       string    `json:"verdict"`
}

type jsonCounterGroup struct {
	GroupID  string        `json:"groupID"`
	Counters []jsonCounter `json:"counters"`
}

type jsonPlan struct {
	BundleID     string `json:"bundleID"`
	HypothesisID string `json:"hypothesisID"`
	SKUFamily    string `json:"skuFamily"`

	CounterGroups []jsonCounterGroup `json:"counterGroups"`
	Scripts       []string           `json:"scripts"`

	RequiresC2C  bool `json:"requiresC2C"`
	RequiresNUMA bool `json:"requiresNUMA"`
	RequiresLBR  bool `json:"requiresLBR"`
}

type jsonInteraction struct {
	TemplateID string `json:"templateID"`
	FindingA   string `json:"findingA"`
	FindingB   string `json:"findingB"`
	Mechanism  string `json:"mechanism"`
}

type hypothesizeDocument struct {
	Hypotheses            []jsonHypothesis  `json:"hypotheses"`
	MeasurementPlans      []jsonPlan        `json:"measurementPlans"`
	InteractionCandidates []jsonInteraction `json:"interactionCandidates"`
}

func toJSONCounters(cs []hypothesis.PMUCounter) []jsonCounter {
	out := make([]jsonCounter, 0, len(cs))
	for _, c := range cs {
		out = append(out, jsonCounter{Name: c.Name, Tier: c.Tier.String(), Justification: c.Justification})
	}
	return out
}

func toJSONHypothesis(h hypothesis.LatencyHypothesis) jsonHypothesis {
	return jsonHypothesis{
		FindingID:               h.FindingID,
		HypothesisID:            h.HypothesisID,
		HazardClass:             h.HazardClass.String(),
		H0:                      h.H0,
		H1:                      h.H1,
		MetricName:              h.PrimaryMetric.Name,
		MetricUnit:              h.PrimaryMetric.Unit,
		MetricPercentile:        h.PrimaryMetric.Percentile,
		RequiredCounters:        toJSONCounters(h.RequiredCounters),
		OptionalCounters:        toJSONCounters(h.OptionalCounters),
		MinimumDetectableEffect: h.MinimumDetectableEffect,
		Alpha:                   h.Alpha,
		Power:                   h.Power,
		RequiredRuns:            h.RequiredRuns,
		Control:                 h.Control,
		Treatment:               h.Treatment,
		FeatureVector:           h.FeatureVector,
		EvidenceTier:            h.EvidenceTier.String(),
		Verdict:                 h.Verdict.String(),
	}
}

func toJSONPlan(p hypothesis.MeasurementPlan) jsonPlan {
	groups := make([]jsonCounterGroup, 0, len(p.CounterGroups))
	for _, g := range p.CounterGroups {
		groups = append(groups, jsonCounterGroup{GroupID: g.GroupID, Counters: toJSONCounters(g.Counters)})
	}
	return jsonPlan{
		BundleID:      p.BundleID,
		HypothesisID:  p.HypothesisID,
		SKUFamily:     p.SKUFamily,
		CounterGroups: groups,
		Scripts:       p.Scripts,
		RequiresC2C:   p.RequiresC2C,
		RequiresNUMA:  p.RequiresNUMA,
		RequiresLBR:   p.RequiresLBR,
	}
}

func runHypothesize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	diags, _, err := runPipeline(ctx, hypothesizeFlags.pipelineFlags)
	var astErr *astDecodeError
	if errors.As(err, &astErr) {
		fmt.Fprintln(os.Stderr, astErr)
		os.Exit(2)
	}
	if err != nil {
		return err
	}

	if hypothesizeFlags.calibrationStore != "" {
		if err := suppressKnownFalsePositives(diags, hypothesizeFlags.calibrationStore, logging.New("hypothesize")); err != nil {
			return err
		}
	}

	var hyps []hypothesis.LatencyHypothesis
	for _, d := range diags {
		if d.Suppressed {
			continue
		}
		h, ok := hypothesis.Construct(d)
		if !ok {
			continue
		}
		hyps = append(hyps, h)
	}

	doc := hypothesizeDocument{}
	plans := make([]hypothesis.MeasurementPlan, 0, len(hyps))
	for _, h := range hyps {
		doc.Hypotheses = append(doc.Hypotheses, toJSONHypothesis(h))
		plan := hypothesis.GeneratePlan(h, hypothesizeFlags.skuFamily, hypothesizeFlags.maxCounters)
		plans = append(plans, plan)
		doc.MeasurementPlans = append(doc.MeasurementPlans, toJSONPlan(plan))
	}

	if hypothesizeFlags.experimentDir != "" {
		if err := synthesizeExperimentBundles(hyps, plans, hypothesizeFlags.experimentDir); err != nil {
			return err
		}
	}

	for _, c := range hypothesis.DetectCandidates(hyps) {
		doc.InteractionCandidates = append(doc.InteractionCandidates, jsonInteraction{
			TemplateID: c.TemplateID,
			FindingA:   c.FindingA,
			FindingB:   c.FindingB,
			Mechanism:  c.Mechanism,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if hypothesizeFlags.outputPath != "" {
		return os.WriteFile(hypothesizeFlags.outputPath, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}

// synthesizeExperimentBundles writes one seven-file experiment bundle
// per hypothesis under outputDir/<hypothesisID>, logging each write so
// a caller scripting many invocations can tell which findings got a
// bundle without re-parsing this command's stdout.
func synthesizeExperimentBundles(hyps []hypothesis.LatencyHypothesis, plans []hypothesis.MeasurementPlan, outputDir string) error {
	log := logging.New("hypothesize")
	for i, h := range hyps {
		bundle, err := experiment.Synthesize(h, plans[i], outputDir)
		if err != nil {
			return fmt.Errorf("synthesizing experiment bundle for %s: %w", h.HypothesisID, err)
		}
		if err := experiment.WriteToDisk(bundle); err != nil {
			return fmt.Errorf("writing experiment bundle for %s: %w", h.HypothesisID, err)
		}
		log.Info("synthesized experiment bundle", "hypothesisID", h.HypothesisID, "findingID", h.FindingID, "dir", outputDir)
	}
	return nil
}
