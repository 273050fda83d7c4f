package calibration

import (
	"errors"

	"github.com/faultline-dev/faultline/internal/severity"
)

// defaultConfoundRisk is substituted whenever a caller leaves
// ExperimentResult.ConfoundRisk at its zero value.
const defaultConfoundRisk = 0.05

// knownFalsePositiveThreshold is the independent-refutations count at
// which a hazard class is treated as a known false positive.
const knownFalsePositiveThreshold = 3

var errInvalidExperiment = errors.New("calibration: experiment failed schema validation")

// validate rejects an experiment result missing any required identifier
// or measurement field before it reaches label assignment.
func validate(r ExperimentResult) error {
	if r.FindingID == "" || r.HypothesisID == "" || r.SchemaID == "" {
		return errInvalidExperiment
	}
	if r.WarmupIterations == 0 || r.MeasurementIterations == 0 {
		return errInvalidExperiment
	}
	if r.CPUModel == "" {
		return errInvalidExperiment
	}
	return nil
}

// environmentQuality scores how well-controlled the measurement
// environment was, penalizing turbo left enabled, a non-performance
// governor, and a missing core count.
func environmentQuality(r ExperimentResult) float64 {
	q := 1.0
	if !r.TurboDisabled {
		q -= 0.15
	}
	if r.Governor != "performance" {
		q -= 0.10
	}
	if r.CoresRecorded == 0 {
		q -= 0.20
	}
	if q < 0 {
		q = 0
	}
	return q
}

// labelQuality combines statistical power, environment quality, and
// confound risk into the single score applyGates thresholds against.
func labelQuality(r ExperimentResult) float64 {
	confoundRisk := r.ConfoundRisk
	if confoundRisk == 0 {
		confoundRisk = defaultConfoundRisk
	}
	power := r.Power
	if power > 1.0 {
		power = 1.0
	}
	return power * environmentQuality(r) * (1 - confoundRisk)
}

// applyGates implements quality and power gates,
// both of which can only downgrade a label to Unlabeled.
func applyGates(label Label, quality float64, power float64) Label {
	if quality < 0.60 && label != Excluded {
		return Unlabeled
	}
	if power < 0.80 && label == Negative {
		return Unlabeled
	}
	return label
}

// buildRecord assembles the LabeledRecord that label assignment and
// quality gating produce for one experiment, given the
// already-validated result.
func buildRecord(r ExperimentResult, features []float64, hazardClass severity.HazardClass, ingestedAtUnix int64) LabeledRecord {
	label := labelFor(r.Verdict)
	quality := labelQuality(r)
	label = applyGates(label, quality, r.Power)

	return LabeledRecord{
		FindingID:      r.FindingID,
		HypothesisID:   r.HypothesisID,
		HazardClass:    hazardClass,
		FeatureVector:  features,
		Label:          label,
		LabelQuality:   quality,
		EffectSize:     r.EffectSize,
		PValue:         r.PValue,
		SKUFamily:      r.SKUFamily,
		KernelVersion:  r.KernelVersion,
		SchemaVersion:  r.SchemaID,
		IngestedAtUnix: ingestedAtUnix,
	}
}
