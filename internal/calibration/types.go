// Package calibration implements the persistent feedback store that
// turns measured experiment outcomes into labeled training records and
// a known-false-positive registry.
package calibration

import "github.com/faultline-dev/faultline/internal/severity"

// Label is the outcome class assigned to one ingested experiment.
type Label int

const (
	Unlabeled Label = iota
	Positive
	Negative
	Excluded
)

func (l Label) String() string {
	switch l {
	case Positive:
		return "Positive"
	case Negative:
		return "Negative"
	case Excluded:
		return "Excluded"
	default:
		return "Unlabeled"
	}
}

// Verdict mirrors hypothesis.Verdict without importing that package —
// the calibration store only needs the outcome tag, not the rest of the
// hypothesis model.
type Verdict int

const (
	Pending Verdict = iota
	Confirmed
	Refuted
	Inconclusive
	Confounded
)

// labelFor maps an experiment verdict to a Label.
func labelFor(v Verdict) Label {
	switch v {
	case Confirmed:
		return Positive
	case Refuted:
		return Negative
	case Confounded:
		return Excluded
	default:
		return Unlabeled
	}
}

// ExperimentResult is the raw outcome a caller submits for ingestion,
// before schema validation, label assignment, and quality gating.
type ExperimentResult struct {
	FindingID    string
	HypothesisID string
	SchemaID     string

	Verdict Verdict

	WarmupIterations      int
	MeasurementIterations int

	CPUModel      string
	KernelVersion string
	SKUFamily     string

	TurboDisabled bool
	Governor      string
	CoresRecorded int

	// ConfoundRisk defaults to 0.05 when the caller leaves it at zero;
	// callers that genuinely measured zero confound risk have no way to
	// express that distinctly, so the conservative default applies.
	ConfoundRisk float64

	Power      float64
	EffectSize float64
	PValue     float64
}

// LabeledRecord is one persisted, quality-gated experiment outcome.
type LabeledRecord struct {
	FindingID    string
	HypothesisID string
	HazardClass  severity.HazardClass

	FeatureVector []float64

	Label        Label
	LabelQuality float64

	EffectSize float64
	PValue     float64

	SKUFamily     string
	KernelVersion string
	SchemaVersion string

	IngestedAtUnix int64
}

// FalsePositiveEntry tracks how many independent experiments refuted a
// hazard class's findings.
type FalsePositiveEntry struct {
	HazardClass     severity.HazardClass
	RefutationCount int
}
