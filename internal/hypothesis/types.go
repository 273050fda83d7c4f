// Package hypothesis turns a diagnostic into a falsifiable latency
// hypothesis with a PMU counter plan, and detects pairs of hypotheses
// whose hazards might compose super-additively.
package hypothesis

import "github.com/faultline-dev/faultline/internal/severity"

// CounterTier ranks how widely available a PMU counter is across SKUs.
type CounterTier int

const (
	Universal CounterTier = iota
	Standard
	Extended
	Uncore
)

func (t CounterTier) String() string {
	switch t {
	case Universal:
		return "Universal"
	case Standard:
		return "Standard"
	case Extended:
		return "Extended"
	case Uncore:
		return "Uncore"
	default:
		return "Unknown"
	}
}

// PMUCounter is one hardware performance counter a measurement plan may
// collect, with a one-line justification for why it's relevant to the
// hazard class it's attached to.
type PMUCounter struct {
	Name          string
	Tier          CounterTier
	Justification string
}

// MetricSpec names the primary outcome metric a hypothesis is tested
// against.
type MetricSpec struct {
	Name       string
	Unit       string
	Percentile string
}

// ConfoundControl is one environmental variable a measurement must pin
// down, plus the shell command that enforces it.
type ConfoundControl struct {
	Variable           string
	EnforcementCommand string
}

// Verdict is the outcome of testing a LatencyHypothesis against measured
// data.
type Verdict int

const (
	Pending Verdict = iota
	Confirmed
	Refuted
	Inconclusive
	Confounded
)

func (v Verdict) String() string {
	switch v {
	case Pending:
		return "Pending"
	case Confirmed:
		return "Confirmed"
	case Refuted:
		return "Refuted"
	case Inconclusive:
		return "Inconclusive"
	case Confounded:
		return "Confounded"
	default:
		return "Unknown"
	}
}

// LatencyHypothesis is a falsifiable claim derived from one diagnostic,
//
type LatencyHypothesis struct {
	FindingID    string
	HypothesisID string
	HazardClass  severity.HazardClass

	H0 string
	H1 string

	PrimaryMetric MetricSpec

	RequiredCounters []PMUCounter
	OptionalCounters []PMUCounter

	MinimumDetectableEffect float64
	Alpha                   float64
	Power                   float64
	RequiredRuns            int // 0 = pilot-determined

	Control   string
	Treatment string
	Confounds []ConfoundControl

	FeatureVector []float64

	EvidenceTier severity.EvidenceTier
	Verdict      Verdict
}

// CounterGroup is one bounded batch of counters collected together in a
// single perf-stat invocation.
type CounterGroup struct {
	GroupID  string
	Counters []PMUCounter
}

// MeasurementPlan is the ordered collection-script plan generated for one
// hypothesis.
type MeasurementPlan struct {
	BundleID     string
	HypothesisID string
	SKUFamily    string

	CounterGroups []CounterGroup
	Scripts       []string

	RequiresC2C  bool
	RequiresNUMA bool
	RequiresLBR  bool
}

// InteractionTemplate describes how two hazard classes might compose
// super-additively.
type InteractionTemplate struct {
	ID            string
	HazardClasses [2]severity.HazardClass
	Mechanism     string
	CounterSet    []PMUCounter
	Threshold     float64 // delta, default 0.20
}

// InteractionCandidate is one eligible pair detected within a file-level
// scope.
type InteractionCandidate struct {
	TemplateID string
	FindingA   string
	FindingB   string
	Mechanism  string
}

// InteractionResult is one measured outcome for an interaction template.
type InteractionResult struct {
	TemplateID    string
	InteractionD  float64
	SuperAdditive bool
}

// InteractionCatalogEntry accumulates results for one template.
type InteractionCatalogEntry struct {
	TemplateID             string
	Results                []InteractionResult
	RunningMeanD           float64
	ConfirmedSuperAdditive bool
}

// InteractionCatalog stores zero or more InteractionResult entries per
// template.
type InteractionCatalog struct {
	entries map[string]*InteractionCatalogEntry
}

func NewInteractionCatalog() *InteractionCatalog {
	return &InteractionCatalog{entries: make(map[string]*InteractionCatalogEntry)}
}

// Add records a result, recomputing the running mean interaction-d and
// latching ConfirmedSuperAdditive once any result reports super-additive.
func (c *InteractionCatalog) Add(r InteractionResult) {
	e, ok := c.entries[r.TemplateID]
	if !ok {
		e = &InteractionCatalogEntry{TemplateID: r.TemplateID}
		c.entries[r.TemplateID] = e
	}
	e.Results = append(e.Results, r)

	var sum float64
	for _, res := range e.Results {
		sum += res.InteractionD
	}
	e.RunningMeanD = sum / float64(len(e.Results))

	if r.SuperAdditive {
		e.ConfirmedSuperAdditive = true
	}
}

// Entry returns the catalog entry for a template, if any.
func (c *InteractionCatalog) Entry(templateID string) (*InteractionCatalogEntry, bool) {
	e, ok := c.entries[templateID]
	return e, ok
}
