package hypothesis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

// featureKeys is the fixed, ordered set of structural-evidence keys the
// feature vector extracts. Order is part of the contract: every
// LatencyHypothesis's FeatureVector has this many entries in this
// order, regardless of which keys a given diagnostic actually carries
// (missing keys contribute 0).
var featureKeys = []string{"sizeof", "cache_lines", "atomic_writes", "mutable_fields", "estimated_frame", "depth", "callees"}

// stackFrameThresholdBytes mirrors config.Config's documented default
// for FL021 — the constructor has no config dependency, so
// it carries the same default literal used as {threshold} prose filler.
const stackFrameThresholdBytes = 2048

// targetConcurrencyForProse is a representative concurrency level used
// to fill {target_count} in prose templates describing scaling
// experiments; the actual measurement plan sweeps a range, this is just
// narrative text.
const targetConcurrencyForProse = 8

// Construct builds a LatencyHypothesis from a diagnostic. Returns
// false if the rule has no hazard-class mapping.
func Construct(d *diagnostic.Diagnostic) (LatencyHypothesis, bool) {
	hazard, ok := severity.RuleHazard[d.RuleID]
	if !ok {
		return LatencyHypothesis{}, false
	}
	tmpl, ok := Templates[hazard]
	if !ok {
		return LatencyHypothesis{}, false
	}

	ev := diagnostic.ParseStructuralEvidence(d.StructuralEvidence())
	values := placeholderValues(tmpl, ev)

	h := LatencyHypothesis{
		FindingID:               findingID(d),
		HypothesisID:            hypothesisID(d),
		HazardClass:             hazard,
		H0:                      substitute(tmpl.H0Template, values),
		H1:                      substitute(tmpl.H1Template, values),
		PrimaryMetric:           tmpl.Metric,
		RequiredCounters:        tmpl.RequiredCounters,
		OptionalCounters:        tmpl.OptionalCounters,
		MinimumDetectableEffect: tmpl.DefaultMDE,
		Alpha:                   0.01,
		Power:                   0.90,
		RequiredRuns:            0,
		Control:                 "baseline binary built without the structural change this diagnostic flags",
		Treatment:               "binary built with the flagged structure/pattern unchanged",
		Confounds:               tmpl.ConfoundControls,
		FeatureVector:           featureVector(d, ev),
		EvidenceTier:            deriveEvidenceTier(ev),
		Verdict:                 Pending,
	}
	return h, true
}

func findingID(d *diagnostic.Diagnostic) string {
	return fmt.Sprintf("%s-%s:%d", d.RuleID, d.Location.File, d.Location.Line)
}

func hypothesisID(d *diagnostic.Diagnostic) string {
	key := fmt.Sprintf("%s:%d", d.Location.File, d.Location.Line)
	return fmt.Sprintf("H-%s-%x", d.RuleID, xxhash.Sum64String(key))
}

func placeholderValues(tmpl HypothesisTemplate, ev map[string]string) map[string]string {
	values := map[string]string{
		"mde":          fmt.Sprintf("%.0f%%", tmpl.DefaultMDE*100),
		"percentile":   tmpl.Metric.Percentile,
		"threshold":    strconv.Itoa(stackFrameThresholdBytes) + "B",
		"target_count": strconv.Itoa(targetConcurrencyForProse),
	}
	for _, k := range []string{"cache_lines", "estimated_frame", "depth", "max_depth", "cases"} {
		if v, ok := ev[k]; ok {
			values[k] = v
		}
	}
	return values
}

func substitute(tmplStr string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmplStr)
}

func featureVector(d *diagnostic.Diagnostic, ev map[string]string) []float64 {
	vec := make([]float64, 0, 3+len(featureKeys))
	vec = append(vec, float64(d.Severity), d.Confidence, float64(len(d.Escalations)))
	for _, k := range featureKeys {
		vec = append(vec, parseEvidenceFloat(ev[k]))
	}
	return vec
}

func parseEvidenceFloat(v string) float64 {
	if v == "" {
		return 0
	}
	v = strings.TrimSuffix(v, "B")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func deriveEvidenceTier(ev map[string]string) severity.EvidenceTier {
	if ev["ordering"] == "seq_cst" {
		return severity.Proven
	}
	sizeBased := hasAny(ev, "sizeof", "estimated_frame", "cache_lines")
	escapeOrAtomics := hasAny(ev, "thread_escape", "atomics", "atomic_fields", "atomic_writes")
	if sizeBased {
		if escapeOrAtomics {
			return severity.Likely
		}
		return severity.Proven
	}
	if hasAny(ev, "atomic_writes", "virtual_call") {
		return severity.Likely
	}
	return severity.Speculative
}

func hasAny(ev map[string]string, keys ...string) bool {
	for _, k := range keys {
		if _, ok := ev[k]; ok {
			return true
		}
	}
	return false
}
