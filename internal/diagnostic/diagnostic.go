// Package diagnostic defines the Diagnostic carrier: the single record
// type every rule emits and every downstream refiner, formatter, and
// hypothesis-builder stage consumes.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/severity"
)

// Diagnostic is one finding emitted by a rule, possibly later rewritten
// in place by the refiner.
type Diagnostic struct {
	RuleID   string
	Title    string
	Severity severity.Severity
	// Confidence is in [0.0, 1.0].
	Confidence float64
	Tier       severity.EvidenceTier
	Suppressed bool

	Location astmodel.SourceLocation

	// FunctionName is the owning function's qualified name, when known.
	// Empty when the diagnostic was emitted outside any function body.
	FunctionName string

	// HardwareReasoning is a one-line explanation of the expected
	// micro-architectural effect, written for a human reader.
	HardwareReasoning string

	// evidence holds the structural-evidence key=value pairs in
	// insertion order, so StructuralEvidence() is deterministic.
	evidenceKeys   []string
	evidenceValues map[string]string

	Mitigation string

	// Escalations is an ordered, append-only log of human-readable
	// strings documenting every severity, tier, or confidence change.
	Escalations []string
}

// New constructs a Diagnostic with empty evidence and escalation lists.
func New(ruleID, title string, sev severity.Severity, confidence float64, tier severity.EvidenceTier, loc astmodel.SourceLocation) *Diagnostic {
	return &Diagnostic{
		RuleID:         ruleID,
		Title:          title,
		Severity:       sev,
		Confidence:     confidence,
		Tier:           tier,
		Location:       loc,
		evidenceValues: make(map[string]string),
	}
}

// WithEvidence sets a structural-evidence key=value pair, preserving
// first-insertion order on repeated calls with the same key. Values
// must not contain ';' — the carrier's delimiter.
func (d *Diagnostic) WithEvidence(key, value string) *Diagnostic {
	if d.evidenceValues == nil {
		d.evidenceValues = make(map[string]string)
	}
	if _, ok := d.evidenceValues[key]; !ok {
		d.evidenceKeys = append(d.evidenceKeys, key)
	}
	d.evidenceValues[key] = value
	return d
}

// Evidence looks up a single structural-evidence value.
func (d *Diagnostic) Evidence(key string) (string, bool) {
	v, ok := d.evidenceValues[key]
	return v, ok
}

// StructuralEvidence renders the evidence carrier as a
// semicolon-delimited key=value list.
func (d *Diagnostic) StructuralEvidence() string {
	parts := make([]string, 0, len(d.evidenceKeys))
	for _, k := range d.evidenceKeys {
		parts = append(parts, k+"="+d.evidenceValues[k])
	}
	return strings.Join(parts, ";")
}

// ParseStructuralEvidence decodes a semicolon-delimited key=value list
// back into a map, used by refiners recovering function/caller names
// from structural evidence when the diagnostic's own field is empty.
func ParseStructuralEvidence(s string) map[string]string {
	out := make(map[string]string)
	if s == "" {
		return out
	}
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			continue
		}
		out[pair[:idx]] = pair[idx+1:]
	}
	return out
}

// Escalate appends a human-readable escalation string describing a
// severity, tier, or confidence change. Call sites apply the actual
// mutation separately — Escalate only records the trace entry.
func (d *Diagnostic) Escalate(format string, args ...any) {
	d.Escalations = append(d.Escalations, fmt.Sprintf(format, args...))
}

// ClampConfidence forces Confidence into the universal [0.10, 0.98]
// bound every refinement must respect.
func (d *Diagnostic) ClampConfidence() {
	switch {
	case d.Confidence < 0.10:
		d.Confidence = 0.10
	case d.Confidence > 0.98:
		d.Confidence = 0.98
	}
}

// SortDiagnostics orders diagnostics by severity descending, then file,
// line, column, and rule ID ascending, so repeated runs over the same
// AST produce an identical diagnostic list and the most urgent findings
// surface first.
func SortDiagnostics(diags []*Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.RuleID < b.RuleID
	})
}
