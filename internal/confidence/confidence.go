// Package confidence implements the named evidence-factor model the
// diagnostic refiner uses to adjust a finding's confidence once IR
// evidence is available.
package confidence

import (
	"github.com/faultline-dev/faultline/internal/diagnostic"
)

// Factor names one recognized evidence adjustment. Each carries a fixed
// delta and an asymmetric clamp bound: positive factors cap how high a
// single factor may push confidence; negative factors floor how low one
// may drag it, so no single disagreement between AST and IR evidence can
// collapse an otherwise strong finding.
type Factor int

const (
	SiteConfirmed Factor = iota
	FunctionConfirmed
	HeapSurvived
	HeapEliminated
	IndirectConfirmed
	FullyDevirtualized
	LockConfirmed
	StackConfirmed
	OptimizedAway
	IndirectGone
)

var factorNames = map[Factor]string{
	SiteConfirmed:       "site-confirmed",
	FunctionConfirmed:   "function-confirmed",
	HeapSurvived:        "heap-survived",
	HeapEliminated:      "heap-eliminated",
	IndirectConfirmed:   "indirect-confirmed",
	FullyDevirtualized:  "fully-devirtualized",
	LockConfirmed:       "lock-confirmed",
	StackConfirmed:      "stack-confirmed",
	OptimizedAway:       "optimized-away",
	IndirectGone:        "indirect-gone",
}

func (f Factor) String() string {
	if n, ok := factorNames[f]; ok {
		return n
	}
	return "unknown"
}

const (
	globalFloor   = 0.10
	globalCeiling = 0.98
)

type factorSpec struct {
	delta   float64
	ceiling float64
	floor   float64
}

// factorTable holds the deltas and asymmetric clamp bounds for each
// factor. Ceiling matters only for positive-delta factors; floor matters
// only for negative-delta factors — the other bound always falls back to
// the global [0.10, 0.98] range.
var factorTable = map[Factor]factorSpec{
	SiteConfirmed:      {delta: 0.10, ceiling: 0.98, floor: globalFloor},
	FunctionConfirmed:  {delta: 0.05, ceiling: 0.95, floor: globalFloor},
	StackConfirmed:     {delta: 0.10, ceiling: 0.95, floor: globalFloor},
	HeapSurvived:       {delta: 0.05, ceiling: 0.92, floor: globalFloor},
	IndirectConfirmed:  {delta: 0.10, ceiling: 0.92, floor: globalFloor},
	LockConfirmed:      {delta: 0.05, ceiling: 0.92, floor: globalFloor},
	HeapEliminated:     {delta: -0.15, ceiling: globalCeiling, floor: 0.40},
	FullyDevirtualized: {delta: -0.25, ceiling: globalCeiling, floor: 0.30},
	OptimizedAway:      {delta: -0.20, ceiling: globalCeiling, floor: 0.30},
	IndirectGone:       {delta: -0.20, ceiling: globalCeiling, floor: 0.35},
}

// Apply adjusts d.Confidence by factor's delta, clamped to that factor's
// bound, and appends one escalation trace entry when the value actually
// changes. It returns the new confidence value.
func Apply(d *diagnostic.Diagnostic, factor Factor) float64 {
	spec, ok := factorTable[factor]
	if !ok {
		return d.Confidence
	}

	old := d.Confidence
	next := clamp(old+spec.delta, spec.floor, spec.ceiling)
	next = clamp(next, globalFloor, globalCeiling)
	if next == old {
		return old
	}
	d.Escalate("confidence %s: %.2f -> %.2f", factor, old, next)
	d.Confidence = next
	return next
}

func clamp(v, floor, ceiling float64) float64 {
	if v < floor {
		return floor
	}
	if v > ceiling {
		return ceiling
	}
	return v
}
