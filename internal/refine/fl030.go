package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL030 confirms virtual dispatch survived devirtualization by
// checking for remaining indirect calls.
func refineFL030(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	if profile.IndirectCallCount > 0 {
		confidence.Apply(d, confidence.IndirectConfirmed)
		d.Escalate("IR retains %d indirect call(s); dispatch was not devirtualized", profile.IndirectCallCount)
		return
	}
	confidence.Apply(d, confidence.FullyDevirtualized)
	d.Escalate("IR shows only direct calls; the compiler fully devirtualized this dispatch")
}
