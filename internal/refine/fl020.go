package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL020 confirms or refutes a heap-allocation finding against the
// IR's direct heap call sites.
func refineFL020(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	direct := 0
	loopCalls := 0
	for _, c := range profile.HeapCallSites {
		if c.Indirect {
			continue
		}
		direct++
		if c.InLoop {
			loopCalls++
		}
	}
	if direct > 0 {
		confidence.Apply(d, confidence.HeapSurvived)
		d.Escalate("IR confirms %d direct heap call site(s), %d inside a loop", direct, loopCalls)
		return
	}
	confidence.Apply(d, confidence.HeapEliminated)
	d.Escalate("IR shows no surviving heap call sites; allocation may have been eliminated")
}
