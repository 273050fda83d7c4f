package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL010 correlates a seq-cst IR atomic to the diagnostic's exact
// site, falling back to function-level presence.
func refineFL010(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	for _, ev := range profile.Atomics {
		if ir.IsSeqCst(ev.OrderingName) && suffixLocationMatch(ev.File, ev.Line, d) {
			confidence.Apply(d, confidence.SiteConfirmed)
			promoteToProven(d)
			d.Escalate("IR confirms a seq_cst atomic at this exact site")
			return
		}
	}
	if profile.SeqCstCount > 0 {
		confidence.Apply(d, confidence.FunctionConfirmed)
		d.Escalate("IR shows seq_cst atomic activity in the function but no exact line match")
		return
	}
	if len(profile.Atomics) > 0 {
		confidence.Apply(d, confidence.OptimizedAway)
		d.Escalate("IR shows only relaxed-or-weaker atomics; the seq_cst ordering may have been optimized")
	}
}
