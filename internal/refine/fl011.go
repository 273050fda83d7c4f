package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL011 confirms atomic write activity and appends loop/debug-loc
// counts.
func refineFL011(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	loopWrites, locMatched, total := 0, 0, 0
	for _, ev := range profile.Atomics {
		if !isAtomicWriteOp(ev.Op) {
			continue
		}
		total++
		if ev.InLoop {
			loopWrites++
		}
		if suffixLocationMatch(ev.File, ev.Line, d) {
			locMatched++
		}
	}
	if total == 0 {
		return
	}
	confidence.Apply(d, confidence.SiteConfirmed)
	d.Escalate("IR reports %d atomic write(s), %d in a loop, %d matched to a debug location", total, loopWrites, locMatched)
}
