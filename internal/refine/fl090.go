package refine

import (
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL090 aggregates atomic write, indirect-call, and fence activity
// across every profile, since a hazard-amplification finding has no
// single owning function.
func refineFL090(d *diagnostic.Diagnostic, profiles *ir.ProfileMap) {
	var atomicWrites, indirectCalls, fences int
	for _, p := range profiles.All() {
		for _, ev := range p.Atomics {
			if isAtomicWriteOp(ev.Op) {
				atomicWrites++
			}
		}
		indirectCalls += p.IndirectCallCount
		fences += p.FenceCount
	}
	if atomicWrites == 0 && indirectCalls == 0 && fences == 0 {
		return
	}
	d.Escalate("IR aggregate across the module: %d atomic write(s), %d indirect call(s), %d fence(s)", atomicWrites, indirectCalls, fences)
}
