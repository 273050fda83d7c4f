package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL031 confirms a std::function call survived inlining/devirtual-
// ization of its indirect invocation.
func refineFL031(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	if profile.IndirectCallCount > 0 {
		confidence.Apply(d, confidence.IndirectConfirmed)
		d.Escalate("IR retains %d indirect call(s) consistent with the std::function invocation", profile.IndirectCallCount)
		return
	}
	confidence.Apply(d, confidence.IndirectGone)
	d.Escalate("IR shows no surviving indirect calls; the std::function invocation may have been inlined away")
}
