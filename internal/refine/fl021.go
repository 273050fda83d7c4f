package refine

import (
	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL021 replaces the AST frame estimate with the IR-precise alloca
// total, suppressing the diagnostic if IR refutes the AST premise — the
// one rule allowed to suppress on IR evidence.
func refineFL021(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile, opts Options) {
	threshold := opts.StackFrameWarnBytes
	if threshold <= 0 {
		threshold = 2048
	}

	irBytes := profile.TotalAllocaBytes
	if irBytes < threshold {
		d.Suppressed = true
		d.Escalate("IR total alloca bytes (%d) is below the stack-frame threshold (%d); suppressing", irBytes, threshold)
		return
	}

	confidence.Apply(d, confidence.StackConfirmed)
	promoteToProven(d)
	d.WithEvidence("ir_frame", bytesEvidence(irBytes))
	d.WithEvidence("ir_allocas", itoa(len(profile.Allocas)))
	d.Escalate("IR confirms a %d-byte stack frame", irBytes)

	if astEstimate, ok := parseByteEvidence(d, "estimated_frame"); ok && irBytes > 2*astEstimate {
		d.Escalate("IR frame is more than double the AST estimate; likely compiler padding or spilled temporaries")
	}
}
