package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl011{}) }

type fl011 struct{}

func (fl011) ID() string                      { return "FL011" }
func (fl011) Title() string                   { return "Atomic Contention Hotspot" }
func (fl011) BaseSeverity() severity.Severity { return severity.Critical }
func (fl011) HardwareMechanism() string {
	return "repeated atomic writes from a hot function serialize on the cache-coherence protocol across contending cores"
}

func (r fl011) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	writeCount := 0
	loopWrites := 0
	var firstSite astmodel.SourceLocation
	walkWithLoopDepth(fn.Body(), 0, func(s astmodel.Statement, loopDepth int) {
		if !isAtomicWriteSite(s.Callee()) {
			return
		}
		if writeCount == 0 {
			firstSite = s.Location()
		}
		writeCount++
		if loopDepth > 0 {
			loopWrites++
		}
	})

	if writeCount < 2 && loopWrites == 0 {
		return
	}

	confidence := 0.65
	if loopWrites > 0 {
		confidence = 0.80
	}

	d := diagnostic.New(r.ID(), r.Title(), severity.Critical, confidence, severity.Likely, firstSite)
	d.FunctionName = fn.QualifiedName()
	d.HardwareReasoning = r.HardwareMechanism()
	if loopWrites > 0 {
		d.Escalate("%d of %d atomic writes occur inside a loop", loopWrites, writeCount)
	}
	d.WithEvidence("function", fn.QualifiedName())
	d.WithEvidence("atomic_writes", fmt.Sprintf("%d", writeCount))
	d.WithEvidence("loop_writes", fmt.Sprintf("%d", loopWrites))
	d.ClampConfidence()

	*out = append(*out, d)
}
