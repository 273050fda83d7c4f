package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl020{}) }

type fl020 struct{}

func (fl020) ID() string                      { return "FL020" }
func (fl020) Title() string                   { return "Heap Allocation in Hot Path" }
func (fl020) BaseSeverity() severity.Severity { return severity.Critical }
func (fl020) HardwareMechanism() string {
	return "a heap allocator call on a hot path risks a syscall, lock contention in the allocator, or page fault on first touch"
}

func isHeapSite(s astmodel.Statement) bool {
	switch s.Kind() {
	case astmodel.StmtNewExpr, astmodel.StmtDeleteExpr:
		return true
	}
	callee := s.Callee()
	if callee == nil {
		return false
	}
	if callee.IsHeapAlloc || callee.IsHeapFree {
		return true
	}
	if s.Kind() == astmodel.StmtConstruct && isHeapConstructType(callee.QualifiedName) {
		return true
	}
	return false
}

func (r fl020) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	walkWithLoopDepth(fn.Body(), 0, func(s astmodel.Statement, loopDepth int) {
		if !isHeapSite(s) {
			return
		}
		d := diagnostic.New(r.ID(), r.Title(), severity.Critical, 0.75, severity.Likely, s.Location())
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		inLoop := loopDepth > 0
		if inLoop {
			d.Confidence = 0.85
			d.Escalate("heap allocation site inside loop body")
		}
		callee := s.Callee()
		callName := ""
		if callee != nil {
			callName = callee.QualifiedName
		}
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("callees", callName)
		d.WithEvidence("in_loop", boolStr(inLoop))
		d.ClampConfidence()
		*out = append(*out, d)
	})
}
