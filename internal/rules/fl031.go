package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl031{}) }

type fl031 struct{}

func (fl031) ID() string                      { return "FL031" }
func (fl031) Title() string                   { return "std::function in Hot Path" }
func (fl031) BaseSeverity() severity.Severity { return severity.High }
func (fl031) HardwareMechanism() string {
	return "std::function's type-erased call is an indirect call through a heap-allocated (or small-buffer) closure, defeating inlining"
}

func isFunctionTyped(t astmodel.Type) bool {
	if t == nil {
		return false
	}
	if t.QualifiedName() == "std::function" {
		return true
	}
	rec, ok := t.Record()
	return ok && rec.QualifiedName() == "std::function"
}

func isFunctionCallSite(s astmodel.Statement) bool {
	callee := s.Callee()
	switch {
	case callee != nil && callee.IsFunctionCallOperator:
		return true
	case s.Kind() == astmodel.StmtConstruct && callee != nil && callee.IsFunctionConstruct:
		return true
	case s.Kind() == astmodel.StmtCall && callee != nil && isFunctionTyped(callee.ReceiverType):
		return true
	default:
		return false
	}
}

func (r fl031) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	walkWithLoopDepth(fn.Body(), 0, func(s astmodel.Statement, loopDepth int) {
		if !isFunctionCallSite(s) {
			return
		}
		d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.80, severity.Proven, s.Location())
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		if loopDepth > 0 {
			d.Severity = severity.Critical
			d.Escalate("std::function call site enclosed in a loop")
		}
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("in_loop", boolStr(loopDepth > 0))
		d.ClampConfidence()
		*out = append(*out, d)
	})

	for _, p := range fn.Params() {
		if !isFunctionTyped(p.Type) {
			continue
		}
		d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.80, severity.Proven, fn.Location())
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		d.Escalate("hot function accepts std::function parameter %s", p.Name)
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("in_loop", "false")
		d.ClampConfidence()
		*out = append(*out, d)
	}
}
