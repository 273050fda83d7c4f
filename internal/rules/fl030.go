package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl030{}) }

type fl030 struct{}

func (fl030) ID() string                      { return "FL030" }
func (fl030) Title() string                   { return "Virtual Dispatch in Hot Path" }
func (fl030) BaseSeverity() severity.Severity { return severity.High }
func (fl030) HardwareMechanism() string {
	return "a virtual call indirects through the vtable, defeating inlining and branch prediction on a hot path"
}

func isVirtualCallSite(s astmodel.Statement) bool {
	if s.Kind() != astmodel.StmtMemberCall {
		return false
	}
	callee := s.Callee()
	if callee == nil || !callee.IsVirtual || callee.ReceiverType == nil {
		return false
	}
	switch callee.ReceiverType.Kind() {
	case astmodel.KindPointer, astmodel.KindReference, astmodel.KindRecord:
		return true
	default:
		return false
	}
}

func (r fl030) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	walkWithLoopDepth(fn.Body(), 0, func(s astmodel.Statement, loopDepth int) {
		if !isVirtualCallSite(s) {
			return
		}
		d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.80, severity.Proven, s.Location())
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		if loopDepth > 0 {
			d.Severity = severity.Critical
			d.Escalate("virtual call site enclosed in a loop")
		}
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("virtual_call", s.Callee().QualifiedName)
		d.WithEvidence("in_loop", boolStr(loopDepth > 0))
		d.ClampConfidence()
		*out = append(*out, d)
	})
}
