package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl010{}) }

type fl010 struct{}

func (fl010) ID() string                      { return "FL010" }
func (fl010) Title() string                   { return "Overly Strong Atomic Ordering" }
func (fl010) BaseSeverity() severity.Severity { return severity.High }
func (fl010) HardwareMechanism() string {
	return "a seq_cst atomic op emits a full memory fence on most architectures where a weaker order would suffice"
}

func (r fl010) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	walkWithLoopDepth(fn.Body(), 0, func(s astmodel.Statement, loopDepth int) {
		callee := s.Callee()
		if callee == nil || !isSeqCstOrder(callee.MemoryOrderName) {
			return
		}
		kind := classifyAtomicSite(callee)
		inLoop := loopDepth > 0

		switch kind {
		case atomicSiteLoad:
			return // free on TSO, skip
		case atomicSiteStore:
			d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.85, severity.Likely, s.Location())
			d.FunctionName = fn.QualifiedName()
			d.HardwareReasoning = r.HardwareMechanism()
			if inLoop {
				d.Severity = severity.Critical
				d.Confidence = 0.90
				d.Escalate("seq_cst atomic store inside loop body")
			}
			d.WithEvidence("ordering", "seq_cst")
			d.WithEvidence("op_class", "store")
			d.WithEvidence("function", fn.QualifiedName())
			d.WithEvidence("in_loop", boolStr(inLoop))
			d.ClampConfidence()
			*out = append(*out, d)
		case atomicSiteRMW:
			d := diagnostic.New(r.ID(), r.Title(), severity.Medium, 0.55, severity.Speculative, s.Location())
			d.FunctionName = fn.QualifiedName()
			d.HardwareReasoning = r.HardwareMechanism()
			if inLoop {
				d.Severity = severity.High
				d.Escalate("seq_cst atomic RMW inside loop body")
			}
			d.WithEvidence("ordering", "seq_cst")
			d.WithEvidence("op_class", "rmw")
			d.WithEvidence("function", fn.QualifiedName())
			d.WithEvidence("in_loop", boolStr(inLoop))
			d.ClampConfidence()
			*out = append(*out, d)
		}
	})
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
