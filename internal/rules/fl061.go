package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl061{}) }

type fl061 struct{}

func (fl061) ID() string                      { return "FL061" }
func (fl061) Title() string                   { return "Centralized Dispatcher Bottleneck" }
func (fl061) BaseSeverity() severity.Severity { return severity.High }
func (fl061) HardwareMechanism() string {
	return "a single hot function fanning out through many calls or a wide switch becomes an I-cache and branch-predictor bottleneck"
}

func isCallExprKind(k astmodel.StmtKind) bool {
	switch k {
	case astmodel.StmtCall, astmodel.StmtMemberCall, astmodel.StmtOperatorCall:
		return true
	default:
		return false
	}
}

func (r fl061) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	var totalCalls, virtualCalls, maxCases int
	var hasLoop, hasSwitch bool
	astmodel.Walk(fn.Body(), func(s astmodel.Statement) {
		if astmodel.IsLoopKind(s.Kind()) {
			hasLoop = true
		}
		if isCallExprKind(s.Kind()) {
			totalCalls++
			if callee := s.Callee(); callee != nil && callee.IsVirtual {
				virtualCalls++
			}
		}
		if s.Kind() == astmodel.StmtSwitch {
			hasSwitch = true
			if s.SwitchCaseCount() > maxCases {
				maxCases = s.SwitchCaseCount()
			}
		}
	})

	flagged := totalCalls >= 8 ||
		(maxCases >= 6 && totalCalls >= 3) ||
		virtualCalls >= 3
	if !flagged {
		return
	}

	sev := severity.High
	if hasLoop || (virtualCalls > 0 && hasSwitch) {
		sev = severity.Critical
	}

	d := diagnostic.New(r.ID(), r.Title(), sev, 0.55, severity.Speculative, fn.Location())
	d.FunctionName = fn.QualifiedName()
	d.HardwareReasoning = r.HardwareMechanism()
	d.WithEvidence("function", fn.QualifiedName())
	d.WithEvidence("callees", fmt.Sprintf("%d", totalCalls))
	d.WithEvidence("virtual_call", fmt.Sprintf("%d", virtualCalls))
	d.WithEvidence("switch_cases", fmt.Sprintf("%d", maxCases))
	d.WithEvidence("has_loop", boolStr(hasLoop))
	d.ClampConfidence()

	*out = append(*out, d)
}
