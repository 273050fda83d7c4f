package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl050{}) }

type fl050 struct{}

func (fl050) ID() string                      { return "FL050" }
func (fl050) Title() string                   { return "Deep Conditional Tree" }
func (fl050) BaseSeverity() severity.Severity { return severity.Medium }
func (fl050) HardwareMechanism() string {
	return "deeply nested branches or wide switches overwhelm the branch predictor's pattern history on a hot path"
}

func (r fl050) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}

	maxDepth := 0
	var deepestLoc astmodel.SourceLocation
	r.walkIfDepth(fn.Body(), 0, &maxDepth, &deepestLoc)

	if maxDepth >= ctx.Config.BranchDepthWarn {
		sev := severity.Medium
		if maxDepth >= 6 {
			sev = severity.High
		}
		d := diagnostic.New(r.ID(), r.Title(), sev, 0.50, severity.Speculative, deepestLoc)
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("max_depth", fmt.Sprintf("%d", maxDepth))
		d.ClampConfidence()
		*out = append(*out, d)
	}

	astmodel.Walk(fn.Body(), func(s astmodel.Statement) {
		if s.Kind() != astmodel.StmtSwitch {
			return
		}
		cases := s.SwitchCaseCount()
		if cases < 8 {
			return
		}
		d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.50, severity.Speculative, s.Location())
		d.FunctionName = fn.QualifiedName()
		d.HardwareReasoning = r.HardwareMechanism()
		d.WithEvidence("function", fn.QualifiedName())
		d.WithEvidence("cases", fmt.Sprintf("%d", cases))
		d.WithEvidence("switch_cases", fmt.Sprintf("%d", cases))
		d.ClampConfidence()
		*out = append(*out, d)
	})
}

func (r fl050) walkIfDepth(stmt astmodel.Statement, depth int, maxDepth *int, deepestLoc *astmodel.SourceLocation) {
	if stmt == nil {
		return
	}
	childDepth := depth
	if stmt.Kind() == astmodel.StmtIf {
		childDepth++
		if childDepth > *maxDepth {
			*maxDepth = childDepth
			*deepestLoc = stmt.Location()
		}
	}
	for _, c := range stmt.Children() {
		r.walkIfDepth(c, childDepth, maxDepth, deepestLoc)
	}
}
