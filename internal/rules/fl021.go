package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl021{}) }

type fl021 struct{}

func (fl021) ID() string                      { return "FL021" }
func (fl021) Title() string                   { return "Large Stack Frame" }
func (fl021) BaseSeverity() severity.Severity { return severity.Medium }
func (fl021) HardwareMechanism() string {
	return "a large stack frame on a hot path increases the odds of a cold cache line touch or guard-page fault per call"
}

func (r fl021) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() {
		return
	}

	var total int64
	var largeLocals []string
	for _, l := range fn.Locals() {
		if l.Type == nil || l.Type.IsIncomplete() || l.Type.IsDependent() {
			continue
		}
		total += l.SizeBytes
		if l.SizeBytes >= ctx.Config.AllocSizeEscalation {
			largeLocals = append(largeLocals, l.Name)
		}
	}
	for _, p := range fn.Params() {
		if !p.ByValue {
			continue
		}
		total += p.SizeBytes
	}

	if total < ctx.Config.StackFrameWarnBytes {
		return
	}

	hot := ctx.Hot.IsHot(fn)
	sev := severity.Medium
	if hot {
		sev = severity.High
	}
	if total > 4096 && hot {
		sev = severity.Critical
	}

	d := diagnostic.New(r.ID(), r.Title(), sev, 0.80, severity.Likely, fn.Location())
	d.FunctionName = fn.QualifiedName()
	d.HardwareReasoning = r.HardwareMechanism()
	for _, name := range largeLocals {
		d.Escalate("local %s is a large (>=%dB) stack allocation", name, ctx.Config.AllocSizeEscalation)
	}
	d.WithEvidence("function", fn.QualifiedName())
	d.WithEvidence("estimated_frame", bytesEvidence(total))
	d.WithEvidence("hot_path", boolStr(hot))
	d.ClampConfidence()

	*out = append(*out, d)
}
