package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/layout"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl090{}) }

type fl090 struct{}

func (fl090) ID() string                      { return "FL090" }
func (fl090) Title() string                   { return "Hazard Amplification" }
func (fl090) BaseSeverity() severity.Severity { return severity.Critical }
func (fl090) HardwareMechanism() string {
	return "several independent hazards co-located on one record compound rather than merely add, per co-located latency measurements"
}

func (r fl090) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	rec, ok := decl.AsRecord()
	if !ok || !rec.IsComplete() || rec.IsImplicit() || rec.IsLambda() {
		return
	}

	m := layout.Build(rec, ctx.Layout, ctx.Config.CacheLineBytes)
	wideSpan := m.LinesSpanned >= 3
	hasAtomic := false
	mutableCount := 0
	for _, e := range m.Entries {
		if e.IsAtomic {
			hasAtomic = true
		}
		if e.IsMutable {
			mutableCount++
		}
	}
	escapes := ctx.Escape.RecordEscapes(rec)

	signalCount := 0
	if wideSpan {
		signalCount++
	}
	if hasAtomic {
		signalCount++
	}
	if escapes {
		signalCount++
	}
	if signalCount < 3 {
		return
	}

	d := diagnostic.New(r.ID(), r.Title(), severity.Critical, 0.88, severity.Likely, rec.Location())
	d.HardwareReasoning = r.HardwareMechanism()
	d.Escalate("record spans %d cache lines (size signal)", m.LinesSpanned)
	d.Escalate("record contains atomic field(s) (atomic-lines signal)")
	d.Escalate("record is thread-escaping (escape signal)")

	straddling := m.StraddlingFields()
	for _, f := range straddling {
		d.Escalate("field %s straddles cache lines", f.Name)
	}
	if mutableCount > 4 {
		d.Escalate("wide mutable surface: %d mutable fields", mutableCount)
	}
	atomicPairs := m.AtomicPairsOnSameLine()
	if len(atomicPairs) > 0 {
		d.Escalate("%d same-line atomic pair(s)", len(atomicPairs))
	}

	d.WithEvidence("struct", rec.QualifiedName())
	d.WithEvidence("signal_count", fmt.Sprintf("%d", signalCount))
	d.WithEvidence("straddling_fields", joinNames(fieldLineEntryNames(straddling)))
	d.WithEvidence("mutable_fields", fmt.Sprintf("%d", mutableCount))
	d.WithEvidence("same_line_pair", fmt.Sprintf("%d", len(atomicPairs)))
	d.ClampConfidence()

	*out = append(*out, d)
}

func fieldLineEntryNames(entries []*layout.FieldLineEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
