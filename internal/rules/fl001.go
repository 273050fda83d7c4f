package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/layout"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl001{}) }

type fl001 struct{}

func (fl001) ID() string                      { return "FL001" }
func (fl001) Title() string                   { return "Cache Line Spanning Struct" }
func (fl001) BaseSeverity() severity.Severity { return severity.High }
func (fl001) HardwareMechanism() string {
	return "a record wider than one cache line forces multiple line fills per full-object access"
}

func (r fl001) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	rec, ok := decl.AsRecord()
	if !ok || !rec.IsComplete() || rec.IsImplicit() || rec.IsLambda() {
		return
	}

	m := layout.Build(rec, ctx.Layout, ctx.Config.CacheLineBytes)
	if m.LinesSpanned <= 1 {
		return
	}

	d := diagnostic.New(r.ID(), r.Title(), severity.High, 0.72, severity.Proven, rec.Location())
	d.HardwareReasoning = r.HardwareMechanism()

	if m.LinesSpanned >= 3 {
		d.Severity = severity.Critical
		d.Escalate("record spans %d cache lines (>=3): %s", m.LinesSpanned, r.ID())
	}

	straddling := m.StraddlingFields()
	var straddlingNames []string
	for _, f := range straddling {
		straddlingNames = append(straddlingNames, f.Name)
		d.Escalate("field %s straddles lines [%d,%d] at offset %d", f.Name, f.StartLine, f.EndLine, f.OffsetBytes)
		if d.Confidence < 0.82 {
			d.Confidence = 0.82
		}
	}

	var atomicNames []string
	mutableCount := 0
	for _, f := range m.Entries {
		if f.IsAtomic {
			atomicNames = append(atomicNames, f.Name)
		}
		if f.IsMutable {
			mutableCount++
		}
	}
	if len(atomicNames) > 0 {
		d.Severity = severity.Critical
		d.Confidence = 0.90
		d.Escalate("record contains %d atomic field(s): %s", len(atomicNames), joinNames(atomicNames))
	}

	d.WithEvidence("sizeof", bytesEvidence(m.SizeBytes))
	d.WithEvidence("lines_spanned", fmt.Sprintf("%d", m.LinesSpanned))
	d.WithEvidence("straddling_fields", joinNames(straddlingNames))
	d.WithEvidence("atomic_fields", joinNames(atomicNames))
	d.WithEvidence("mutable_fields", fmt.Sprintf("%d", mutableCount))
	d.ClampConfidence()

	*out = append(*out, d)
}
