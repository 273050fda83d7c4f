package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/layout"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl060{}) }

type fl060 struct{}

func (fl060) ID() string                      { return "FL060" }
func (fl060) Title() string                   { return "NUMA-Unfriendly Shared Structure" }
func (fl060) BaseSeverity() severity.Severity { return severity.High }
func (fl060) HardwareMechanism() string {
	return "a large shared mutable object spans multiple NUMA-local pages, so remote-node threads pay cross-interconnect latency"
}

func (r fl060) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	rec, ok := decl.AsRecord()
	if !ok || !rec.IsComplete() || rec.IsImplicit() || rec.IsLambda() {
		return
	}
	if !ctx.Escape.RecordEscapes(rec) {
		return
	}

	size := ctx.Layout.SizeOf(rec)
	if size < 256 {
		return
	}

	hasAtomic := false
	hasMutable := false
	for _, f := range rec.Fields() {
		if f.Type.IsAtomicQualified() {
			hasAtomic = true
		}
		if f.Mutable || !f.Type.IsConstQualified() {
			hasMutable = true
		}
	}
	if !hasAtomic && !hasMutable {
		return
	}

	sev := severity.High
	if size >= 4096 {
		sev = severity.Critical
	}
	confidence := 0.35
	if hasAtomic {
		confidence = 0.55
	}

	m := layout.Build(rec, ctx.Layout, ctx.Config.CacheLineBytes)

	d := diagnostic.New(r.ID(), r.Title(), sev, confidence, severity.Speculative, rec.Location())
	d.HardwareReasoning = r.HardwareMechanism()
	d.WithEvidence("sizeof", bytesEvidence(size))
	d.WithEvidence("struct", rec.QualifiedName())
	d.WithEvidence("atomics", boolStr(hasAtomic))
	d.WithEvidence("thread_escape", "true")
	d.WithEvidence("cache_lines", fmt.Sprintf("%d", m.LinesSpanned))
	d.ClampConfidence()

	*out = append(*out, d)
}
