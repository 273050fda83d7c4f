package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/layout"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl041{}) }

type fl041 struct{}

func (fl041) ID() string                      { return "FL041" }
func (fl041) Title() string                   { return "Contended Queue Pattern" }
func (fl041) BaseSeverity() severity.Severity { return severity.High }
func (fl041) HardwareMechanism() string {
	return "head/tail indices sharing a cache line is the canonical SPSC/MPMC queue false-sharing shape"
}

func (r fl041) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	rec, ok := decl.AsRecord()
	if !ok || !rec.IsComplete() || rec.IsImplicit() || rec.IsLambda() {
		return
	}

	m := layout.Build(rec, ctx.Layout, ctx.Config.CacheLineBytes)
	atomicPairs := m.AtomicPairsOnSameLine()
	if len(atomicPairs) == 0 {
		return
	}

	var queueNames []string
	matched := containsQueueToken(rec.QualifiedName())
	if matched {
		queueNames = append(queueNames, rec.QualifiedName())
	}
	for _, e := range m.Entries {
		if e.IsAtomic && containsQueueToken(e.Name) {
			matched = true
			queueNames = append(queueNames, e.Name)
		}
	}

	sev, confidence := severity.High, 0.62
	if matched {
		sev, confidence = severity.Critical, 0.82
	}

	d := diagnostic.New(r.ID(), r.Title(), sev, confidence, severity.Likely, rec.Location())
	d.HardwareReasoning = r.HardwareMechanism()
	if matched {
		d.Escalate("record or atomic field name matches queue-suggestive token: %s", joinNames(queueNames))
	}
	d.WithEvidence("struct", rec.QualifiedName())
	d.WithEvidence("cache_lines", fmt.Sprintf("%d", m.LinesSpanned))
	d.WithEvidence("queue_heuristic", boolStr(matched))
	d.WithEvidence("head_tail_names", joinNames(queueNames))
	d.ClampConfidence()

	*out = append(*out, d)
}
