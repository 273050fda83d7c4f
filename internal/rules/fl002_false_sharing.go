package rules

import (
	"fmt"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/layout"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl002{}) }

type fl002 struct{}

func (fl002) ID() string                      { return "FL002" }
func (fl002) Title() string                   { return "False Sharing Candidate" }
func (fl002) BaseSeverity() severity.Severity { return severity.High }
func (fl002) HardwareMechanism() string {
	return "independently-written fields sharing a cache line force coherence traffic on every write from any core"
}

func (r fl002) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	rec, ok := decl.AsRecord()
	if !ok || !rec.IsComplete() || rec.IsImplicit() || rec.IsLambda() {
		return
	}
	if !ctx.Escape.RecordEscapes(rec) {
		return
	}

	m := layout.Build(rec, ctx.Layout, ctx.Config.CacheLineBytes)
	mutablePairs := m.MutablePairsOnSameLine()
	if len(mutablePairs) == 0 {
		return
	}

	atomicPairs := m.AtomicPairsOnSameLine()

	var sev severity.Severity
	var confidence float64
	var tier severity.EvidenceTier
	if len(atomicPairs) > 0 {
		sev, confidence, tier = severity.Critical, 0.88, severity.Proven
	} else if !hasAtomicField(m) {
		return
	} else {
		sev, confidence, tier = severity.High, 0.68, severity.Likely
	}

	d := diagnostic.New(r.ID(), r.Title(), sev, confidence, tier, rec.Location())
	d.HardwareReasoning = r.HardwareMechanism()

	for _, p := range atomicPairs {
		d.Escalate("atomic pair %s/%s shares line %d", p.A.Name, p.B.Name, p.Line)
	}
	for _, line := range m.FalseSharingCandidateLines() {
		d.Escalate("mixed atomic+mutable surface on line %d", line)
	}

	var mutableNames []string
	for _, p := range mutablePairs {
		mutableNames = append(mutableNames, p.A.Name, p.B.Name)
	}
	mutableCount := len(dedupe(mutableNames))
	d.WithEvidence("sizeof", bytesEvidence(m.SizeBytes))
	d.WithEvidence("cache_lines", fmt.Sprintf("%d", m.LinesSpanned))
	d.WithEvidence("same_line_pair", fmt.Sprintf("%d", len(mutablePairs)))
	d.WithEvidence("mutable_fields", fmt.Sprintf("%d", mutableCount))
	d.WithEvidence("thread_escape", "true")
	d.ClampConfidence()

	*out = append(*out, d)
}

func hasAtomicField(m *layout.CacheLineMap) bool {
	for _, e := range m.Entries {
		if e.IsAtomic {
			return true
		}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
