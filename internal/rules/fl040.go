package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl040{}) }

type fl040 struct{}

func (fl040) ID() string                      { return "FL040" }
func (fl040) Title() string                   { return "Centralized Mutable Global State" }
func (fl040) BaseSeverity() severity.Severity { return severity.High }
func (fl040) HardwareMechanism() string {
	return "a globally shared mutable object becomes a hot cache line every thread must fetch exclusively on write"
}

func (r fl040) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	v, ok := decl.AsVar()
	if !ok || !ctx.Escape.IsGlobalSharedMutable(*v) {
		return
	}

	atomicBacked := v.Type != nil && v.Type.IsAtomicQualified()
	if !atomicBacked && v.Type != nil {
		if rec, ok := v.Type.Record(); ok {
			atomicBacked = ctx.Escape.RecordContainsAtomicRecursively(rec)
		}
	}

	var sev severity.Severity
	var confidence float64
	var tier severity.EvidenceTier
	if atomicBacked {
		sev, confidence, tier = severity.Critical, 0.85, severity.Likely
	} else {
		sev, confidence, tier = severity.High, 0.60, severity.Speculative
	}

	d := diagnostic.New(r.ID(), r.Title(), sev, confidence, tier, v.Location)
	d.HardwareReasoning = r.HardwareMechanism()
	d.WithEvidence("var", v.Name)
	d.WithEvidence("atomics", boolStr(atomicBacked))
	d.ClampConfidence()

	*out = append(*out, d)
}
