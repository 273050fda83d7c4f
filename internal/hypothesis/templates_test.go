package hypothesis

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/severity"
)

func TestTemplates_AllFifteenHazardClassesPresent(t *testing.T) {
	want := []severity.HazardClass{
		severity.CacheLineSpan, severity.FalseSharing, severity.AtomicOrdering,
		severity.AtomicContention, severity.LockContention, severity.HeapAllocation,
		severity.LargeStackFrame, severity.VirtualDispatch, severity.StdFunction,
		severity.GlobalMutableState, severity.ContendedQueue, severity.DeepConditional,
		severity.NUMALocality, severity.CentralizedDispatch, severity.HazardAmplification,
	}
	if len(Templates) != len(want) {
		t.Fatalf("got %d templates, want %d", len(Templates), len(want))
	}
	for _, hc := range want {
		tmpl, ok := Templates[hc]
		if !ok {
			t.Fatalf("missing template for hazard class %s", hc)
		}
		if tmpl.HazardClass != hc {
			t.Errorf("template keyed %s has HazardClass %s", hc, tmpl.HazardClass)
		}
		if tmpl.H0Template == "" || tmpl.H1Template == "" {
			t.Errorf("%s: empty H0/H1 template", hc)
		}
		if tmpl.Metric.Name == "" {
			t.Errorf("%s: empty primary metric", hc)
		}
		if len(tmpl.RequiredCounters) == 0 {
			t.Errorf("%s: no required counters", hc)
		}
		if tmpl.DefaultMDE != 0.05 {
			t.Errorf("%s: DefaultMDE = %v, want 0.05", hc, tmpl.DefaultMDE)
		}
		if len(tmpl.ConfoundControls) != 8 {
			t.Errorf("%s: got %d confound controls, want 8", hc, len(tmpl.ConfoundControls))
		}
	}
}

func TestTemplates_CounterJustificationsNonEmpty(t *testing.T) {
	for hc, tmpl := range Templates {
		for _, c := range append(append([]PMUCounter{}, tmpl.RequiredCounters...), tmpl.OptionalCounters...) {
			if c.Name == "" {
				t.Errorf("%s: counter with empty name", hc)
			}
			if c.Justification == "" {
				t.Errorf("%s: counter %s has no justification", hc, c.Name)
			}
		}
	}
}
