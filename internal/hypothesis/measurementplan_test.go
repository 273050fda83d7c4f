package hypothesis

import (
	"strings"
	"testing"

	"github.com/faultline-dev/faultline/internal/severity"
)

func buildHypothesis(hc severity.HazardClass, n int) LatencyHypothesis {
	counters := make([]PMUCounter, n)
	for i := range counters {
		counters[i] = PMUCounter{Name: "counter" + string(rune('a'+i))}
	}
	return LatencyHypothesis{
		HypothesisID:     "H-test",
		HazardClass:      hc,
		RequiredCounters: counters,
	}
}

func TestGeneratePlan_CounterGroupPartitioningPreservesOrder(t *testing.T) {
	h := buildHypothesis(severity.CacheLineSpan, 9)
	plan := GeneratePlan(h, "sapphire-rapids", 4)

	if len(plan.CounterGroups) != 3 {
		t.Fatalf("got %d groups, want 3", len(plan.CounterGroups))
	}
	if len(plan.CounterGroups[0].Counters) != 4 || len(plan.CounterGroups[1].Counters) != 4 || len(plan.CounterGroups[2].Counters) != 1 {
		t.Fatalf("unexpected group sizes: %v", plan.CounterGroups)
	}

	var flat []string
	for _, g := range plan.CounterGroups {
		for _, c := range g.Counters {
			flat = append(flat, c.Name)
		}
	}
	for i := 0; i < len(h.RequiredCounters); i++ {
		if flat[i] != h.RequiredCounters[i].Name {
			t.Errorf("counter order not preserved at index %d: got %s, want %s", i, flat[i], h.RequiredCounters[i].Name)
		}
	}
}

func TestGeneratePlan_ScriptOrdering(t *testing.T) {
	h := buildHypothesis(severity.FalseSharing, 2)
	plan := GeneratePlan(h, "sapphire-rapids", 4)

	if !plan.RequiresC2C {
		t.Fatal("FalseSharing should require C2C")
	}
	if plan.RequiresLBR {
		t.Fatal("FalseSharing should not require LBR")
	}

	if len(plan.Scripts) < 5 {
		t.Fatalf("got %d scripts, want at least setup, one perf-stat, c2c, pebs, teardown", len(plan.Scripts))
	}
	if !strings.HasPrefix(plan.Scripts[0], "setup-") {
		t.Errorf("first script = %q, want setup", plan.Scripts[0])
	}
	last := plan.Scripts[len(plan.Scripts)-1]
	if !strings.HasPrefix(last, "teardown-") {
		t.Errorf("last script = %q, want teardown", last)
	}
	var sawPebs, sawC2C bool
	for _, s := range plan.Scripts {
		if strings.HasPrefix(s, "pebs-") {
			sawPebs = true
		}
		if strings.HasPrefix(s, "c2c-") {
			sawC2C = true
		}
	}
	if !sawPebs {
		t.Error("expected a pebs script to always be present")
	}
	if !sawC2C {
		t.Error("expected a c2c script for FalseSharing")
	}
}

func TestGeneratePlan_LBRGatedByDispatchHazards(t *testing.T) {
	h := buildHypothesis(severity.VirtualDispatch, 1)
	plan := GeneratePlan(h, "sapphire-rapids", 4)
	if !plan.RequiresLBR {
		t.Fatal("VirtualDispatch should require LBR")
	}
	if plan.RequiresC2C {
		t.Fatal("VirtualDispatch should not require C2C")
	}
}

func TestGeneratePlan_NUMAFlagForNUMAAndAmplification(t *testing.T) {
	h := buildHypothesis(severity.NUMALocality, 1)
	plan := GeneratePlan(h, "sapphire-rapids", 4)
	if !plan.RequiresNUMA {
		t.Fatal("NUMALocality should require NUMA flag")
	}
}

func TestGeneratePlan_DefaultsMaxCountersPerGroupWhenNonPositive(t *testing.T) {
	h := buildHypothesis(severity.CacheLineSpan, 5)
	plan := GeneratePlan(h, "sapphire-rapids", 0)
	if len(plan.CounterGroups) != 2 {
		t.Fatalf("got %d groups, want 2 (default max 4)", len(plan.CounterGroups))
	}
}
