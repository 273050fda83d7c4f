package hypothesis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/faultline-dev/faultline/internal/severity"
)

// c2cHazards and lbrHazards gate the conditional collection scripts.
var c2cHazards = map[severity.HazardClass]bool{
	severity.FalseSharing:        true,
	severity.AtomicContention:    true,
	severity.ContendedQueue:      true,
	severity.HazardAmplification: true,
}

var lbrHazards = map[severity.HazardClass]bool{
	severity.VirtualDispatch:     true,
	severity.StdFunction:         true,
	severity.CentralizedDispatch: true,
	severity.DeepConditional:     true,
}

var numaHazards = map[severity.HazardClass]bool{
	severity.NUMALocality:        true,
	severity.HazardAmplification: true,
}

// GeneratePlan builds a MeasurementPlan for h, partitioning its
// counters into groups of at most maxCountersPerGroup and emitting the
// deterministic, ordered script list.
func GeneratePlan(h LatencyHypothesis, skuFamily string, maxCountersPerGroup int) MeasurementPlan {
	if maxCountersPerGroup <= 0 {
		maxCountersPerGroup = 4
	}

	all := make([]PMUCounter, 0, len(h.RequiredCounters)+len(h.OptionalCounters))
	all = append(all, h.RequiredCounters...)
	all = append(all, h.OptionalCounters...)

	groups := partitionCounters(all, maxCountersPerGroup)

	plan := MeasurementPlan{
		BundleID:      uuid.NewString(),
		HypothesisID:  h.HypothesisID,
		SKUFamily:     skuFamily,
		CounterGroups: groups,
		RequiresC2C:   c2cHazards[h.HazardClass],
		RequiresNUMA:  numaHazards[h.HazardClass],
		RequiresLBR:   lbrHazards[h.HazardClass],
	}

	plan.Scripts = append(plan.Scripts, setupScript(h.HypothesisID))
	for _, g := range groups {
		plan.Scripts = append(plan.Scripts, perfStatScript(h.HypothesisID, g))
	}
	if plan.RequiresC2C {
		plan.Scripts = append(plan.Scripts, c2cScript(h.HypothesisID))
	}
	if plan.RequiresLBR {
		plan.Scripts = append(plan.Scripts, lbrScript(h.HypothesisID))
	}
	plan.Scripts = append(plan.Scripts, pebsScript(h.HypothesisID))
	plan.Scripts = append(plan.Scripts, teardownScript(h.HypothesisID))

	return plan
}

// partitionCounters splits counters into ordered groups of at most max,
// preserving input order.
func partitionCounters(counters []PMUCounter, max int) []CounterGroup {
	var groups []CounterGroup
	for i := 0; i < len(counters); i += max {
		end := i + max
		if end > len(counters) {
			end = len(counters)
		}
		groups = append(groups, CounterGroup{
			GroupID:  fmt.Sprintf("group-%d", len(groups)+1),
			Counters: counters[i:end],
		})
	}
	return groups
}

func setupScript(hypothesisID string) string {
	return fmt.Sprintf("setup-%s.sh: disable turbo, set performance governor, disable C-states above C0, disable THP, disable ASLR, record system state", hypothesisID)
}

func perfStatScript(hypothesisID string, g CounterGroup) string {
	return fmt.Sprintf("perf-stat-%s-%s.sh: perf stat -e %s", hypothesisID, g.GroupID, counterNames(g.Counters))
}

func c2cScript(hypothesisID string) string {
	return fmt.Sprintf("c2c-%s.sh: perf c2c record/report for cross-core coherence sampling", hypothesisID)
}

func lbrScript(hypothesisID string) string {
	return fmt.Sprintf("lbr-%s.sh: perf record -j any,u for branch-record sampling", hypothesisID)
}

func pebsScript(hypothesisID string) string {
	return fmt.Sprintf("pebs-%s.sh: perf record with precise-event sampling for the primary metric", hypothesisID)
}

func teardownScript(hypothesisID string) string {
	return fmt.Sprintf("teardown-%s.sh: reverse every setting setup-%s.sh changed", hypothesisID, hypothesisID)
}

func counterNames(counters []PMUCounter) string {
	names := make([]string, len(counters))
	for i, c := range counters {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}
