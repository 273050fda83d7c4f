package hypothesis

import (
	"sort"
	"strings"

	"github.com/faultline-dev/faultline/internal/severity"
)

// InteractionTemplates is the eligibility matrix IX-001..IX-007, each
// listing the pair of hazard classes that composes, an amplification
// mechanism, a union counter set, and an interaction threshold δ.
var InteractionTemplates = []InteractionTemplate{
	{
		ID:            "IX-001",
		HazardClasses: [2]severity.HazardClass{severity.FalseSharing, severity.AtomicContention},
		Mechanism:     "a false-sharing pair under atomic contention amplifies coherence-invalidation traffic beyond either hazard alone",
		CounterSet:    union(Templates[severity.FalseSharing].RequiredCounters, Templates[severity.AtomicContention].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-002",
		HazardClasses: [2]severity.HazardClass{severity.CacheLineSpan, severity.FalseSharing},
		Mechanism:     "a wide structure that also false-shares pulls in more coherence traffic per invalidation than a compact false-sharing pair",
		CounterSet:    union(Templates[severity.CacheLineSpan].RequiredCounters, Templates[severity.FalseSharing].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-003",
		HazardClasses: [2]severity.HazardClass{severity.ContendedQueue, severity.AtomicContention},
		Mechanism:     "a contended queue whose head/tail pointers are separately hot amplifies the per-operation CAS retry rate",
		CounterSet:    union(Templates[severity.ContendedQueue].RequiredCounters, Templates[severity.AtomicContention].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-004",
		HazardClasses: [2]severity.HazardClass{severity.GlobalMutableState, severity.FalseSharing},
		Mechanism:     "a global that also false-shares with an unrelated field turns every writer into a cross-core invalidation source",
		CounterSet:    union(Templates[severity.GlobalMutableState].RequiredCounters, Templates[severity.FalseSharing].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-005",
		HazardClasses: [2]severity.HazardClass{severity.VirtualDispatch, severity.CentralizedDispatch},
		Mechanism:     "virtual dispatch through a centralized bottleneck compounds indirect-branch mispredictions with serialized fan-out stalls",
		CounterSet:    union(Templates[severity.VirtualDispatch].RequiredCounters, Templates[severity.CentralizedDispatch].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-006",
		HazardClasses: [2]severity.HazardClass{severity.StdFunction, severity.DeepConditional},
		Mechanism:     "a type-erased callable selected by a deep conditional tree compounds indirect-call misprediction with branch misprediction on the same call path",
		CounterSet:    union(Templates[severity.StdFunction].RequiredCounters, Templates[severity.DeepConditional].RequiredCounters),
		Threshold:     0.20,
	},
	{
		ID:            "IX-007",
		HazardClasses: [2]severity.HazardClass{severity.NUMALocality, severity.HazardAmplification},
		Mechanism:     "a cross-NUMA-node structure that already amplifies multiple co-located hazards pays a remote-memory round trip on top of local coherence cost",
		CounterSet:    union(Templates[severity.NUMALocality].RequiredCounters, Templates[severity.HazardAmplification].RequiredCounters),
		Threshold:     0.20,
	},
}

func union(a, b []PMUCounter) []PMUCounter {
	seen := make(map[string]bool)
	var out []PMUCounter
	for _, c := range append(append([]PMUCounter{}, a...), b...) {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// eligiblePair reports the template matching an unordered pair of hazard
// classes, if any.
func eligiblePair(a, b severity.HazardClass) (InteractionTemplate, bool) {
	for _, t := range InteractionTemplates {
		if (t.HazardClasses[0] == a && t.HazardClasses[1] == b) || (t.HazardClasses[0] == b && t.HazardClasses[1] == a) {
			return t, true
		}
	}
	return InteractionTemplate{}, false
}

// fileScope strips the trailing ":line" from a finding ID, leaving
// "<ruleID>-<file>"; DetectCandidates drops the rule-ID prefix from it
// to obtain the file-level grouping key.
func fileScope(findingID string) string {
	idx := strings.LastIndex(findingID, ":")
	if idx < 0 {
		return findingID
	}
	return findingID[:idx]
}

// DetectCandidates groups hypotheses by declaration scope (the file-level
// key derived from each finding ID), forms every pair within a group, and
// emits a candidate for each eligible pair.
func DetectCandidates(hyps []LatencyHypothesis) []InteractionCandidate {
	groups := make(map[string][]LatencyHypothesis)
	for _, h := range hyps {
		key := fileScope(h.FindingID)
		if _, file, ok := strings.Cut(key, "-"); ok {
			key = file
		}
		groups[key] = append(groups[key], h)
	}

	var scopeKeys []string
	for k := range groups {
		scopeKeys = append(scopeKeys, k)
	}
	sort.Strings(scopeKeys)

	var candidates []InteractionCandidate
	for _, scope := range scopeKeys {
		members := groups[scope]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				tmpl, ok := eligiblePair(a.HazardClass, b.HazardClass)
				if !ok {
					continue
				}
				candidates = append(candidates, InteractionCandidate{
					TemplateID: tmpl.ID,
					FindingA:   a.FindingID,
					FindingB:   b.FindingID,
					Mechanism:  tmpl.Mechanism,
				})
			}
		}
	}
	return candidates
}

// ConstructInteractionHypothesis builds the composite hypothesis for a
// candidate pair: hazard class HazardAmplification, primary metric
// p99.99 latency, counter set the template's union, evidence tier
// Likely.
func ConstructInteractionHypothesis(c InteractionCandidate) LatencyHypothesis {
	tmpl, ok := templateByID(c.TemplateID)
	if !ok {
		tmpl = InteractionTemplate{ID: c.TemplateID, Mechanism: c.Mechanism}
	}
	return LatencyHypothesis{
		FindingID:        c.FindingA + "+" + c.FindingB,
		HypothesisID:     "H-" + c.TemplateID + "-" + c.FindingA + "+" + c.FindingB,
		HazardClass:      severity.HazardAmplification,
		H0:               "The co-occurrence of " + c.FindingA + " and " + c.FindingB + " has no latency effect beyond their individual contributions.",
		H1:               c.Mechanism,
		PrimaryMetric:    MetricSpec{Name: "op_latency", Unit: "ns", Percentile: "p99.99"},
		RequiredCounters: tmpl.CounterSet,
		EvidenceTier:     severity.Likely,
		Verdict:          Pending,
	}
}

func templateByID(id string) (InteractionTemplate, bool) {
	for _, t := range InteractionTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return InteractionTemplate{}, false
}
