package hypothesis

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/severity"
)

func TestFileScope_StripsTrailingLine(t *testing.T) {
	if got := fileScope("FL001-queue.cc:42"); got != "FL001-queue.cc" {
		t.Errorf("got %q", got)
	}
	if got := fileScope("no-colon-here"); got != "no-colon-here" {
		t.Errorf("got %q", got)
	}
}

func TestEligiblePair_MatchesEitherOrder(t *testing.T) {
	if _, ok := eligiblePair(severity.FalseSharing, severity.AtomicContention); !ok {
		t.Fatal("expected FalseSharing+AtomicContention to be eligible")
	}
	if _, ok := eligiblePair(severity.AtomicContention, severity.FalseSharing); !ok {
		t.Fatal("expected the reversed pair to be eligible too")
	}
	if _, ok := eligiblePair(severity.DeepConditional, severity.LockContention); ok {
		t.Fatal("expected an unlisted pair to be ineligible")
	}
}

func TestDetectCandidates_GroupsByFileScopeAndFormsPairs(t *testing.T) {
	hyps := []LatencyHypothesis{
		{FindingID: "FL001-queue.cc:10", HazardClass: severity.FalseSharing},
		{FindingID: "FL011-queue.cc:20", HazardClass: severity.AtomicContention},
		{FindingID: "FL050-other.cc:5", HazardClass: severity.DeepConditional},
	}
	candidates := DetectCandidates(hyps)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (cross-file pairs must not be formed)", len(candidates))
	}
	c := candidates[0]
	if c.TemplateID != "IX-001" {
		t.Errorf("TemplateID = %s, want IX-001", c.TemplateID)
	}
	if c.FindingA != "FL001-queue.cc:10" || c.FindingB != "FL011-queue.cc:20" {
		t.Errorf("unexpected finding pair: %s / %s", c.FindingA, c.FindingB)
	}
}

func TestDetectCandidates_NoEligiblePairYieldsNoCandidates(t *testing.T) {
	hyps := []LatencyHypothesis{
		{FindingID: "FL050-a.cc:1", HazardClass: severity.DeepConditional},
		{FindingID: "FL012-a.cc:2", HazardClass: severity.LockContention},
	}
	if got := DetectCandidates(hyps); len(got) != 0 {
		t.Fatalf("got %d candidates, want 0", len(got))
	}
}

func TestConstructInteractionHypothesis_SetsHazardAmplificationAndP9999(t *testing.T) {
	c := InteractionCandidate{
		TemplateID: "IX-001",
		FindingA:   "FL001-queue.cc:10",
		FindingB:   "FL011-queue.cc:20",
		Mechanism:  "amplifies coherence traffic",
	}
	h := ConstructInteractionHypothesis(c)
	if h.HazardClass != severity.HazardAmplification {
		t.Errorf("HazardClass = %v, want HazardAmplification", h.HazardClass)
	}
	if h.PrimaryMetric.Percentile != "p99.99" {
		t.Errorf("Percentile = %s, want p99.99", h.PrimaryMetric.Percentile)
	}
	if h.EvidenceTier != severity.Likely {
		t.Errorf("EvidenceTier = %v, want Likely", h.EvidenceTier)
	}
	if h.Verdict != Pending {
		t.Errorf("Verdict = %v, want Pending", h.Verdict)
	}
	if len(h.RequiredCounters) == 0 {
		t.Error("expected a non-empty union counter set")
	}
}

func TestInteractionCatalog_RunningMeanAndSuperAdditiveLatch(t *testing.T) {
	cat := NewInteractionCatalog()
	cat.Add(InteractionResult{TemplateID: "IX-001", InteractionD: 0.10, SuperAdditive: false})
	cat.Add(InteractionResult{TemplateID: "IX-001", InteractionD: 0.30, SuperAdditive: true})

	entry, ok := cat.Entry("IX-001")
	if !ok {
		t.Fatal("expected an entry for IX-001")
	}
	if entry.RunningMeanD != 0.20 {
		t.Errorf("RunningMeanD = %v, want 0.20", entry.RunningMeanD)
	}
	if !entry.ConfirmedSuperAdditive {
		t.Error("expected ConfirmedSuperAdditive to latch true")
	}

	cat.Add(InteractionResult{TemplateID: "IX-001", InteractionD: -0.50, SuperAdditive: false})
	entry, _ = cat.Entry("IX-001")
	if !entry.ConfirmedSuperAdditive {
		t.Error("expected the latch to stay true after a non-super-additive result")
	}
}

func TestInteractionCatalog_UnknownTemplateNotFound(t *testing.T) {
	cat := NewInteractionCatalog()
	if _, ok := cat.Entry("IX-999"); ok {
		t.Fatal("expected no entry for a template never added")
	}
}

func TestUnion_DeduplicatesByCounterName(t *testing.T) {
	a := []PMUCounter{{Name: "x"}, {Name: "y"}}
	b := []PMUCounter{{Name: "y"}, {Name: "z"}}
	got := union(a, b)
	if len(got) != 3 {
		t.Fatalf("got %d counters, want 3", len(got))
	}
}
