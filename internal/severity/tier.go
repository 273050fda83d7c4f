package severity

// EvidenceTier ranks how structurally certain a finding is.
// Ordered Proven < Likely < Speculative — Proven is the strongest tier,
// so comparisons of the form "tier > minTier" mean "weaker than
// minTier".
type EvidenceTier int

const (
	Proven EvidenceTier = iota
	Likely
	Speculative
)

// Unknown is an alias for Speculative, the weakest tier, used where a
// formatter wants to render "Unknown" instead.
const Unknown = Speculative

func (t EvidenceTier) String() string {
	switch t {
	case Proven:
		return "Proven"
	case Likely:
		return "Likely"
	case Speculative:
		return "Speculative"
	default:
		return "Unknown"
	}
}

// ParseEvidenceTier maps a lowercase name back to an EvidenceTier,
// defaulting to Speculative for anything unrecognized, so a malformed
// CLI flag never rejects a run outright.
func ParseEvidenceTier(s string) EvidenceTier {
	switch s {
	case "proven":
		return Proven
	case "likely":
		return Likely
	default:
		return Speculative
	}
}

// StrongerOrEqual reports whether t is at least as strong as other
// (Proven is strongest, so a lower ordinal is stronger).
func (t EvidenceTier) StrongerOrEqual(other EvidenceTier) bool {
	return t <= other
}
