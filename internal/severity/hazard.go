package severity

// HazardClass names one of the fifteen structural hazard categories,
// one per rule ID, used by the hypothesis pipeline to select templates
// and by the interaction model to test co-location eligibility.
type HazardClass int

const (
	CacheLineSpan HazardClass = iota
	FalseSharing
	AtomicOrdering
	AtomicContention
	LockContention
	HeapAllocation
	LargeStackFrame
	VirtualDispatch
	StdFunction
	GlobalMutableState
	ContendedQueue
	DeepConditional
	NUMALocality
	CentralizedDispatch
	HazardAmplification
)

var hazardNames = map[HazardClass]string{
	CacheLineSpan:        "CacheLineSpan",
	FalseSharing:         "FalseSharing",
	AtomicOrdering:       "AtomicOrdering",
	AtomicContention:     "AtomicContention",
	LockContention:       "LockContention",
	HeapAllocation:       "HeapAllocation",
	LargeStackFrame:      "LargeStackFrame",
	VirtualDispatch:      "VirtualDispatch",
	StdFunction:          "StdFunction",
	GlobalMutableState:   "GlobalMutableState",
	ContendedQueue:       "ContendedQueue",
	DeepConditional:      "DeepConditional",
	NUMALocality:         "NUMALocality",
	CentralizedDispatch:  "CentralizedDispatch",
	HazardAmplification:  "HazardAmplification",
}

func (h HazardClass) String() string {
	if n, ok := hazardNames[h]; ok {
		return n
	}
	return "Unknown"
}

// RuleHazard maps a rule ID to its hazard class. Rule IDs not present
// here have no hazard-class mapping and cannot enter the hypothesis
// pipeline.
var RuleHazard = map[string]HazardClass{
	"FL001": CacheLineSpan,
	"FL002": FalseSharing,
	"FL010": AtomicOrdering,
	"FL011": AtomicContention,
	"FL012": LockContention,
	"FL020": HeapAllocation,
	"FL021": LargeStackFrame,
	"FL030": VirtualDispatch,
	"FL031": StdFunction,
	"FL040": GlobalMutableState,
	"FL041": ContendedQueue,
	"FL050": DeepConditional,
	"FL060": NUMALocality,
	"FL061": CentralizedDispatch,
	"FL090": HazardAmplification,
}
