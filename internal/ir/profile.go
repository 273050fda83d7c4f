package ir

import "strings"

// AllocaRecord is one local allocation attributed to a function's frame.
type AllocaRecord struct {
	Name    string
	Size    int64
	IsArray bool
}

// HeapCallSite is one call recognized as a heap allocation or free, or a
// synthetic entry for an indirect call that might resolve to one.
type HeapCallSite struct {
	Name     string
	Indirect bool
	InLoop   bool
}

// AtomicEvent is one atomic memory operation or fence observed in a
// function body.
type AtomicEvent struct {
	Op              string // "Load", "Store", "RMW", "CmpXchg", "Fence"
	OrderingName    string
	OrderingOrdinal int
	InLoop          bool
	File            string
	Line            int
}

// IRFunctionProfile summarizes one function's lowered IR for diagnostic
// refinement.
type IRFunctionProfile struct {
	MangledName       string
	DemangledName     string
	TotalAllocaBytes  int64
	Allocas           []AllocaRecord
	HeapCallSites     []HeapCallSite
	DirectCallCount   int
	IndirectCallCount int
	Atomics           []AtomicEvent
	FenceCount        int
	SeqCstCount       int
	BasicBlockCount   int
	LoopCount         int
}

// heapAllocNames and heapFreeNames are the symbol sets recognized as
// direct heap traffic. Mangled operator-new/delete forms are matched
// by prefix since their mangling varies by compiler.
var heapAllocNames = map[string]bool{
	"malloc": true, "calloc": true, "realloc": true,
	"aligned_alloc": true, "posix_memalign": true,
}

var heapFreeNames = map[string]bool{
	"free": true,
}

var operatorNewDeletePrefixes = []string{"_Znwm", "_Znam", "_ZdlPv", "_ZdaPv", "_Znwj", "_Znaj"}

// isHeapSymbol reports whether a callee name denotes a heap alloc/free
// site recognized by the IR analyzer.
func isHeapSymbol(name string) bool {
	if heapAllocNames[name] || heapFreeNames[name] {
		return true
	}
	for _, p := range operatorNewDeletePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// QualifiedSuffixMatch reports whether candidate is
// query or ends with "::"+query, which is the namespace-boundary rule
// used by ProfileMap.Resolve and the refiner's function-name recovery.
func QualifiedSuffixMatch(candidate, query string) bool {
	if candidate == query {
		return true
	}
	return strings.HasSuffix(candidate, "::"+query)
}
