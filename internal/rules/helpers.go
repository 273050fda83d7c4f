package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/faultline-dev/faultline/internal/astmodel"
)

// bytesEvidence renders a byte count with the trailing "B" marker the
// hypothesis constructor strips back off.
func bytesEvidence(n int64) string {
	return strconv.FormatInt(n, 10) + "B"
}

// joinNames renders a name list for structural-evidence values; the
// evidence carrier forbids ';' inside a value, so names are joined
// with ',' instead.
func joinNames(names []string) string {
	return strings.Join(names, ",")
}

// walkBody visits every statement under body via astmodel.Walk.
func walkBody(body astmodel.Statement, visit func(astmodel.Statement)) {
	astmodel.Walk(body, visit)
}

// queueTokens are the queue-suggestive substrings FL041 escalates on
// when found in a record's name or an atomic field's name.
var queueTokens = []string{"queue", "buffer", "ring", "head", "tail", "read", "write", "push", "pop", "front", "back"}

func containsQueueToken(name string) bool {
	lower := strings.ToLower(name)
	for _, tok := range queueTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// heapCallNames names the direct-allocation catalog
// FL020 flags. CalleeInfo.IsHeapAlloc/IsHeapFree are expected to be
// pre-resolved by the frontend adapter; this set exists so rule tests
// can build fixtures from bare qualified names when useful.
var heapCallNames = map[string]bool{
	"malloc": true, "calloc": true, "realloc": true, "free": true,
	"aligned_alloc": true, "posix_memalign": true,
	"std::make_shared": true, "std::make_unique": true,
}

func isHeapConstructType(name string) bool {
	switch name {
	case "std::function", "std::shared_ptr", "std::basic_string", "std::string",
		"std::vector", "std::map", "std::unordered_map", "std::list", "std::deque":
		return true
	default:
		return false
	}
}

func fieldNames(fields []astmodel.FieldDecl) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func sprintfFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// walkWithLoopDepth visits stmt and every descendant in preorder,
// reporting the loop nesting depth in effect AT each node (i.e. a
// statement directly inside one enclosing for/while/do/range-for sees
// depth 1). Several rules (FL010-FL012, FL020, FL030-FL031, FL050) key
// escalations on "in loop" / nesting depth, so this walker centralizes
// the bookkeeping repeats per rule.
func walkWithLoopDepth(stmt astmodel.Statement, depth int, visit func(s astmodel.Statement, loopDepth int)) {
	if stmt == nil {
		return
	}
	visit(stmt, depth)
	childDepth := depth
	if astmodel.IsLoopKind(stmt.Kind()) {
		childDepth++
	}
	for _, c := range stmt.Children() {
		walkWithLoopDepth(c, childDepth, visit)
	}
}

// atomicOrderSubstrings are checked against a memory-order argument's
// declaration name; an order is seq_cst unless one of these appears.
var atomicOrderSubstrings = []string{"relaxed", "acquire", "release", "acq_rel", "consume"}

// isSeqCstOrder reports whether orderName denotes the implicit or
// explicit sequentially-consistent memory order per FL010's
// definition.
func isSeqCstOrder(orderName string) bool {
	if orderName == "" {
		return true
	}
	lower := strings.ToLower(orderName)
	for _, s := range atomicOrderSubstrings {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return true
}

// atomicOperatorOps is the overloaded-operator catalog FL010 treats
// as RMW sites on an atomic receiver.
var atomicOperatorOps = map[string]bool{
	"++": true, "--": true, "+=": true, "-=": true, "&=": true, "|=": true, "^=": true,
}

// atomicSiteKind classifies a resolved atomic call/operator site.
type atomicSiteKind int

const (
	atomicSiteNone atomicSiteKind = iota
	atomicSiteLoad
	atomicSiteStore
	atomicSiteRMW
)

func classifyAtomicSite(callee *astmodel.CalleeInfo) atomicSiteKind {
	if callee == nil {
		return atomicSiteNone
	}
	if callee.OperatorAtomicOp != "" {
		if atomicOperatorOps[callee.OperatorAtomicOp] {
			return atomicSiteRMW
		}
		return atomicSiteNone
	}
	if !callee.IsAtomicMethod {
		return atomicSiteNone
	}
	switch callee.AtomicMethod {
	case "load":
		return atomicSiteLoad
	case "store":
		return atomicSiteStore
	case "exchange", "compare_exchange_strong", "compare_exchange_weak",
		"fetch_add", "fetch_sub", "fetch_and", "fetch_or", "fetch_xor":
		return atomicSiteRMW
	default:
		return atomicSiteNone
	}
}

// isAtomicWriteSite reports whether callee denotes any atomic site
// that performs a write (store, RMW, or a write-performing operator),
// used by FL011's write-count gate.
func isAtomicWriteSite(callee *astmodel.CalleeInfo) bool {
	kind := classifyAtomicSite(callee)
	return kind == atomicSiteStore || kind == atomicSiteRMW
}
