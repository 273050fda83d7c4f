package refine

import (
	"strings"

	"github.com/faultline-dev/faultline/internal/confidence"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
)

// refineFL012 scans for pthread/gthread mutex call sites and CmpXchg
// activity (lock internals are typically CAS-based).
func refineFL012(d *diagnostic.Diagnostic, profile *ir.IRFunctionProfile) {
	heapMatch := false
	for _, c := range profile.HeapCallSites {
		if strings.Contains(c.Name, "pthread_mutex") || strings.Contains(c.Name, "__gthread_mutex") {
			heapMatch = true
			break
		}
	}

	var cmpxchgEvents []ir.AtomicEvent
	for _, ev := range profile.Atomics {
		if ev.Op == "CmpXchg" {
			cmpxchgEvents = append(cmpxchgEvents, ev)
		}
	}

	if !heapMatch && len(cmpxchgEvents) == 0 {
		return
	}

	confidence.Apply(d, confidence.LockConfirmed)
	d.Escalate("IR shows mutex-internal call sites or CAS activity consistent with lock acquisition")

	for _, ev := range cmpxchgEvents {
		if suffixLocationMatch(ev.File, ev.Line, d) {
			promoteToProven(d)
			d.Escalate("IR CmpXchg at this exact site confirms lock acquisition")
			break
		}
	}
}
