package rules

import (
	"strconv"

	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/severity"
)

func init() { Register(&fl012{}) }

type fl012 struct{}

func (fl012) ID() string                      { return "FL012" }
func (fl012) Title() string                   { return "Lock in Hot Path" }
func (fl012) BaseSeverity() severity.Severity { return severity.Critical }
func (fl012) HardwareMechanism() string {
	return "acquiring a mutex on a hot path risks a futex syscall and cross-core cache-line ping-pong on the lock word"
}

var lockAcquisitionKinds = map[string]bool{
	"lock": true, "try_lock": true,
	"lock_guard": true, "unique_lock": true, "shared_lock": true, "scoped_lock": true,
}

func (r fl012) Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic) {
	fn, ok := decl.AsFunction()
	if !ok || !fn.HasBody() || !ctx.Hot.IsHot(fn) {
		return
	}
	r.walkChildren(fn.Body().Children(), 0, 0, fn, out)
}

// walk recurses into stmt's own nested scope, tracking loop depth and
// carrying the lock depth the enclosing scope held at this point.
func (r fl012) walk(stmt astmodel.Statement, loopDepth, lockDepth int, fn astmodel.FunctionDecl, out *[]*diagnostic.Diagnostic) {
	if stmt == nil {
		return
	}
	childLoopDepth := loopDepth
	if astmodel.IsLoopKind(stmt.Kind()) {
		childLoopDepth++
	}
	r.walkChildren(stmt.Children(), childLoopDepth, lockDepth, fn, out)
}

// walkChildren threads lock depth sequentially across sibling
// statements: an acquisition increments depth for every following
// sibling (its RAII or explicit scope), an explicit unlock decrements
// it — the "restoring it on scope exit" behavior asks for.
func (r fl012) walkChildren(stmts []astmodel.Statement, loopDepth, lockDepth int, fn astmodel.FunctionDecl, out *[]*diagnostic.Diagnostic) {
	depth := lockDepth
	for _, s := range stmts {
		callee := s.Callee()
		switch {
		case callee != nil && lockAcquisitionKinds[callee.LockCallKind]:
			d := diagnostic.New(r.ID(), r.Title(), severity.Critical, 0.75, severity.Likely, s.Location())
			d.FunctionName = fn.QualifiedName()
			d.HardwareReasoning = r.HardwareMechanism()
			if depth > 0 {
				d.Escalate("nested acquisition at lock depth %d", depth+1)
			}
			if loopDepth > 0 {
				d.Escalate("lock acquisition inside loop body")
			}
			d.WithEvidence("function", fn.QualifiedName())
			d.WithEvidence("op", callee.LockCallKind)
			d.WithEvidence("depth", strconv.Itoa(depth+1))
			d.WithEvidence("in_loop", boolStr(loopDepth > 0))
			d.ClampConfidence()
			*out = append(*out, d)
			depth++
		case callee != nil && callee.LockCallKind == "unlock":
			if depth > 0 {
				depth--
			}
		}
		r.walk(s, loopDepth, depth, fn, out)
	}
}

