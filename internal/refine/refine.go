// Package refine implements the DiagnosticRefiner: rule-ID-dispatched
// rewriting of diagnostics in light of IR evidence.
//
// Refine is not idempotent by content — escalations append on every
// call — so callers must invoke it exactly once per diagnostic.
package refine

import (
	"strconv"
	"strings"

	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/ir"
	"github.com/faultline-dev/faultline/internal/severity"
)

// Options carries the config values refinement policies need but that
// don't belong on the Diagnostic carrier itself.
type Options struct {
	// StackFrameWarnBytes is FL021's suppression threshold
	// (config.StackFrameWarnBytes; default 2048).
	StackFrameWarnBytes int64
}

// Refine rewrites every diagnostic in diags in place using profiles as
// the IR evidence source.
func Refine(diags []*diagnostic.Diagnostic, profiles *ir.ProfileMap, opts Options) {
	for _, d := range diags {
		refineOne(d, profiles, opts)
	}
}

func refineOne(d *diagnostic.Diagnostic, profiles *ir.ProfileMap, opts Options) {
	if d.RuleID == "FL090" {
		refineFL090(d, profiles)
		return
	}

	fnName := recoverFunctionName(d)
	if fnName == "" {
		return
	}
	profile, ok := profiles.Resolve(fnName)
	if !ok {
		return
	}

	switch d.RuleID {
	case "FL010":
		refineFL010(d, profile)
	case "FL011":
		refineFL011(d, profile)
	case "FL012":
		refineFL012(d, profile)
	case "FL020":
		refineFL020(d, profile)
	case "FL021":
		refineFL021(d, profile, opts)
	case "FL030":
		refineFL030(d, profile)
	case "FL031":
		refineFL031(d, profile)
	}
}

// recoverFunctionName tries the diagnostic's own field first, then
// falls back to structural evidence.
func recoverFunctionName(d *diagnostic.Diagnostic) string {
	if d.FunctionName != "" {
		return d.FunctionName
	}
	ev := diagnostic.ParseStructuralEvidence(d.StructuralEvidence())
	if v, ok := ev["function"]; ok && v != "" {
		return v
	}
	if v, ok := ev["caller"]; ok && v != "" {
		return v
	}
	return ""
}

// suffixLocationMatch reports whether an IR debug location correlates to
// a diagnostic's source location: same line, and the IR file path is the
// diagnostic's file or ends with it (handles absolute-vs-relative path
// mismatches between the AST and IR toolchains).
func suffixLocationMatch(irFile string, irLine int, d *diagnostic.Diagnostic) bool {
	if irFile == "" || irLine != d.Location.Line {
		return false
	}
	return irFile == d.Location.File || strings.HasSuffix(irFile, d.Location.File) || strings.HasSuffix(d.Location.File, irFile)
}

func bytesEvidence(n int64) string {
	return strconv.FormatInt(n, 10) + "B"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func parseByteEvidence(d *diagnostic.Diagnostic, key string) (int64, bool) {
	v, ok := d.Evidence(key)
	if !ok {
		return 0, false
	}
	v = strings.TrimSuffix(v, "B")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isAtomicWriteOp(op string) bool {
	return op == "Store" || op == "RMW" || op == "CmpXchg"
}

// promoteToProven promotes a tier to Proven; Proven is already
// strongest so this never weakens a diagnostic.
func promoteToProven(d *diagnostic.Diagnostic) {
	if d.Tier != severity.Proven {
		d.Tier = severity.Proven
	}
}
