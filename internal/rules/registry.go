// Package rules implements the pluggable rule engine: a stable Rule
// interface, a process-wide static registry, and the two-pass AST
// driver that feeds every non-system-header declaration through every
// registered rule.
//
// Each of the fifteen rules lives in its own file and self-registers
// from an init() function, a registry idiom adapted to
// self-registration instead of an explicit call site.
package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/config"
	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/escape"
	"github.com/faultline-dev/faultline/internal/hotpath"
	"github.com/faultline-dev/faultline/internal/severity"
)

// Context bundles the collaborators every rule needs beyond the
// declaration it is inspecting: the layout/escape oracles, the
// hot-path classifier, and the resolved configuration.
type Context struct {
	Layout astmodel.LayoutOracle
	Escape *escape.Oracle
	Hot    *hotpath.Oracle
	Config config.Config
}

// Rule is the stable per-finding-kind unit of the rule engine.
type Rule interface {
	ID() string
	Title() string
	BaseSeverity() severity.Severity
	HardwareMechanism() string
	// Analyze inspects decl and appends zero or more diagnostics to *out.
	// Rules never return errors; an inapplicable or incomplete
	// declaration is silently skipped.
	Analyze(decl astmodel.Decl, ctx *Context, out *[]*diagnostic.Diagnostic)
}

// registry holds every self-registered rule in insertion order.
var registry []Rule

// Register adds r to the process-wide registry. Called from each
// rule's init(); never called directly by driver or test code outside
// this package, so registration order matches source-file compilation
// order deterministically.
func Register(r Rule) {
	registry = append(registry, r)
}

// All returns every registered rule, in insertion order.
func All() []Rule {
	return registry
}
