package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/diagnostic"
)

// Run drives the AST over two passes: a first pass that warms the
// hot-path oracle's memo set for every function in tu, then a second
// pass that feeds every non-system-header declaration through every
// registered, non-disabled rule.
func Run(tu astmodel.TranslationUnit, ctx *Context) []*diagnostic.Diagnostic {
	for _, d := range tu.Decls {
		if isSystemHeader(d) {
			continue
		}
		if fn, ok := d.AsFunction(); ok {
			ctx.Hot.MarkHot(fn)
		}
	}

	var out []*diagnostic.Diagnostic
	for _, d := range tu.Decls {
		if isSystemHeader(d) {
			continue
		}
		for _, r := range All() {
			if ctx.Config.IsRuleDisabled(r.ID()) {
				continue
			}
			r.Analyze(d, ctx, &out)
		}
	}
	diagnostic.SortDiagnostics(out)
	return out
}

func isSystemHeader(d astmodel.Decl) bool {
	return d.Location().IsInSystemHeader
}
