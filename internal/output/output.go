// Package output renders a diagnostic stream in one of three formats —
// a CLI table, JSON, or SARIF. Formatters are external collaborators relative to
// the analyzer core: they consume a *diagnostic.Diagnostic slice and an
// optional execution-metadata record, never the core's internal state.
package output

import (
	"fmt"
	"strings"

	"github.com/faultline-dev/faultline/internal/diagnostic"
	"github.com/faultline-dev/faultline/internal/orchestrate"
)

// Format selects which formatter Render dispatches to.
type Format int

const (
	Table Format = iota
	JSON
	SARIF
)

// ParseFormat maps a CLI flag value to a Format, defaulting to Table
// for anything unrecognized — the CLI boundary owns deprecated-alias
// handling (--json), not this package.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return JSON
	case "sarif":
		return SARIF
	default:
		return Table
	}
}

// Render formats diagnostics (already filtered and sorted by the
// caller) with the execution metadata attached, per the selected
// Format.
func Render(f Format, diags []*diagnostic.Diagnostic, meta orchestrate.ExecutionMetadata) (string, error) {
	switch f {
	case JSON:
		return RenderJSON(diags, meta)
	case SARIF:
		return RenderSARIF(diags, meta)
	default:
		return RenderTable(diags), nil
	}
}

func summaryLine(n int) string {
	if n == 0 {
		return "faultline: no hazards detected."
	}
	return fmt.Sprintf("faultline: %d hazard(s) detected.", n)
}
