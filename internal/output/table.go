package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/faultline-dev/faultline/internal/diagnostic"
)

// RenderTable renders diagnostics as a human-readable terminal table,
// one row per finding plus a trailing hazard-count summary line.
func RenderTable(diags []*diagnostic.Diagnostic) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Location", "Severity", "Rule", "Title", "Confidence", "Tier", "Mitigation"})

	for _, d := range diags {
		loc := fmt.Sprintf("%s:%d:%d", d.Location.File, d.Location.Line, d.Location.Column)
		w.AppendRow(table.Row{
			loc,
			d.Severity.String(),
			d.RuleID,
			d.Title,
			fmt.Sprintf("%d%%", int(d.Confidence*100)),
			d.Tier.String(),
			d.Mitigation,
		})
	}

	var b strings.Builder
	b.WriteString(w.Render())
	b.WriteString("\n")
	b.WriteString(summaryLine(len(diags)))
	b.WriteString("\n")
	return b.String()
}
