package tui

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"
)

func (a App) renderWorkTab(cw int) string {
	t := theme.Active
	attrs := a.ledger.WorkAttributions
	innerW := components.CardInnerWidth(cw)

	var tableBody string
	if len(attrs) == 0 {
		tableBody = emptyState("No work attributed yet. Press [a] to add some.")
	} else {
		cols := []components.Column{
			{Title: "Project"},
			{Title: "Partner", Width: 16},
			{Title: "Percentage", Width: 10, Right: true},
		}
		if !a.isCompactLayout() {
			cols = append(cols, components.Column{Title: "Date", Width: 10})
		}

		cells := make([][]components.Cell, 0, len(attrs))
		for _, w := range attrs {
			row := []components.Cell{
				{Text: w.ProjectName},
				{Text: w.FounderName, Color: t.BlueBright},
				{Text: cli.FormatPercent(w.Percentage), Color: t.Cyan},
			}
			if !a.isCompactLayout() {
				row = append(row, components.Cell{Text: w.Date, Color: t.TextMuted})
			}
			cells = append(cells, row)
		}
		tableBody = components.Table(cols, cells, a.cursors[tabWork], innerW)
	}
	table := components.ContentCard("Work Attributions", tableBody, cw)

	coverage := a.renderCoverageCard(cw)
	if coverage == "" {
		return table
	}
	return table + "\n" + coverage
}

// renderCoverageCard shows how much of each project's work pool has been
// attributed. Totals other than 100% are flagged but never rejected.
func (a App) renderCoverageCard(cw int) string {
	rows := allocation.AttributionCoverage(a.ledger)
	if len(rows) == 0 {
		return ""
	}

	innerW := components.CardInnerWidth(cw)
	labelW := min(max(innerW/4, 10), 28)
	barW := max(innerW-labelW-9, 10)

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, components.CoverageBar(r.ProjectName, r.Percent.InexactFloat64(), labelW, barW))
	}
	return components.ContentCard("Attribution Coverage", strings.Join(lines, "\n"), cw)
}
