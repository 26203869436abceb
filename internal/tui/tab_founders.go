package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"
)

// renderFoundersTab shows the grand total summary followed by one card per
// project. The tab has no selection; the cursor scrolls by line.
func (a App) renderFoundersTab(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	totals := allocation.GrandTotals(a.ledger, a.roster)
	cols := []components.Column{
		{Title: "Partner"},
		{Title: "Project Shares", Width: 16, Right: true},
		{Title: "Expenses", Width: 14, Right: true},
		{Title: "Grand Total", Width: 16, Right: true},
	}
	cells := make([][]components.Cell, 0, len(totals))
	bars := make([]components.Bar, 0, len(totals))
	for _, g := range totals {
		cells = append(cells, []components.Cell{
			{Text: g.Name, Color: t.BlueBright},
			{Text: cli.FormatRupees(g.ProjectShares)},
			{Text: cli.FormatRupees(g.Expenses), Color: t.TextMuted},
			{Text: cli.FormatRupees(g.Total), Color: t.Signed(g.Total.Sign())},
		})
		bars = append(bars, components.Bar{
			Label: g.Name,
			Value: g.Total.InexactFloat64(),
			Text:  cli.FormatRupees(g.Total),
		})
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Grand Total", components.Table(cols, cells, -1, innerW), cw))
	b.WriteString("\n")

	if !a.isCompactLayout() && len(bars) > 0 {
		b.WriteString(components.ContentCard("Grand Total by Partner", components.HorizontalBars(bars, 14, innerW), cw))
		b.WriteString("\n")
	}

	breakdowns := allocation.Breakdown(a.ledger, a.roster)
	if len(breakdowns) == 0 {
		b.WriteString(components.ContentCard("Projects", emptyState("No funds yet."), cw))
	}

	perRow := 2
	if a.isCompactLayout() {
		perRow = 1
	}
	for i := 0; i < len(breakdowns); i += perRow {
		group := breakdowns[i:min(i+perRow, len(breakdowns))]
		widths := components.LayoutRow(cw, perRow)
		cards := make([]string, 0, len(group))
		for j, pb := range group {
			cards = append(cards, a.renderProjectCard(pb, widths[j]))
		}
		b.WriteString(components.CardRow(cards))
		b.WriteString("\n")
	}

	return scrollLines(b.String(), a.cursors[tabFounders], h)
}

func (a App) renderProjectCard(pb allocation.ProjectBreakdown, w int) string {
	t := theme.Active
	cols := []components.Column{
		{Title: "Partner"},
		{Title: "Contribution", Width: 12, Right: true},
		{Title: "Fixed (5%)", Width: 12, Right: true},
		{Title: "Work (45%)", Width: 12, Right: true},
		{Title: "Subtotal", Width: 12, Right: true},
	}
	if w < 80 {
		cols = []components.Column{
			{Title: "Partner"},
			{Title: "Contrib.", Width: 8, Right: true},
			{Title: "Subtotal", Width: 12, Right: true},
		}
	}

	cells := make([][]components.Cell, 0, len(pb.Shares))
	for _, s := range pb.Shares {
		contrib := components.Cell{Text: cli.FormatContribution(s.Percent), Color: t.Cyan}
		if s.Percent.IsZero() {
			contrib.Color = t.TextDim
		}
		subtotal := components.Cell{Text: cli.FormatRupees(s.Subtotal), Color: t.Signed(s.Subtotal.Sign())}
		if len(cols) == 3 {
			cells = append(cells, []components.Cell{{Text: s.Name}, contrib, subtotal})
			continue
		}
		cells = append(cells, []components.Cell{
			{Text: s.Name},
			contrib,
			{Text: cli.FormatRupees(s.Fixed), Color: t.TextMuted},
			{Text: cli.FormatRupees(s.Work)},
			subtotal,
		})
	}

	title := fmt.Sprintf("%s  profit %s", pb.Project.Name, cli.FormatRupees(pb.Profit))
	return components.ContentCard(title, components.Table(cols, cells, -1, components.CardInnerWidth(w)), w)
}

// scrollLines drops the first offset lines, keeping at least h lines visible
// when the content is long enough.
func scrollLines(s string, offset, h int) string {
	lines := strings.Split(s, "\n")
	offset = min(offset, max(len(lines)-h, 0))
	return strings.Join(lines[offset:], "\n")
}
