package tui

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderFundsTab(cw int) string {
	t := theme.Active
	rows := allocation.ProjectRows(a.ledger)
	summary := allocation.Summarize(a.ledger)

	totalCost := decimal.Zero
	for _, r := range rows {
		totalCost = totalCost.Add(r.Cost)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Projects", Value: cli.FormatCount(len(rows))},
		{Label: "Revenue", Value: cli.FormatRupees(summary.TotalRevenue)},
		{Label: "Costs", Value: cli.FormatRupees(totalCost), Color: t.Orange},
		{Label: "Total Profit", Value: cli.FormatRupees(summary.TotalProfit), Color: t.Signed(summary.TotalProfit.Sign())},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	if len(rows) == 0 {
		b.WriteString(components.ContentCard("Funds", emptyState("No funds yet. Press [a] to add one."), cw))
		return b.String()
	}

	var cols []components.Column
	if a.isCompactLayout() {
		cols = []components.Column{
			{Title: "Project"},
			{Title: "Revenue", Width: 14, Right: true},
			{Title: "Profit", Width: 14, Right: true},
		}
	} else {
		cols = []components.Column{
			{Title: "Project"},
			{Title: "Date", Width: 10},
			{Title: "Revenue", Width: 14, Right: true},
			{Title: "Cost", Width: 14, Right: true},
			{Title: "Profit", Width: 14, Right: true},
			{Title: "Work 45%", Width: 14, Right: true},
			{Title: "Fixed 5%", Width: 14, Right: true},
			{Title: "Reserve 40%", Width: 14, Right: true},
		}
	}

	cells := make([][]components.Cell, 0, len(rows))
	for _, r := range rows {
		profit := components.Cell{Text: cli.FormatRupees(r.Profit), Color: t.Signed(r.Profit.Sign())}
		if a.isCompactLayout() {
			cells = append(cells, []components.Cell{
				{Text: r.Project.Name},
				{Text: cli.FormatRupees(r.Project.Revenue)},
				profit,
			})
			continue
		}
		cells = append(cells, []components.Cell{
			{Text: r.Project.Name},
			{Text: r.Project.Date, Color: t.TextMuted},
			{Text: cli.FormatRupees(r.Project.Revenue)},
			{Text: cli.FormatRupees(r.Cost), Color: t.Orange},
			profit,
			{Text: cli.FormatRupees(r.Pools.Work), Color: t.Cyan},
			{Text: cli.FormatRupees(r.Pools.Fixed), Color: t.Cyan},
			{Text: cli.FormatRupees(r.Pools.Reserve), Color: t.TextMuted},
		})
	}

	b.WriteString(components.ContentCard("Funds", components.Table(cols, cells, a.cursors[tabFunds], innerW), cw))
	return b.String()
}

func emptyState(msg string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg)
}
