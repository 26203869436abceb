package tui

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderCostTab(cw int) string {
	t := theme.Active
	costs := a.ledger.Costs

	total, pending := decimal.Zero, 0
	for _, c := range costs {
		total = total.Add(c.Amount)
		if !c.Approved {
			pending++
		}
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Entries", Value: cli.FormatCount(len(costs))},
		{Label: "Total Cost", Value: cli.FormatRupees(total), Color: t.Orange},
		{Label: "Pending", Value: cli.FormatCount(pending), Color: t.Yellow},
	}, cw))
	b.WriteString("\n")

	if len(costs) == 0 {
		b.WriteString(components.ContentCard("Costs", emptyState("No costs yet. Press [a] to add one."), cw))
		return b.String()
	}

	var cols []components.Column
	if a.isCompactLayout() {
		cols = []components.Column{
			{Title: "Project"},
			{Title: "Amount", Width: 14, Right: true},
			{Title: "Status", Width: 9},
		}
	} else {
		cols = []components.Column{
			{Title: "Project"},
			{Title: "Category"},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 14, Right: true},
			{Title: "Status", Width: 9},
		}
	}

	cells := make([][]components.Cell, 0, len(costs))
	for _, c := range costs {
		status := components.Cell{Text: c.StatusLabel(), Color: costStatusColor(c)}
		amount := components.Cell{Text: cli.FormatRupees(c.Amount), Color: t.Orange}
		if a.isCompactLayout() {
			cells = append(cells, []components.Cell{{Text: c.ProjectName}, amount, status})
			continue
		}
		cells = append(cells, []components.Cell{
			{Text: c.ProjectName},
			{Text: c.Category, Color: t.TextMuted},
			{Text: c.Date, Color: t.TextMuted},
			amount,
			status,
		})
	}

	title := "Costs  " + cli.FormatRupees(total)
	b.WriteString(components.ContentCard(title, components.Table(cols, cells, a.cursors[tabCost], components.CardInnerWidth(cw)), cw))
	return b.String()
}

func costStatusColor(c model.Cost) lipgloss.Color {
	if c.Approved {
		return theme.Active.Green
	}
	return theme.Active.Yellow
}
