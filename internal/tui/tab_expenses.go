package tui

import (
	"strings"

	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/tui/components"
	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/shopspring/decimal"
)

func (a App) renderExpensesTab(cw int) string {
	t := theme.Active
	expenses := a.ledger.Expenses

	pending, completed := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		if e.Status.Normalize() == model.Completed {
			completed = completed.Add(e.Amount)
		} else {
			pending = pending.Add(e.Amount)
		}
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Entries", Value: cli.FormatCount(len(expenses))},
		{Label: "Pending", Value: cli.FormatRupees(pending), Color: t.Yellow},
		{Label: "Completed", Value: cli.FormatRupees(completed), Color: t.Green},
	}, cw))
	b.WriteString("\n")

	if len(expenses) == 0 {
		b.WriteString(components.ContentCard("Expenses", emptyState("No expenses yet. Press [a] to add one."), cw))
		return b.String()
	}

	if total := pending.Add(completed); total.IsPositive() {
		paid := completed.Div(total).InexactFloat64()
		barW := max(components.CardInnerWidth(cw)-6, 10)
		b.WriteString(components.ContentCard("Paid Out", components.ProgressBar(paid, barW), cw))
		b.WriteString("\n")
	}

	var cols []components.Column
	if a.isCompactLayout() {
		cols = []components.Column{
			{Title: "Partner", Width: 14},
			{Title: "Expense"},
			{Title: "Amount", Width: 14, Right: true},
			{Title: "Status", Width: 9},
		}
	} else {
		cols = []components.Column{
			{Title: "Partner", Width: 16},
			{Title: "Expense"},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 14, Right: true},
			{Title: "Status", Width: 9},
		}
	}

	cells := make([][]components.Cell, 0, len(expenses))
	for _, e := range expenses {
		status := e.Status.Normalize()
		statusColor := t.Yellow
		if status == model.Completed {
			statusColor = t.Green
		}

		row := []components.Cell{
			{Text: e.PartnerName, Color: t.BlueBright},
			{Text: e.WorkName},
		}
		if !a.isCompactLayout() {
			row = append(row, components.Cell{Text: e.Date, Color: t.TextMuted})
		}
		row = append(row,
			components.Cell{Text: cli.FormatRupees(e.Amount)},
			components.Cell{Text: string(status), Color: statusColor},
		)
		cells = append(cells, row)
	}

	b.WriteString(components.ContentCard("Expenses", components.Table(cols, cells, a.cursors[tabExpenses], components.CardInnerWidth(cw)), cw))
	return b.String()
}
