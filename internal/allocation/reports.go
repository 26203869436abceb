package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/aurion/internal/model"
)

// ProjectRow is one line of the funds table.
type ProjectRow struct {
	Project model.Project   `json:"project"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Pools   Pools           `json:"pools"`
}

// ProjectRows computes cost, profit and pools for every project in ledger order.
func ProjectRows(l model.Ledger) []ProjectRow {
	rows := make([]ProjectRow, 0, len(l.Projects))
	for _, p := range l.Projects {
		cost := ProjectCost(p.Name, l.Costs)
		profit := p.Revenue.Sub(cost)
		rows = append(rows, ProjectRow{
			Project: p,
			Cost:    cost,
			Profit:  profit,
			Pools:   DistributionPools(profit),
		})
	}
	return rows
}

// FounderShare is one partner's line on a project card.
type FounderShare struct {
	Name     string          `json:"name"`
	Percent  decimal.Decimal `json:"percent"`
	Fixed    decimal.Decimal `json:"fixed"`
	Work     decimal.Decimal `json:"work"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ProjectBreakdown is the per-partner split of one project.
type ProjectBreakdown struct {
	Project   model.Project   `json:"project"`
	Profit    decimal.Decimal `json:"profit"`
	FixedPool decimal.Decimal `json:"fixedPool"`
	WorkPool  decimal.Decimal `json:"workPool"`
	Shares    []FounderShare  `json:"shares"`
}

// Breakdown builds a card per project with one share line per roster partner.
func Breakdown(l model.Ledger, roster model.Roster) []ProjectBreakdown {
	out := make([]ProjectBreakdown, 0, len(l.Projects))
	for _, p := range l.Projects {
		profit := ProjectProfit(p, l.Costs)
		pools := DistributionPools(profit)
		fixed := FounderFixedShare(profit, len(roster))

		shares := make([]FounderShare, 0, len(roster))
		for _, name := range roster {
			work := FounderWorkShare(p, name, l.WorkAttributions, profit)
			shares = append(shares, FounderShare{
				Name:     name,
				Percent:  FounderWorkPercent(p, name, l.WorkAttributions),
				Fixed:    fixed,
				Work:     work,
				Subtotal: fixed.Add(work),
			})
		}

		out = append(out, ProjectBreakdown{
			Project:   p,
			Profit:    profit,
			FixedPool: pools.Fixed,
			WorkPool:  pools.Work,
			Shares:    shares,
		})
	}
	return out
}

// GrandTotal is one partner's line in the grand total summary.
type GrandTotal struct {
	Name          string          `json:"name"`
	ProjectShares decimal.Decimal `json:"totalProjectShare"`
	Expenses      decimal.Decimal `json:"totalExpenses"`
	Total         decimal.Decimal `json:"grandTotal"`
}

// GrandTotals computes the summary line for every roster partner, in roster order.
func GrandTotals(l model.Ledger, roster model.Roster) []GrandTotal {
	out := make([]GrandTotal, 0, len(roster))
	for _, name := range roster {
		shares := FounderProjectShares(name, l, roster)
		expenses := FounderExpenses(name, l.Expenses)
		out = append(out, GrandTotal{
			Name:          name,
			ProjectShares: shares,
			Expenses:      expenses,
			Total:         shares.Add(expenses),
		})
	}
	return out
}

// Summary holds the header figures.
type Summary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

// Summarize totals revenue and profit across all projects.
func Summarize(l model.Ledger) Summary {
	s := Summary{TotalRevenue: decimal.Zero, TotalProfit: decimal.Zero}
	for _, p := range l.Projects {
		s.TotalRevenue = s.TotalRevenue.Add(p.Revenue)
		s.TotalProfit = s.TotalProfit.Add(ProjectProfit(p, l.Costs))
	}
	return s
}

// Coverage is the total work percentage attributed on one project across all partners.
type Coverage struct {
	ProjectName string          `json:"projectName"`
	Percent     decimal.Decimal `json:"percent"`
}

// Complete reports whether the attributions add up to exactly 100%.
func (c Coverage) Complete() bool { return c.Percent.Equal(hundred) }

// Over reports whether more than 100% has been attributed.
func (c Coverage) Over() bool { return c.Percent.GreaterThan(hundred) }

// AttributionCoverage reports the attributed percentage per project. Nothing
// enforces the total, so values above or below 100 are normal input.
func AttributionCoverage(l model.Ledger) []Coverage {
	out := make([]Coverage, 0, len(l.Projects))
	for _, p := range l.Projects {
		total := decimal.Zero
		for _, a := range l.WorkAttributions {
			if a.ProjectName == p.Name {
				total = total.Add(a.Percentage)
			}
		}
		out = append(out, Coverage{ProjectName: p.Name, Percent: total})
	}
	return out
}
