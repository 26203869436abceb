// Package allocation computes project profit and the partner profit-sharing split.
//
// Every function is pure: it reads a ledger snapshot and the roster and never
// caches anything, so callers recompute on each render.
//
// Joins between records are by project name. A cost or attribution whose project
// no longer exists matches nothing and contributes zero.
package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/aurion/internal/model"
)

// Fixed business-rule split of project profit. The remaining 10% stays unallocated.
var (
	WorkRate    = decimal.RequireFromString("0.45")
	FixedRate   = decimal.RequireFromString("0.05")
	ReserveRate = decimal.RequireFromString("0.40")

	hundred = decimal.NewFromInt(100)
)

// Pools is the three-way distribution of a project's profit.
type Pools struct {
	Work    decimal.Decimal `json:"work"`
	Fixed   decimal.Decimal `json:"fixed"`
	Reserve decimal.Decimal `json:"reserve"`
}

// ProjectCost sums the amounts of all costs booked against projectName.
func ProjectCost(projectName string, costs []model.Cost) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		if c.ProjectName == projectName {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// ProjectProfit is revenue minus project cost. It may be negative.
func ProjectProfit(p model.Project, costs []model.Cost) decimal.Decimal {
	return p.Revenue.Sub(ProjectCost(p.Name, costs))
}

// DistributionPools splits profit into the work, fixed and reserve pools.
func DistributionPools(profit decimal.Decimal) Pools {
	return Pools{
		Work:    profit.Mul(WorkRate),
		Fixed:   profit.Mul(FixedRate),
		Reserve: profit.Mul(ReserveRate),
	}
}

// FounderWorkPercent sums every attribution of founder on project. The sum is not
// capped at 100.
func FounderWorkPercent(p model.Project, founder string, attrs []model.WorkAttribution) decimal.Decimal {
	total := decimal.Zero
	for _, a := range attrs {
		if a.ProjectName == p.Name && a.FounderName == founder {
			total = total.Add(a.Percentage)
		}
	}
	return total
}

// FounderWorkShare is founder's slice of the work pool, proportional to the
// attributed percentage.
func FounderWorkShare(p model.Project, founder string, attrs []model.WorkAttribution, profit decimal.Decimal) decimal.Decimal {
	pct := FounderWorkPercent(p, founder, attrs)
	return profit.Mul(WorkRate).Mul(pct).Div(hundred)
}

// FounderFixedShare splits the fixed pool equally across the whole roster,
// participating or not. An empty roster yields zero.
func FounderFixedShare(profit decimal.Decimal, partnerCount int) decimal.Decimal {
	if partnerCount <= 0 {
		return decimal.Zero
	}
	return profit.Mul(FixedRate).Div(decimal.NewFromInt(int64(partnerCount)))
}

// FounderProjectTotal is founder's fixed plus work share of one project.
func FounderProjectTotal(p model.Project, founder string, l model.Ledger, roster model.Roster) decimal.Decimal {
	profit := ProjectProfit(p, l.Costs)
	return FounderFixedShare(profit, len(roster)).
		Add(FounderWorkShare(p, founder, l.WorkAttributions, profit))
}

// FounderProjectShares sums FounderProjectTotal over every project.
func FounderProjectShares(founder string, l model.Ledger, roster model.Roster) decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.Projects {
		total = total.Add(FounderProjectTotal(p, founder, l, roster))
	}
	return total
}

// FounderExpenses sums partner's expenses regardless of status.
func FounderExpenses(partner string, expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.PartnerName == partner {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// FounderGrandTotal is the founder's project shares plus their expenses.
// Expenses are credited to the partner, never deducted.
func FounderGrandTotal(founder string, l model.Ledger, roster model.Roster) decimal.Decimal {
	return FounderProjectShares(founder, l, roster).Add(FounderExpenses(founder, l.Expenses))
}
