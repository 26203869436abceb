package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aurion/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !d(want).Equal(got) {
		assert.Fail(t, "decimal mismatch", append([]any{"want " + want + ", got " + got.String() + " "}, msgAndArgs...)...)
	}
}

func TestAlphaProfitAndPools(t *testing.T) {
	alpha := model.Project{ID: "p1", Name: "Alpha", Revenue: d("10000")}
	costs := []model.Cost{{ID: "c1", ProjectName: "Alpha", Amount: d("2000")}}

	profit := ProjectProfit(alpha, costs)
	assertDecimal(t, "8000", profit)

	pools := DistributionPools(profit)
	assertDecimal(t, "3600", pools.Work)
	assertDecimal(t, "400", pools.Fixed)
	assertDecimal(t, "3200", pools.Reserve)
}

func TestTwoPartnerSplit(t *testing.T) {
	roster := model.Roster{"PartnerA", "PartnerB"}
	ledger := model.Ledger{
		Projects: []model.Project{{ID: "p1", Name: "Alpha", Revenue: d("1000")}},
		WorkAttributions: []model.WorkAttribution{
			{ID: "w1", ProjectName: "Alpha", FounderName: "PartnerA", Percentage: d("60")},
			{ID: "w2", ProjectName: "Alpha", FounderName: "PartnerB", Percentage: d("40")},
		},
	}
	alpha := ledger.Projects[0]
	profit := ProjectProfit(alpha, ledger.Costs)

	assertDecimal(t, "25", FounderFixedShare(profit, len(roster)))
	assertDecimal(t, "270", FounderWorkShare(alpha, "PartnerA", ledger.WorkAttributions, profit))
	assertDecimal(t, "180", FounderWorkShare(alpha, "PartnerB", ledger.WorkAttributions, profit))
	assertDecimal(t, "295", FounderProjectTotal(alpha, "PartnerA", ledger, roster))
	assertDecimal(t, "205", FounderProjectTotal(alpha, "PartnerB", ledger, roster))
}

func TestExpensesCountRegardlessOfStatus(t *testing.T) {
	roster := model.Roster{"PartnerA"}
	ledger := model.Ledger{
		Expenses: []model.Expense{
			{ID: "e1", PartnerName: "PartnerA", Amount: d("500"), Status: model.Pending},
			{ID: "e2", PartnerName: "PartnerA", Amount: d("300"), Status: model.Completed},
			{ID: "e3", PartnerName: "Someone", Amount: d("999"), Status: model.Pending},
		},
	}
	assertDecimal(t, "800", FounderGrandTotal("PartnerA", ledger, roster))
}

func TestOverAttributionIsSummedUncapped(t *testing.T) {
	alpha := model.Project{ID: "p1", Name: "Alpha", Revenue: d("1000")}
	attrs := []model.WorkAttribution{
		{ID: "w1", ProjectName: "Alpha", FounderName: "PartnerA", Percentage: d("80")},
		{ID: "w2", ProjectName: "Alpha", FounderName: "PartnerA", Percentage: d("70")},
	}
	profit := ProjectProfit(alpha, nil)

	assertDecimal(t, "150", FounderWorkPercent(alpha, "PartnerA", attrs))
	share := FounderWorkShare(alpha, "PartnerA", attrs, profit)
	assertDecimal(t, "675", share)
	assert.True(t, share.GreaterThan(DistributionPools(profit).Work))

	cov := AttributionCoverage(model.Ledger{Projects: []model.Project{alpha}, WorkAttributions: attrs})
	require.Len(t, cov, 1)
	assert.True(t, cov[0].Over())
	assert.False(t, cov[0].Complete())
}

func TestProjectWithoutCosts(t *testing.T) {
	beta := model.Project{ID: "p2", Name: "Beta", Revenue: d("1234.56")}
	costs := []model.Cost{{ID: "c1", ProjectName: "Alpha", Amount: d("2000")}}

	assertDecimal(t, "0", ProjectCost("Beta", costs))
	assertDecimal(t, "1234.56", ProjectProfit(beta, costs))
}

func TestFixedShareSumsToFixedPool(t *testing.T) {
	for _, profit := range []string{"0", "1", "1000", "8000", "-250.75", "33333.33"} {
		for n := 1; n <= 9; n++ {
			p := d(profit)
			sum := FounderFixedShare(p, n).Mul(decimal.NewFromInt(int64(n)))
			diff := sum.Sub(p.Mul(FixedRate)).Abs()
			assert.True(t, diff.LessThan(d("0.000001")), "profit=%s n=%d diff=%s", profit, n, diff)
		}
	}
}

func TestFixedShareEmptyRoster(t *testing.T) {
	assertDecimal(t, "0", FounderFixedShare(d("1000"), 0))
	assertDecimal(t, "0", FounderFixedShare(d("1000"), -3))
}

func TestWorkSharesSumToWorkPoolAtFullCoverage(t *testing.T) {
	alpha := model.Project{ID: "p1", Name: "Alpha", Revenue: d("9000")}
	costs := []model.Cost{{ProjectName: "Alpha", Amount: d("1700")}}
	attrs := []model.WorkAttribution{
		{ProjectName: "Alpha", FounderName: "A", Percentage: d("33.3")},
		{ProjectName: "Alpha", FounderName: "B", Percentage: d("33.3")},
		{ProjectName: "Alpha", FounderName: "C", Percentage: d("33.4")},
	}
	profit := ProjectProfit(alpha, costs)

	sum := decimal.Zero
	for _, f := range []string{"A", "B", "C"} {
		sum = sum.Add(FounderWorkShare(alpha, f, attrs, profit))
	}
	diff := sum.Sub(DistributionPools(profit).Work).Abs()
	assert.True(t, diff.LessThan(d("0.000001")), "diff=%s", diff)

	cov := AttributionCoverage(model.Ledger{Projects: []model.Project{alpha}, WorkAttributions: attrs})
	require.Len(t, cov, 1)
	assert.True(t, cov[0].Complete())
}

func TestProfitIsRevenueMinusCost(t *testing.T) {
	tests := []struct {
		revenue string
		costs   []string
		want    string
	}{
		{"0", nil, "0"},
		{"100", []string{"40", "60"}, "0"},
		{"100", []string{"150"}, "-50"},
		{"0.1", []string{"0.2"}, "-0.1"},
		{"1000000.01", []string{"0.01"}, "1000000"},
	}
	for _, tt := range tests {
		var costs []model.Cost
		for _, a := range tt.costs {
			costs = append(costs, model.Cost{ProjectName: "X", Amount: d(a)})
		}
		got := ProjectProfit(model.Project{Name: "X", Revenue: d(tt.revenue)}, costs)
		assertDecimal(t, tt.want, got, "revenue=%s costs=%v", tt.revenue, tt.costs)
	}
}

func TestRemovingMissingIDLeavesTotalsUnchanged(t *testing.T) {
	roster := model.Roster{"A", "B"}
	ledger := model.Ledger{
		Projects: []model.Project{{ID: "p1", Name: "Alpha", Revenue: d("5000")}},
		Costs:    []model.Cost{{ID: "c1", ProjectName: "Alpha", Amount: d("1000")}},
		Expenses: []model.Expense{{ID: "e1", PartnerName: "A", Amount: d("10")}},
	}
	before := GrandTotals(ledger, roster)

	filtered := ledger
	filtered.Costs = removeCost(ledger.Costs, "does-not-exist")
	after := GrandTotals(filtered, roster)

	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].Total.Equal(after[i].Total))
	}
}

func removeCost(costs []model.Cost, id string) []model.Cost {
	out := costs[:0:0]
	for _, c := range costs {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func TestOrphanedCostsContributeNothing(t *testing.T) {
	ledger := model.Ledger{
		Projects: []model.Project{{ID: "p1", Name: "Renamed", Revenue: d("100")}},
		Costs:    []model.Cost{{ID: "c1", ProjectName: "Original", Amount: d("90")}},
	}
	rows := ProjectRows(ledger)
	require.Len(t, rows, 1)
	assertDecimal(t, "0", rows[0].Cost)
	assertDecimal(t, "100", rows[0].Profit)
}

func TestLossPropagatesIntoShares(t *testing.T) {
	roster := model.Roster{"PartnerA", "PartnerB"}
	ledger := model.Ledger{
		Projects: []model.Project{{ID: "p1", Name: "Beta", Revenue: d("1000")}},
		Costs:    []model.Cost{{ID: "c1", ProjectName: "Beta", Amount: d("3000")}},
		WorkAttributions: []model.WorkAttribution{
			{ID: "w1", ProjectName: "Beta", FounderName: "PartnerA", Percentage: d("50")},
		},
		Expenses: []model.Expense{{ID: "e1", PartnerName: "PartnerA", Amount: d("300")}},
	}
	beta := ledger.Projects[0]

	profit := ProjectProfit(beta, ledger.Costs)
	assertDecimal(t, "-2000", profit)

	pools := DistributionPools(profit)
	assertDecimal(t, "-900", pools.Work)
	assertDecimal(t, "-100", pools.Fixed)
	assertDecimal(t, "-800", pools.Reserve)

	assertDecimal(t, "-450", FounderWorkShare(beta, "PartnerA", ledger.WorkAttributions, profit))
	assertDecimal(t, "-500", FounderProjectTotal(beta, "PartnerA", ledger, roster))
	assertDecimal(t, "-200", FounderGrandTotal("PartnerA", ledger, roster), "expenses still add to a loss")

	assertDecimal(t, "0", FounderWorkShare(beta, "PartnerB", ledger.WorkAttributions, profit))
	assertDecimal(t, "-50", FounderGrandTotal("PartnerB", ledger, roster))

	totals := GrandTotals(ledger, roster)
	require.Len(t, totals, 2)
	assert.True(t, totals[0].Total.IsNegative())
	assertDecimal(t, "-500", totals[0].ProjectShares)
}
