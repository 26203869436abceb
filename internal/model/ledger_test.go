package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerApplyReplacesOnlyOneCollection(t *testing.T) {
	l := Ledger{
		Projects: []Project{{ID: "p1", Name: "Alpha"}},
		Costs:    []Cost{{ID: "c1", ProjectName: "Alpha"}},
	}

	next := l.Apply(Snapshot{Collection: Costs, Costs: []Cost{{ID: "c2"}, {ID: "c3"}}})

	assert.Len(t, next.Costs, 2)
	assert.Equal(t, "c2", next.Costs[0].ID)
	assert.Equal(t, l.Projects, next.Projects)
	assert.Len(t, l.Costs, 1, "original ledger must not change")

	emptied := next.Apply(Snapshot{Collection: Funds})
	assert.Empty(t, emptied.Projects)
	assert.Len(t, emptied.Costs, 2)
}

func TestExpenseStatusToggle(t *testing.T) {
	assert.Equal(t, Completed, Pending.Toggle())
	assert.Equal(t, Pending, Completed.Toggle())
	assert.Equal(t, Completed, ExpenseStatus("").Toggle())
	assert.Equal(t, Pending, ExpenseStatus("weird").Normalize())
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("workAttributions")
	require.NoError(t, err)
	assert.Equal(t, WorkAttributions, c)

	_, err = ParseCollection("partners")
	assert.Error(t, err)
}

func TestRecordJSONUsesWireNames(t *testing.T) {
	b, err := json.Marshal(Cost{ID: "x", ProjectName: "Alpha", Amount: decimal.RequireFromString("2000.5"), Approved: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","projectName":"Alpha","category":"","date":"","amount":2000.5,"status":true}`, string(b))
}

func TestSnapshotRecordsNeverNull(t *testing.T) {
	b, err := json.Marshal(Snapshot{Collection: Expenses}.Records())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
