package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aurion/internal/model"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aurion.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func receive(t *testing.T, ch <-chan model.Snapshot) model.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed")
		return snap
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return model.Snapshot{}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateKeepsCreationOrder(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		id, err := s.Create(ctx, model.Project{ID: "ignored", Name: name, Date: "2024-01-01", Revenue: dec("10")})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.NotEqual(t, "ignored", id)
		ids = append(ids, id)
	}

	snap, err := s.List(ctx, model.Funds)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 3)
	assert.Equal(t, int64(3), snap.Version)
	for i, p := range snap.Projects {
		assert.Equal(t, ids[i], p.ID)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, model.Ledger{Projects: snap.Projects}.ProjectNames())
}

func TestCreateRoundTripsEveryCollection(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.Create(ctx, model.Project{Name: "Alpha", Date: "2024-03-01", Revenue: dec("10000.25")})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.Cost{ProjectName: "Alpha", Category: "Hosting", Date: "2024-03-02", Amount: dec("2000")})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.WorkAttribution{ProjectName: "Alpha", FounderName: "A", Percentage: dec("62.5"), Date: "2024-03-03"})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.Expense{PartnerName: "A", WorkName: "Laptop", Amount: dec("300"), Date: "2024-03-04"})
	require.NoError(t, err)

	l, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, l.Projects, 1)
	require.Len(t, l.Costs, 1)
	require.Len(t, l.WorkAttributions, 1)
	require.Len(t, l.Expenses, 1)

	assert.True(t, l.Projects[0].Revenue.Equal(dec("10000.25")))
	assert.Equal(t, "Hosting", l.Costs[0].Category)
	assert.False(t, l.Costs[0].Approved)
	assert.True(t, l.WorkAttributions[0].Percentage.Equal(dec("62.5")))
	assert.Equal(t, model.Pending, l.Expenses[0].Status, "empty status is stored as Pending")
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s, _ := openTemp(t)
	err := s.Delete(context.Background(), model.Costs, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "delete", serr.Op)
	assert.Equal(t, model.Costs, serr.Collection)
	assert.Equal(t, "nope", serr.ID)
}

func TestDeleteRemovesRecord(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, err := s.Create(ctx, model.Expense{PartnerName: "A", WorkName: "Taxi", Amount: dec("12")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, model.Expenses, id))

	snap, err := s.List(ctx, model.Expenses)
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
	assert.ErrorIs(t, s.Delete(ctx, model.Expenses, id), ErrNotFound)
}

func TestUpdateMergesKnownFields(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, err := s.Create(ctx, model.Cost{ProjectName: "Alpha", Category: "Ads", Amount: dec("100")})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, model.Costs, id, map[string]any{"status": true, "amount": "250.50"}))

	rec, err := s.Get(ctx, model.Costs, id)
	require.NoError(t, err)
	c := rec.(model.Cost)
	assert.True(t, c.Approved)
	assert.True(t, c.Amount.Equal(dec("250.5")))
	assert.Equal(t, "Ads", c.Category, "untouched fields are kept")
}

func TestUpdateRejectsUnknownFieldAndBadValue(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, err := s.Create(ctx, model.Expense{PartnerName: "A", WorkName: "Taxi", Amount: dec("12")})
	require.NoError(t, err)

	err = s.Update(ctx, model.Expenses, id, map[string]any{"colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownField)

	err = s.Update(ctx, model.Expenses, id, map[string]any{"status": "Lost"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = s.Update(ctx, model.Expenses, id, map[string]any{"amount": true})
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = s.Update(ctx, model.Expenses, "missing", map[string]any{"status": "Completed"})
	assert.ErrorIs(t, err, ErrNotFound)

	snap, err := s.List(ctx, model.Expenses)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, model.Pending, snap.Expenses[0].Status)
	assert.Equal(t, int64(1), snap.Version, "rejected updates do not bump the version")
}

func TestUnknownCollection(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.List(ctx, model.Collection("ghosts"))
	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.ErrorIs(t, s.Delete(ctx, "ghosts", "x"), ErrUnknownCollection)

	ch, _ := s.Subscribe("ghosts")
	_, ok := <-ch
	assert.False(t, ok)
}

func TestMalformedStoredAmountReadsAsZero(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.db.Exec(`INSERT INTO costs (id, project_name, amount) VALUES ('x', 'Alpha', 'abc')`)
	require.NoError(t, err)

	snap, err := s.List(context.Background(), model.Costs)
	require.NoError(t, err)
	require.Len(t, snap.Costs, 1)
	assert.True(t, snap.Costs[0].Amount.IsZero())
}

func TestSubscribeDeliversInitialThenChanges(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	ch, unsubscribe := s.Subscribe(model.Funds)
	defer unsubscribe()

	initial := receive(t, ch)
	assert.Equal(t, model.Funds, initial.Collection)
	assert.Zero(t, initial.Len())

	_, err := s.Create(ctx, model.Project{Name: "Alpha", Revenue: dec("1")})
	require.NoError(t, err)

	next := receive(t, ch)
	assert.Equal(t, 1, next.Len())
	assert.Greater(t, next.Version, initial.Version)
}

func TestSubscribeKeepsOnlyLatest(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	ch, unsubscribe := s.Subscribe(model.Costs)
	defer unsubscribe()

	for range 3 {
		_, err := s.Create(ctx, model.Cost{ProjectName: "Alpha", Amount: dec("1")})
		require.NoError(t, err)
	}

	snap := receive(t, ch)
	assert.Equal(t, 3, snap.Len())
	select {
	case extra := <-ch:
		t.Fatalf("unexpected buffered snapshot with %d records", extra.Len())
	default:
	}
}

func TestSubscriptionsAreIndependentPerCollection(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	costs, unsubCosts := s.Subscribe(model.Costs)
	defer unsubCosts()
	receive(t, costs)

	_, err := s.Create(ctx, model.Project{Name: "Alpha"})
	require.NoError(t, err)

	select {
	case <-costs:
		t.Fatal("costs subscriber notified of a funds change")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s, _ := openTemp(t)

	ch, unsubscribe := s.Subscribe(model.Expenses)
	receive(t, ch)
	assert.Equal(t, 1, s.SubscriberCount())

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, s.SubscriberCount())

	_, err := s.Create(context.Background(), model.Expense{PartnerName: "A", WorkName: "x", Amount: dec("1")})
	require.NoError(t, err)
}

func TestWatchPublishesChangesFromAnotherProcess(t *testing.T) {
	a, path := openTemp(t)
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ch, unsubscribe := a.Subscribe(model.WorkAttributions)
	defer unsubscribe()
	receive(t, ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, 20*time.Millisecond) }()

	_, err = b.Create(context.Background(),
		model.WorkAttribution{ProjectName: "Alpha", FounderName: "A", Percentage: dec("40")})
	require.NoError(t, err)

	snap := receive(t, ch)
	assert.Equal(t, 1, snap.Len())

	cancel()
	assert.NoError(t, <-done)
}
