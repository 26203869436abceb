package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/store"
	"github.com/theirongolddev/aurion/internal/tracker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "aurion.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := New(st, Config{Roster: model.Roster{"Alice", "Bob"}})
	s.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Service, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func create(t *testing.T, s *Service, col model.Collection, body map[string]any) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/v1/"+col.String(), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestHealthz(t *testing.T) {
	s := newTestService(t)
	w := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestCreateAndList(t *testing.T) {
	s := newTestService(t)
	create(t, s, model.Funds, map[string]any{"name": "Alpha", "revenue": "10,000"})
	create(t, s, model.Funds, map[string]any{"name": "Beta", "revenue": 2500.5, "date": "2026-01-01"})

	w := do(t, s, http.MethodGet, "/v1/funds", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var funds []model.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &funds))
	require.Len(t, funds, 2)
	assert.Equal(t, "Alpha", funds[0].Name)
	assert.Equal(t, "2026-03-14", funds[0].Date)
	assert.True(t, funds[0].Revenue.Equal(d("10000")))
	assert.True(t, funds[1].Revenue.Equal(d("2500.5")))
}

func TestEmptyListIsArray(t *testing.T) {
	s := newTestService(t)
	w := do(t, s, http.MethodGet, "/v1/expenses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateValidationError(t *testing.T) {
	s := newTestService(t)

	w := do(t, s, http.MethodPost, "/v1/workAttributions", map[string]any{
		"projectName": "Alpha",
		"founderName": "Alice",
		"percentage":  "0",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var verr tracker.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Equal(t, "percentage", verr.Field)
	assert.Equal(t, tracker.MsgWorkPercentage, verr.Message)

	w = do(t, s, http.MethodPost, "/v1/costs", map[string]any{"projectName": "Alpha", "amount": "5", "bogus": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/costs", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was written.
	w = do(t, s, http.MethodGet, "/v1/workAttributions", nil)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	id := create(t, s, model.Costs, map[string]any{"projectName": "Alpha", "amount": "100"})

	w := do(t, s, http.MethodDelete, "/v1/costs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodDelete, "/v1/costs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/v1/costs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordsCannotBeEdited(t *testing.T) {
	s := newTestService(t)
	create(t, s, model.Funds, map[string]any{"name": "Alpha", "revenue": "10000"})
	costID := create(t, s, model.Costs, map[string]any{"projectName": "Alpha", "category": "Ads", "amount": "100"})
	workID := create(t, s, model.WorkAttributions, map[string]any{"projectName": "Alpha", "founderName": "Alice", "percentage": "50"})
	expenseID := create(t, s, model.Expenses, map[string]any{"partnerName": "Bob", "workName": "Laptop", "amount": "500"})

	edits := []struct {
		path string
		body map[string]any
	}{
		{"/v1/costs/" + costID, map[string]any{"amount": 250}},
		{"/v1/workAttributions/" + workID, map[string]any{"percentage": 500}},
		{"/v1/workAttributions/" + workID, map[string]any{"percentage": -20, "founderName": "Mallory"}},
		{"/v1/expenses/" + expenseID, map[string]any{"status": "Completed"}},
	}
	for _, e := range edits {
		w := do(t, s, http.MethodPatch, e.path, e.body)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "PATCH %s", e.path)
	}

	w := do(t, s, http.MethodGet, "/v1/workAttributions/"+workID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attr model.WorkAttribution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attr))
	assert.Equal(t, "Alice", attr.FounderName)
	assert.True(t, attr.Percentage.Equal(d("50")))

	w = do(t, s, http.MethodGet, "/v1/costs/"+costID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cost model.Cost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cost))
	assert.True(t, cost.Amount.Equal(d("100")))
}

func TestToggleExpense(t *testing.T) {
	s := newTestService(t)
	id := create(t, s, model.Expenses, map[string]any{"partnerName": "Bob", "workName": "Laptop", "amount": "500"})

	for _, want := range []model.ExpenseStatus{model.Completed, model.Pending} {
		w := do(t, s, http.MethodPatch, "/v1/expenses/"+id+"/toggle", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Status model.ExpenseStatus `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.Status)
	}

	w := do(t, s, http.MethodPatch, "/v1/expenses/missing/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func seedAlpha(t *testing.T, s *Service) {
	t.Helper()
	create(t, s, model.Funds, map[string]any{"name": "Alpha", "revenue": "10000"})
	create(t, s, model.Costs, map[string]any{"projectName": "Alpha", "amount": "2000"})
	create(t, s, model.WorkAttributions, map[string]any{"projectName": "Alpha", "founderName": "Alice", "percentage": "60"})
	create(t, s, model.Expenses, map[string]any{"partnerName": "Bob", "workName": "Laptop", "amount": "500"})
}

func TestFoundersReport(t *testing.T) {
	s := newTestService(t)
	seedAlpha(t, s)

	w := do(t, s, http.MethodGet, "/v1/report/founders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report FoundersReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.GrandTotals, 2)

	alice, bob := report.GrandTotals[0], report.GrandTotals[1]
	assert.Equal(t, "Alice", alice.Name)
	// Fixed: 8000 * 0.05 / 2 = 200. Work: 8000 * 0.45 * 0.6 = 2160.
	assert.True(t, alice.Total.Equal(d("2360")), "alice total %s", alice.Total)
	// Bob: fixed share plus his expense.
	assert.True(t, bob.Total.Equal(d("700")), "bob total %s", bob.Total)

	require.Len(t, report.Projects, 1)
	assert.True(t, report.Projects[0].Profit.Equal(d("8000")))
	assert.True(t, report.Projects[0].Shares[1].Percent.IsZero())
}

func TestSummaryAndFundsReport(t *testing.T) {
	s := newTestService(t)
	seedAlpha(t, s)

	w := do(t, s, http.MethodGet, "/v1/report/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary SummaryReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.True(t, summary.TotalRevenue.Equal(d("10000")))
	assert.True(t, summary.TotalProfit.Equal(d("8000")))
	require.Len(t, summary.Coverage, 1)
	assert.True(t, summary.Coverage[0].Percent.Equal(d("60")))

	w = do(t, s, http.MethodGet, "/v1/report/funds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reserve":"3200"`)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestService(t)
	w := do(t, s, http.MethodGet, "/v1/payroll", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics(t *testing.T) {
	s := newTestService(t)
	do(t, s, http.MethodGet, "/v1/funds", nil)

	w := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `aurion_requests_total{code="200",method="GET",url="/v1/funds"} 1`)
	assert.Contains(t, body, "aurion_store_subscribers 0")
}

func TestStatus(t *testing.T) {
	s := newTestService(t)
	w := do(t, s, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 2, st.Partners)
	assert.Equal(t, int64(1000), st.PollIntervalMS)
}

func TestStreamSendsSnapshots(t *testing.T) {
	s := newTestService(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan Event, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var ev Event
				if json.Unmarshal([]byte(data), &ev) == nil {
					events <- ev
				}
			}
		}
	}()

	next := func() Event {
		t.Helper()
		select {
		case ev := <-events:
			return ev
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for stream event")
		}
		return Event{}
	}

	seen := map[model.Collection]bool{}
	for range model.Collections {
		ev := next()
		assert.Equal(t, "snapshot", ev.Type)
		seen[ev.Collection] = true
	}
	assert.Len(t, seen, len(model.Collections))
	assert.Equal(t, len(model.Collections), s.store.SubscriberCount())

	create(t, s, model.Funds, map[string]any{"name": "Alpha", "revenue": "100"})

	ev := next()
	assert.Equal(t, model.Funds, ev.Collection)
	records, ok := ev.Records.([]any)
	require.True(t, ok, "records %T", ev.Records)
	assert.Len(t, records, 1)
}
