package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aurion/internal/model"
)

var (
	now    = time.Date(2024, 7, 9, 15, 4, 5, 0, time.UTC)
	roster = model.Roster{"Minoka Induwara", "Minidu Oshan"}
)

func requireValidation(t *testing.T, err error, field, msg string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
	assert.Equal(t, msg, ve.Message)
}

func TestNewProject(t *testing.T) {
	p, err := NewProject("  Alpha ", "", "10,000.50", now)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", p.Name)
	assert.Equal(t, "2024-07-09", p.Date)
	assert.Equal(t, "10000.5", p.Revenue.String())
	assert.Empty(t, p.ID)

	p, err = NewProject("Beta", "2023-01-31", "0", now)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-31", p.Date)

	_, err = NewProject("", "", "10", now)
	requireValidation(t, err, "name", MsgFundFields)

	_, err = NewProject("Alpha", "", " ", now)
	requireValidation(t, err, "revenue", MsgFundFields)

	_, err = NewProject("Alpha", "", "lots", now)
	requireValidation(t, err, "revenue", MsgInvalidNumber)
}

func TestNewCostStartsPending(t *testing.T) {
	c, err := NewCost("Alpha", "Hosting", "", "2000", now)
	require.NoError(t, err)
	assert.False(t, c.Approved)
	assert.Equal(t, "Pending", c.StatusLabel())
	assert.Equal(t, "2024-07-09", c.Date)

	_, err = NewCost("", "Hosting", "", "2000", now)
	requireValidation(t, err, "projectName", MsgCostFields)

	_, err = NewCost("Alpha", "", "", "", now)
	requireValidation(t, err, "amount", MsgCostFields)

	_, err = NewCost("Alpha", "", "", "2k", now)
	requireValidation(t, err, "amount", MsgInvalidNumber)
}

func TestNewWorkAttribution(t *testing.T) {
	tests := []struct {
		name    string
		project string
		founder string
		pct     string
		field   string
		msg     string
	}{
		{"missing project", "", "Minidu Oshan", "50", "projectName", MsgWorkFields},
		{"missing partner", "Alpha", "", "50", "founderName", MsgWorkFields},
		{"missing percentage", "Alpha", "Minidu Oshan", "", "percentage", MsgWorkFields},
		{"zero", "Alpha", "Minidu Oshan", "0", "percentage", MsgWorkPercentage},
		{"negative", "Alpha", "Minidu Oshan", "-5", "percentage", MsgWorkPercentage},
		{"over 100", "Alpha", "Minidu Oshan", "100.01", "percentage", MsgWorkPercentage},
		{"not a number", "Alpha", "Minidu Oshan", "half", "percentage", MsgWorkPercentage},
		{"not on roster", "Alpha", "Stranger", "50", "founderName", MsgUnknownPartner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWorkAttribution(tt.project, tt.founder, tt.pct, roster, now)
			requireValidation(t, err, tt.field, tt.msg)
		})
	}

	for _, pct := range []string{"0.5", "1", "100"} {
		w, err := NewWorkAttribution("Alpha", "Minidu Oshan", pct, roster, now)
		require.NoError(t, err, pct)
		assert.Equal(t, "2024-07-09", w.Date)
	}
}

func TestNewExpense(t *testing.T) {
	e, err := NewExpense("Minoka Induwara", "Domain renewal", "300", "", roster, now)
	require.NoError(t, err)
	assert.Equal(t, model.Pending, e.Status)
	assert.Equal(t, "2024-07-09", e.Date)

	_, err = NewExpense("", "Domain", "300", "", roster, now)
	requireValidation(t, err, "partnerName", MsgExpenseFields)

	_, err = NewExpense("Minoka Induwara", "", "300", "", roster, now)
	requireValidation(t, err, "workName", MsgExpenseFields)

	_, err = NewExpense("Minoka Induwara", "Domain", "", "", roster, now)
	requireValidation(t, err, "amount", MsgExpenseFields)

	_, err = NewExpense("Nobody", "Domain", "1", "", roster, now)
	requireValidation(t, err, "partnerName", MsgUnknownPartner)
}

func TestToggleStatus(t *testing.T) {
	assert.Equal(t, model.Completed, ToggleStatus(model.Expense{Status: model.Pending}))
	assert.Equal(t, model.Pending, ToggleStatus(model.Expense{Status: model.Completed}))
	assert.Equal(t, model.Completed, ToggleStatus(model.Expense{}))
}

func TestFromForm(t *testing.T) {
	rec, err := FromForm(model.Costs, map[string]string{"projectName": "Alpha", "amount": "12"}, roster, now)
	require.NoError(t, err)
	c, ok := rec.(model.Cost)
	require.True(t, ok)
	assert.Equal(t, "Alpha", c.ProjectName)

	rec, err = FromForm(model.WorkAttributions, map[string]string{"projectName": "Alpha"}, roster, now)
	assert.Nil(t, rec)
	assert.True(t, IsValidation(err))

	_, err = FromForm(model.Funds, map[string]string{"name": "A", "revenue": "1", "id": "x"}, roster, now)
	requireValidation(t, err, "id", MsgUnknownFormField)

	_, err = FromForm("ghosts", nil, roster, now)
	assert.True(t, IsValidation(err))
}
