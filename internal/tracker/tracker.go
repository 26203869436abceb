// Package tracker turns raw form input into bookkeeping records.
//
// The same rules back the TUI forms, the CLI subcommands and the daemon's
// POST endpoints. A rule either returns a complete record, without an id, or a
// *ValidationError naming the offending field.
package tracker

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/aurion/internal/model"
)

// DateLayout is the format of every record date.
const DateLayout = "2006-01-02"

// Messages shown to the user when input is rejected.
const (
	MsgFundFields       = "Please fill in Project Name and Revenue."
	MsgCostFields       = "Please fill in Project and Amount."
	MsgWorkFields       = "Please fill in all fields (Project, Partner, and Percentage)."
	MsgWorkPercentage   = "Please enter a valid percentage between 1 and 100."
	MsgExpenseFields    = "Please fill in Partner, Expense Name, and Amount."
	MsgUnknownPartner   = "Please choose a partner from the roster."
	MsgNoProjects       = "Add a fund first. Costs and work attributions are booked against an existing project."
	MsgInvalidNumber    = "Please enter a valid number."
	MsgConfirmDelete    = "Are you sure you want to delete this entry?"
	MsgUnknownFormField = "Unknown field."
)

// ValidationError rejects user input before anything reaches the store.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Today formats now as a record date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

func dateOrToday(date string, now time.Time) string {
	if d := strings.TrimSpace(date); d != "" {
		return d
	}
	return Today(now)
}

// ParseAmount parses a user-entered number. Thousands separators are allowed.
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// NewProject validates a new fund entry.
func NewProject(name, date, revenue string, now time.Time) (model.Project, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return model.Project{}, invalid("name", MsgFundFields)
	case strings.TrimSpace(revenue) == "":
		return model.Project{}, invalid("revenue", MsgFundFields)
	}
	rev, err := ParseAmount(revenue)
	if err != nil {
		return model.Project{}, invalid("revenue", MsgInvalidNumber)
	}
	return model.Project{Name: name, Date: dateOrToday(date, now), Revenue: rev}, nil
}

// NewCost validates a new project cost. Costs start out pending.
func NewCost(projectName, category, date, amount string, now time.Time) (model.Cost, error) {
	projectName = strings.TrimSpace(projectName)
	switch {
	case projectName == "":
		return model.Cost{}, invalid("projectName", MsgCostFields)
	case strings.TrimSpace(amount) == "":
		return model.Cost{}, invalid("amount", MsgCostFields)
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return model.Cost{}, invalid("amount", MsgInvalidNumber)
	}
	return model.Cost{
		ProjectName: projectName,
		Category:    strings.TrimSpace(category),
		Date:        dateOrToday(date, now),
		Amount:      amt,
	}, nil
}

var hundred = decimal.NewFromInt(100)

// NewWorkAttribution validates a partner's claimed work percentage on a project.
// Each attribution is checked on its own; nothing caps the project total.
func NewWorkAttribution(projectName, founderName, percentage string, roster model.Roster, now time.Time) (model.WorkAttribution, error) {
	projectName = strings.TrimSpace(projectName)
	founderName = strings.TrimSpace(founderName)
	switch {
	case projectName == "":
		return model.WorkAttribution{}, invalid("projectName", MsgWorkFields)
	case founderName == "":
		return model.WorkAttribution{}, invalid("founderName", MsgWorkFields)
	case strings.TrimSpace(percentage) == "":
		return model.WorkAttribution{}, invalid("percentage", MsgWorkFields)
	}
	pct, err := ParseAmount(percentage)
	if err != nil || !pct.IsPositive() || pct.GreaterThan(hundred) {
		return model.WorkAttribution{}, invalid("percentage", MsgWorkPercentage)
	}
	if !roster.Contains(founderName) {
		return model.WorkAttribution{}, invalid("founderName", MsgUnknownPartner)
	}
	return model.WorkAttribution{
		ProjectName: projectName,
		FounderName: founderName,
		Percentage:  pct,
		Date:        Today(now),
	}, nil
}

// NewExpense validates a partner expense. Expenses start out pending.
func NewExpense(partnerName, workName, amount, date string, roster model.Roster, now time.Time) (model.Expense, error) {
	partnerName = strings.TrimSpace(partnerName)
	workName = strings.TrimSpace(workName)
	switch {
	case partnerName == "":
		return model.Expense{}, invalid("partnerName", MsgExpenseFields)
	case workName == "":
		return model.Expense{}, invalid("workName", MsgExpenseFields)
	case strings.TrimSpace(amount) == "":
		return model.Expense{}, invalid("amount", MsgExpenseFields)
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return model.Expense{}, invalid("amount", MsgInvalidNumber)
	}
	if !roster.Contains(partnerName) {
		return model.Expense{}, invalid("partnerName", MsgUnknownPartner)
	}
	return model.Expense{
		PartnerName: partnerName,
		WorkName:    workName,
		Amount:      amt,
		Date:        dateOrToday(date, now),
		Status:      model.Pending,
	}, nil
}

// ToggleStatus returns the status an expense moves to when toggled.
func ToggleStatus(e model.Expense) model.ExpenseStatus {
	return e.Status.Toggle()
}

// FromForm builds a record for collection c from string fields keyed by JSON
// field name. Fields a collection does not take are rejected.
func FromForm(c model.Collection, form map[string]string, roster model.Roster, now time.Time) (model.Record, error) {
	allowed, ok := formFields[c]
	if !ok {
		return nil, invalid("collection", "Unknown collection "+string(c)+".")
	}
	for k := range form {
		if !allowed[k] {
			return nil, invalid(k, MsgUnknownFormField)
		}
	}

	switch c {
	case model.Funds:
		return record[model.Project](NewProject(form["name"], form["date"], form["revenue"], now))
	case model.Costs:
		return record[model.Cost](NewCost(form["projectName"], form["category"], form["date"], form["amount"], now))
	case model.WorkAttributions:
		return record[model.WorkAttribution](NewWorkAttribution(form["projectName"], form["founderName"], form["percentage"], roster, now))
	default:
		return record[model.Expense](NewExpense(form["partnerName"], form["workName"], form["amount"], form["date"], roster, now))
	}
}

func record[T model.Record](r T, err error) (model.Record, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

var formFields = map[model.Collection]map[string]bool{
	model.Funds:            set("name", "date", "revenue"),
	model.Costs:            set("projectName", "category", "date", "amount"),
	model.WorkAttributions: set("projectName", "founderName", "percentage"),
	model.Expenses:         set("partnerName", "workName", "amount", "date"),
}
