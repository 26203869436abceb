// Package model defines the bookkeeping records and the snapshots that carry them.
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Collection names one of the four record collections.
type Collection string

// The four persisted collections.
const (
	Funds            Collection = "funds"
	Costs            Collection = "costs"
	Expenses         Collection = "expenses"
	WorkAttributions Collection = "workAttributions"
)

// Collections lists every collection in display order.
var Collections = []Collection{Funds, Costs, Expenses, WorkAttributions}

// ParseCollection maps a wire name to a Collection.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

func (c Collection) String() string { return string(c) }

// Record is implemented by every persisted record type.
type Record interface {
	Collection() Collection
	RecordID() string
}

// Project is a tracked venture ("fund"). Other records reference it by Name.
type Project struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

func (Project) Collection() Collection { return Funds }
func (p Project) RecordID() string     { return p.ID }

// Cost is money spent on a project. Approved is the status flag; new costs are pending.
type Cost struct {
	ID          string          `json:"id"`
	ProjectName string          `json:"projectName"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Approved    bool            `json:"status"`
}

func (Cost) Collection() Collection { return Costs }
func (c Cost) RecordID() string     { return c.ID }

// StatusLabel renders the approval flag the way the cost table shows it.
func (c Cost) StatusLabel() string {
	if c.Approved {
		return "Approved"
	}
	return "Pending"
}

// WorkAttribution is a partner's claimed share of a project's work pool.
// Several rows for the same (project, founder) pair add up.
type WorkAttribution struct {
	ID          string          `json:"id"`
	ProjectName string          `json:"projectName"`
	FounderName string          `json:"founderName"`
	Percentage  decimal.Decimal `json:"percentage"`
	Date        string          `json:"date"`
}

func (WorkAttribution) Collection() Collection { return WorkAttributions }
func (w WorkAttribution) RecordID() string     { return w.ID }

// ExpenseStatus is the payout state of a partner expense.
type ExpenseStatus string

const (
	Pending   ExpenseStatus = "Pending"
	Completed ExpenseStatus = "Completed"
)

// Toggle flips Pending and Completed. Anything unrecognized counts as Pending.
func (s ExpenseStatus) Toggle() ExpenseStatus {
	if s == Completed {
		return Pending
	}
	return Completed
}

// Normalize maps an empty or unknown stored status to Pending.
func (s ExpenseStatus) Normalize() ExpenseStatus {
	if s == Completed {
		return Completed
	}
	return Pending
}

// Expense is an independent partner expense credited to that partner's total.
type Expense struct {
	ID          string          `json:"id"`
	PartnerName string          `json:"partnerName"`
	WorkName    string          `json:"workName"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Status      ExpenseStatus   `json:"status"`
}

func (Expense) Collection() Collection { return Expenses }
func (e Expense) RecordID() string     { return e.ID }
