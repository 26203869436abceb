package model

import "slices"

// Snapshot is the full ordered contents of one collection at one instant.
// Only the slice matching Collection is populated. Version increases with
// every change to the collection.
type Snapshot struct {
	Collection       Collection        `json:"collection"`
	Version          int64             `json:"version"`
	Projects         []Project         `json:"funds,omitempty"`
	Costs            []Cost            `json:"costs,omitempty"`
	Expenses         []Expense         `json:"expenses,omitempty"`
	WorkAttributions []WorkAttribution `json:"workAttributions,omitempty"`
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int {
	switch s.Collection {
	case Funds:
		return len(s.Projects)
	case Costs:
		return len(s.Costs)
	case Expenses:
		return len(s.Expenses)
	case WorkAttributions:
		return len(s.WorkAttributions)
	}
	return 0
}

// Records returns the populated slice as a value suitable for JSON encoding.
// Empty collections encode as [] rather than null.
func (s Snapshot) Records() any {
	switch s.Collection {
	case Funds:
		return nonNil(s.Projects)
	case Costs:
		return nonNil(s.Costs)
	case Expenses:
		return nonNil(s.Expenses)
	case WorkAttributions:
		return nonNil(s.WorkAttributions)
	}
	return []any{}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Ledger holds the latest snapshot of every collection.
type Ledger struct {
	Projects         []Project
	Costs            []Cost
	Expenses         []Expense
	WorkAttributions []WorkAttribution
}

// Apply returns a copy of l with the snapshot's collection replaced wholesale.
func (l Ledger) Apply(s Snapshot) Ledger {
	switch s.Collection {
	case Funds:
		l.Projects = slices.Clone(s.Projects)
	case Costs:
		l.Costs = slices.Clone(s.Costs)
	case Expenses:
		l.Expenses = slices.Clone(s.Expenses)
	case WorkAttributions:
		l.WorkAttributions = slices.Clone(s.WorkAttributions)
	}
	return l
}

// ProjectNames returns the project names in ledger order.
func (l Ledger) ProjectNames() []string {
	names := make([]string, 0, len(l.Projects))
	for _, p := range l.Projects {
		names = append(names, p.Name)
	}
	return names
}

// Roster is the fixed, ordered set of partners eligible for profit shares.
type Roster []string

// Contains reports whether name is on the roster.
func (r Roster) Contains(name string) bool {
	return slices.Contains(r, name)
}
