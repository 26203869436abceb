package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/aurion/internal/model"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns the snapshot of one collection in creation order together with
// its current version.
func (s *Store) List(ctx context.Context, c model.Collection) (model.Snapshot, error) {
	snap := model.Snapshot{Collection: c}
	if _, ok := tables[string(c)]; !ok {
		return snap, &Error{Op: "list", Collection: c, Err: ErrUnknownCollection}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, &Error{Op: "list", Collection: c, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx,
		"SELECT version FROM collection_versions WHERE collection = ?", string(c)).Scan(&snap.Version); err != nil {
		return snap, &Error{Op: "list", Collection: c, Err: fmt.Errorf("reading version: %w", err)}
	}

	switch c {
	case model.Funds:
		snap.Projects, err = queryFunds(ctx, tx, "")
	case model.Costs:
		snap.Costs, err = queryCosts(ctx, tx, "")
	case model.WorkAttributions:
		snap.WorkAttributions, err = queryWork(ctx, tx, "")
	case model.Expenses:
		snap.Expenses, err = queryExpenses(ctx, tx, "")
	}
	if err != nil {
		return snap, &Error{Op: "list", Collection: c, Err: err}
	}
	return snap, tx.Commit()
}

// Load reads every collection into a Ledger.
func (s *Store) Load(ctx context.Context) (model.Ledger, error) {
	var l model.Ledger
	for _, c := range model.Collections {
		snap, err := s.List(ctx, c)
		if err != nil {
			return l, err
		}
		l = l.Apply(snap)
	}
	return l, nil
}

// Get returns a single record by id.
func (s *Store) Get(ctx context.Context, c model.Collection, id string) (model.Record, error) {
	var (
		rec   model.Record
		found bool
		err   error
	)
	const where = " WHERE id = ?"
	switch c {
	case model.Funds:
		var rows []model.Project
		rows, err = queryFunds(ctx, s.db, where, id)
		if found = len(rows) > 0; found {
			rec = rows[0]
		}
	case model.Costs:
		var rows []model.Cost
		rows, err = queryCosts(ctx, s.db, where, id)
		if found = len(rows) > 0; found {
			rec = rows[0]
		}
	case model.WorkAttributions:
		var rows []model.WorkAttribution
		rows, err = queryWork(ctx, s.db, where, id)
		if found = len(rows) > 0; found {
			rec = rows[0]
		}
	case model.Expenses:
		var rows []model.Expense
		rows, err = queryExpenses(ctx, s.db, where, id)
		if found = len(rows) > 0; found {
			rec = rows[0]
		}
	default:
		return nil, &Error{Op: "get", Collection: c, ID: id, Err: ErrUnknownCollection}
	}
	if err != nil {
		return nil, &Error{Op: "get", Collection: c, ID: id, Err: err}
	}
	if !found {
		return nil, &Error{Op: "get", Collection: c, ID: id, Err: ErrNotFound}
	}
	return rec, nil
}

func queryFunds(ctx context.Context, q queryer, where string, args ...any) ([]model.Project, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, name, date, revenue FROM funds"+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Project
	for rows.Next() {
		var (
			p       model.Project
			revenue string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Date, &revenue); err != nil {
			return nil, err
		}
		p.Revenue = parseDecimal(revenue)
		out = append(out, p)
	}
	return out, rows.Err()
}

func queryCosts(ctx context.Context, q queryer, where string, args ...any) ([]model.Cost, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, project_name, category, date, amount, status FROM costs"+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Cost
	for rows.Next() {
		var (
			c      model.Cost
			amount string
			status int
		)
		if err := rows.Scan(&c.ID, &c.ProjectName, &c.Category, &c.Date, &amount, &status); err != nil {
			return nil, err
		}
		c.Amount = parseDecimal(amount)
		c.Approved = status != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func queryWork(ctx context.Context, q queryer, where string, args ...any) ([]model.WorkAttribution, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, project_name, founder_name, percentage, date FROM work_attributions"+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.WorkAttribution
	for rows.Next() {
		var (
			w   model.WorkAttribution
			pct string
		)
		if err := rows.Scan(&w.ID, &w.ProjectName, &w.FounderName, &pct, &w.Date); err != nil {
			return nil, err
		}
		w.Percentage = parseDecimal(pct)
		out = append(out, w)
	}
	return out, rows.Err()
}

func queryExpenses(ctx context.Context, q queryer, where string, args ...any) ([]model.Expense, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, partner_name, work_name, amount, date, status FROM expenses"+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Expense
	for rows.Next() {
		var (
			e      model.Expense
			amount string
			status string
		)
		if err := rows.Scan(&e.ID, &e.PartnerName, &e.WorkName, &amount, &e.Date, &status); err != nil {
			return nil, err
		}
		e.Amount = parseDecimal(amount)
		e.Status = model.ExpenseStatus(status).Normalize()
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseDecimal decodes a stored amount. Malformed values count as zero.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
