// Package store persists the four bookkeeping collections in SQLite and
// publishes a full snapshot of a collection after every change to it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/aurion/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite-backed record store with a live change feed.
type Store struct {
	db    *sql.DB
	feed  *feed
	newID func() string
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, feed: newFeed(), newID: uuid.NewString}, nil
}

// Close releases every subscription and closes the database.
func (s *Store) Close() error {
	s.feed.closeAll()
	return s.db.Close()
}

// SubscriberCount reports the number of live subscriptions across all collections.
func (s *Store) SubscriberCount() int {
	return s.feed.subscriberCount()
}

// Create assigns a fresh id to rec, persists it and notifies subscribers.
// Any id already set on rec is ignored.
func (s *Store) Create(ctx context.Context, rec model.Record) (string, error) {
	if rec == nil {
		return "", &Error{Op: "create", Err: ErrUnknownCollection}
	}
	id := s.newID()

	var (
		query string
		args  []any
	)
	switch r := rec.(type) {
	case model.Project:
		query = `INSERT INTO funds (id, name, date, revenue) VALUES (?, ?, ?, ?)`
		args = []any{id, r.Name, r.Date, r.Revenue.String()}
	case model.Cost:
		query = `INSERT INTO costs (id, project_name, category, date, amount, status) VALUES (?, ?, ?, ?, ?, ?)`
		args = []any{id, r.ProjectName, r.Category, r.Date, r.Amount.String(), boolInt(r.Approved)}
	case model.WorkAttribution:
		query = `INSERT INTO work_attributions (id, project_name, founder_name, percentage, date) VALUES (?, ?, ?, ?, ?)`
		args = []any{id, r.ProjectName, r.FounderName, r.Percentage.String(), r.Date}
	case model.Expense:
		query = `INSERT INTO expenses (id, partner_name, work_name, amount, date, status) VALUES (?, ?, ?, ?, ?, ?)`
		args = []any{id, r.PartnerName, r.WorkName, r.Amount.String(), r.Date, string(r.Status.Normalize())}
	default:
		return "", &Error{Op: "create", Collection: rec.Collection(), Err: ErrUnknownCollection}
	}

	if _, err := s.mutate(ctx, rec.Collection(), query, args...); err != nil {
		return "", &Error{Op: "create", Collection: rec.Collection(), Err: err}
	}
	return id, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, c model.Collection, id string) error {
	t, ok := tables[string(c)]
	if !ok {
		return &Error{Op: "delete", Collection: c, ID: id, Err: ErrUnknownCollection}
	}
	n, err := s.mutate(ctx, c, "DELETE FROM "+t.name+" WHERE id = ?", id)
	if err != nil {
		return &Error{Op: "delete", Collection: c, ID: id, Err: err}
	}
	if n == 0 {
		return &Error{Op: "delete", Collection: c, ID: id, Err: ErrNotFound}
	}
	return nil
}

// Update merges fields, keyed by JSON field name, into an existing record.
// Unknown fields and values of the wrong type are rejected before anything is written.
func (s *Store) Update(ctx context.Context, c model.Collection, id string, fields map[string]any) error {
	t, ok := tables[string(c)]
	if !ok {
		return &Error{Op: "update", Collection: c, ID: id, Err: ErrUnknownCollection}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		col, ok := t.columns[k]
		if !ok {
			return &Error{Op: "update", Collection: c, ID: id, Field: k, Err: ErrUnknownField}
		}
		v, err := coerce(col.kind, fields[k])
		if err != nil {
			return &Error{Op: "update", Collection: c, ID: id, Field: k, Err: err}
		}
		sets = append(sets, col.name+" = ?")
		args = append(args, v)
	}

	if len(sets) == 0 {
		var one int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+t.name+" WHERE id = ?", id).Scan(&one)
		if err == sql.ErrNoRows {
			return &Error{Op: "update", Collection: c, ID: id, Err: ErrNotFound}
		}
		if err != nil {
			return &Error{Op: "update", Collection: c, ID: id, Err: err}
		}
		return nil
	}

	args = append(args, id)
	n, err := s.mutate(ctx, c, "UPDATE "+t.name+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return &Error{Op: "update", Collection: c, ID: id, Err: err}
	}
	if n == 0 {
		return &Error{Op: "update", Collection: c, ID: id, Err: ErrNotFound}
	}
	return nil
}

// mutate runs one statement and bumps the collection version in the same
// transaction. Statements that touch no rows leave the version alone.
func (s *Store) mutate(ctx context.Context, c model.Collection, query string, args ...any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE collection_versions SET version = version + 1 WHERE collection = ?", string(c)); err != nil {
		return 0, fmt.Errorf("bumping version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.notify(context.WithoutCancel(ctx), c)
	return n, nil
}

// notify publishes the current snapshot of c if anyone is listening.
func (s *Store) notify(ctx context.Context, c model.Collection) {
	if !s.feed.hasSubscribers(c) {
		return
	}
	snap, err := s.List(ctx, c)
	if err != nil {
		log.Error().Err(err).Str("collection", c.String()).Msg("listing collection for subscribers")
		return
	}
	s.feed.publish(snap)
}

// Subscribe delivers the current snapshot of c immediately and a fresh one
// after every change. The channel holds only the latest snapshot, so a slow
// reader skips intermediate states. The returned func releases the
// subscription and closes the channel; calling it more than once is safe.
func (s *Store) Subscribe(c model.Collection) (<-chan model.Snapshot, func()) {
	id, sub := s.feed.addSubscriber(c)
	unsubscribe := sync.OnceFunc(func() { s.feed.removeSubscriber(c, id) })

	if _, ok := tables[string(c)]; !ok {
		unsubscribe()
		return sub.ch, unsubscribe
	}

	snap, err := s.List(context.Background(), c)
	if err != nil {
		log.Error().Err(err).Str("collection", c.String()).Msg("initial snapshot")
		return sub.ch, unsubscribe
	}
	s.feed.markPublished(c, snap.Version)
	sub.offer(snap)
	return sub.ch, unsubscribe
}

// Watch polls the version table and republishes collections changed by
// other processes sharing the database file. It returns when ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("store watch poll")
			}
		}
	}
}

func (s *Store) pollOnce(ctx context.Context) error {
	versions, err := s.versions(ctx)
	if err != nil {
		return err
	}
	for _, c := range model.Collections {
		v := versions[c]
		if v <= s.feed.lastPublished(c) {
			continue
		}
		if !s.feed.hasSubscribers(c) {
			s.feed.markPublished(c, v)
			continue
		}
		snap, err := s.List(ctx, c)
		if err != nil {
			return fmt.Errorf("listing %s: %w", c, err)
		}
		s.feed.publish(snap)
	}
	return nil
}

func (s *Store) versions(ctx context.Context) (map[model.Collection]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT collection, version FROM collection_versions")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[model.Collection]int64, len(model.Collections))
	for rows.Next() {
		var (
			name string
			v    int64
		)
		if err := rows.Scan(&name, &v); err != nil {
			return nil, err
		}
		out[model.Collection(name)] = v
	}
	return out, rows.Err()
}

func coerce(kind fieldKind, v any) (any, error) {
	switch kind {
	case kindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case kindDecimal:
		var (
			d   decimal.Decimal
			err error
		)
		switch n := v.(type) {
		case decimal.Decimal:
			d = n
		case string:
			d, err = decimal.NewFromString(strings.TrimSpace(n))
		case json.Number:
			d, err = decimal.NewFromString(n.String())
		case float64:
			d = decimal.NewFromFloat(n)
		case int:
			d = decimal.NewFromInt(int64(n))
		case int64:
			d = decimal.NewFromInt(n)
		default:
			return nil, fmt.Errorf("%w: want number, got %T", ErrInvalidValue, v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, err)
		}
		return d.String(), nil
	case kindBool:
		if b, ok := v.(bool); ok {
			return boolInt(b), nil
		}
	case kindStatus:
		var s string
		switch st := v.(type) {
		case string:
			s = st
		case model.ExpenseStatus:
			s = string(st)
		}
		if s == string(model.Pending) || s == string(model.Completed) {
			return s, nil
		}
		return nil, fmt.Errorf("%w: status must be %q or %q", ErrInvalidValue, model.Pending, model.Completed)
	}
	return nil, fmt.Errorf("%w: unexpected %T", ErrInvalidValue, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
