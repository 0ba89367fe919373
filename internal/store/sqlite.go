package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketclock/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ TransitionStore = (*SQLiteStore)(nil)

const defaultListLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id        TEXT PRIMARY KEY,
	market_id TEXT NOT NULL,
	event     TEXT NOT NULL,
	at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_market_at ON transitions(market_id, at);
`

// SQLiteStore implements TransitionStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures
// the schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTransition inserts a new transition into the database.
func (s *SQLiteStore) SaveTransition(ctx context.Context, tr *domain.Transition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (id, market_id, event, at) VALUES (?, ?, ?, ?)`,
		tr.ID, tr.MarketID, tr.Event, tr.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving transition %s: %w", tr.ID, err)
	}
	return nil
}

// ListTransitions returns the most recent transitions, newest first,
// optionally filtered by market.
func (s *SQLiteStore) ListTransitions(ctx context.Context, marketID string, limit int) ([]domain.Transition, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, market_id, event, at FROM transitions`
	args := []any{}
	if marketID != "" {
		query += ` WHERE market_id = ?`
		args = append(args, marketID)
	}
	query += ` ORDER BY at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transition
	for rows.Next() {
		var tr domain.Transition
		var at string
		if err := rows.Scan(&tr.ID, &tr.MarketID, &tr.Event, &at); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		tr.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing transition time %q: %w", at, err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// ListTransitionsForDay returns every transition recorded on the given UTC
// day, oldest first.
func (s *SQLiteStore) ListTransitionsForDay(ctx context.Context, date string) ([]domain.Transition, error) {
	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parsing day %q: %w", date, err)
	}
	end := start.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, market_id, event, at FROM transitions WHERE at >= ? AND at < ? ORDER BY at ASC`,
		start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("listing transitions for %s: %w", date, err)
	}
	defer rows.Close()

	var out []domain.Transition
	for rows.Next() {
		var tr domain.Transition
		var at string
		if err := rows.Scan(&tr.ID, &tr.MarketID, &tr.Event, &at); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		tr.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing transition time %q: %w", at, err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
