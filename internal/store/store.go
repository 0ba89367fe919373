// Package store persists observed market session transitions: a SQLite
// journal for recent history and Parquet files for day-level archives.
package store

import (
	"context"

	"marketclock/internal/domain"
)

// TransitionStore persists and retrieves open/close transitions.
type TransitionStore interface {
	// SaveTransition inserts a new transition into storage.
	SaveTransition(ctx context.Context, tr *domain.Transition) error

	// ListTransitions returns the most recent transitions, newest first.
	// An empty marketID matches all markets; limit <= 0 applies a default.
	ListTransitions(ctx context.Context, marketID string, limit int) ([]domain.Transition, error)

	// ListTransitionsForDay returns every transition recorded on the given
	// UTC day ("2006-01-02"), oldest first.
	ListTransitionsForDay(ctx context.Context, date string) ([]domain.Transition, error)
}
