package store

import (
	"context"
	"fmt"
)

// DayArchiver rolls completed journal days into the Parquet archive.
type DayArchiver struct {
	journal TransitionStore
	archive *ParquetStore
}

// NewDayArchiver creates a DayArchiver copying from journal to archive.
func NewDayArchiver(journal TransitionStore, archive *ParquetStore) *DayArchiver {
	return &DayArchiver{journal: journal, archive: archive}
}

// ArchiveDay copies the journal's transitions for a UTC day into that
// day's Parquet file. Re-archiving a day merges rather than duplicates;
// a day with no transitions produces no file.
func (a *DayArchiver) ArchiveDay(ctx context.Context, date string) error {
	trs, err := a.journal.ListTransitionsForDay(ctx, date)
	if err != nil {
		return fmt.Errorf("reading journal for %s: %w", date, err)
	}
	return a.archive.WriteDay(date, trs)
}
