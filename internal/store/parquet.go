package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"marketclock/internal/domain"
)

// ParquetStore archives transition history as one Parquet file per UTC day.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data
// directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// TransitionRecord is the Parquet schema for archived transitions.
type TransitionRecord struct {
	ID       string `parquet:"id"`
	MarketID string `parquet:"market_id"`
	Event    string `parquet:"event"`
	At       int64  `parquet:"at,timestamp(millisecond)"` // Unix ms
}

// WriteDay archives transitions under:
//
//	<DataDir>/transitions/<YYYY-MM-DD>.parquet
//
// Existing records for the day are merged in, deduplicated by ID.
func (s *ParquetStore) WriteDay(date string, trs []domain.Transition) error {
	if len(trs) == 0 {
		return nil
	}
	path := s.dayPath(date)

	records := make([]TransitionRecord, 0, len(trs))
	for _, tr := range trs {
		records = append(records, TransitionRecord{
			ID:       tr.ID,
			MarketID: tr.MarketID,
			Event:    tr.Event,
			At:       tr.At.UnixMilli(),
		})
	}

	existing, _ := readParquetFile[TransitionRecord](path)
	merged := mergeTransitionRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing transitions for %s: %w", date, err)
	}
	return nil
}

// ReadDay loads the archived transitions for a UTC date ("2006-01-02").
func (s *ParquetStore) ReadDay(date string) ([]domain.Transition, error) {
	records, err := readParquetFile[TransitionRecord](s.dayPath(date))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Transition, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Transition{
			ID:       r.ID,
			MarketID: r.MarketID,
			Event:    r.Event,
			At:       time.UnixMilli(r.At).UTC(),
		})
	}
	return out, nil
}

func (s *ParquetStore) dayPath(date string) string {
	return filepath.Join(s.DataDir, "transitions", date+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeTransitionRecords deduplicates records by ID, preferring incoming
// over existing, ordered by timestamp.
func mergeTransitionRecords(existing, incoming []TransitionRecord) []TransitionRecord {
	seen := make(map[string]TransitionRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.ID] = r
	}
	for _, r := range incoming {
		seen[r.ID] = r
	}

	merged := make([]TransitionRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].At < merged[j].At
	})
	return merged
}
