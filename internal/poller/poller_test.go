package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketclock/internal/domain"
	"marketclock/internal/session"
)

// memoryJournal records saved transitions in memory.
type memoryJournal struct {
	mu          sync.Mutex
	transitions []domain.Transition
}

func (j *memoryJournal) SaveTransition(_ context.Context, tr *domain.Transition) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.transitions = append(j.transitions, *tr)
	return nil
}

func (j *memoryJournal) ListTransitions(_ context.Context, marketID string, limit int) ([]domain.Transition, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Transition(nil), j.transitions...), nil
}

func (j *memoryJournal) ListTransitionsForDay(_ context.Context, date string) ([]domain.Transition, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.Transition
	for _, tr := range j.transitions {
		if tr.At.UTC().Format("2006-01-02") == date {
			out = append(out, tr)
		}
	}
	return out, nil
}

// memoryArchiver records which days were archived.
type memoryArchiver struct {
	mu   sync.Mutex
	days []string
}

func (a *memoryArchiver) ArchiveDay(_ context.Context, date string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.days = append(a.days, date)
	return nil
}

func testMarkets() []domain.Market {
	return []domain.Market{{
		ID:         "london",
		NameKey:    "market_london",
		LocalOpen:  "08:00",
		LocalClose: "17:00",
		Timezone:   "Europe/London",
	}}
}

func TestTickInvokesHandler(t *testing.T) {
	var snapshots atomic.Int32
	var lastSnap Snapshot
	var mu sync.Mutex

	handler := SnapshotHandlerFunc(func(s Snapshot) {
		snapshots.Add(1)
		mu.Lock()
		lastSnap = s
		mu.Unlock()
	})

	// Fixed clock: Wednesday 2025-01-08 09:00 UTC, London open.
	at := time.Date(2025, time.January, 8, 9, 0, 0, 0, time.UTC)
	p := New(DefaultConfig(), testMarkets(), session.New(nil), handler, nil, nil,
		WithClock(func() time.Time { return at }))

	p.tick()

	if got := snapshots.Load(); got != 1 {
		t.Fatalf("handler invoked %d times, want 1", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lastSnap.Markets) != 1 {
		t.Fatalf("snapshot has %d markets, want 1", len(lastSnap.Markets))
	}
	if !lastSnap.Markets[0].Status.Open {
		t.Error("snapshot status Open = false, want true")
	}
	if !lastSnap.At.Equal(at) {
		t.Errorf("snapshot At = %v, want %v", lastSnap.At, at)
	}
}

func TestTransitionJournaled(t *testing.T) {
	journal := &memoryJournal{}

	// Advance the clock across the 17:00 UTC close between ticks.
	ticks := []time.Time{
		time.Date(2025, time.January, 8, 16, 59, 0, 0, time.UTC),
		time.Date(2025, time.January, 8, 17, 0, 0, 0, time.UTC),
	}
	var i int
	p := New(DefaultConfig(), testMarkets(), session.New(nil),
		SnapshotHandlerFunc(func(Snapshot) {}), journal, nil,
		WithClock(func() time.Time {
			at := ticks[i]
			if i < len(ticks)-1 {
				i++
			}
			return at
		}))

	p.tick() // seeds the open state
	p.tick() // crosses the close boundary

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.transitions) != 1 {
		t.Fatalf("journal has %d transitions, want 1", len(journal.transitions))
	}
	tr := journal.transitions[0]
	if tr.MarketID != "london" {
		t.Errorf("transition MarketID = %q, want %q", tr.MarketID, "london")
	}
	if tr.Event != domain.EventClose {
		t.Errorf("transition Event = %q, want %q", tr.Event, domain.EventClose)
	}
	if tr.ID == "" {
		t.Error("transition ID is empty, want a generated id")
	}
}

func TestFirstTickDoesNotJournal(t *testing.T) {
	journal := &memoryJournal{}
	at := time.Date(2025, time.January, 8, 9, 0, 0, 0, time.UTC)

	p := New(DefaultConfig(), testMarkets(), session.New(nil),
		SnapshotHandlerFunc(func(Snapshot) {}), journal, nil,
		WithClock(func() time.Time { return at }))

	p.tick()
	p.tick()

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.transitions) != 0 {
		t.Errorf("journal has %d transitions without a state change, want 0", len(journal.transitions))
	}
}

func TestDayRolloverArchives(t *testing.T) {
	archiver := &memoryArchiver{}

	// Three ticks: late on the 8th, then twice on the 9th. Only the
	// first tick of the new day triggers an archive, for the day that
	// just completed.
	ticks := []time.Time{
		time.Date(2025, time.January, 8, 23, 59, 59, 0, time.UTC),
		time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 9, 0, 0, 1, 0, time.UTC),
	}
	var i int
	p := New(DefaultConfig(), testMarkets(), session.New(nil),
		SnapshotHandlerFunc(func(Snapshot) {}), nil, nil,
		WithArchiver(archiver),
		WithClock(func() time.Time {
			at := ticks[i]
			if i < len(ticks)-1 {
				i++
			}
			return at
		}))

	p.tick()
	p.tick()
	p.tick()

	archiver.mu.Lock()
	defer archiver.mu.Unlock()
	if len(archiver.days) != 1 {
		t.Fatalf("archiver invoked for %d days, want 1: %v", len(archiver.days), archiver.days)
	}
	if archiver.days[0] != "2025-01-08" {
		t.Errorf("archived day = %q, want %q", archiver.days[0], "2025-01-08")
	}
}

func TestFirstTickDoesNotArchive(t *testing.T) {
	archiver := &memoryArchiver{}
	at := time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC)

	p := New(DefaultConfig(), testMarkets(), session.New(nil),
		SnapshotHandlerFunc(func(Snapshot) {}), nil, nil,
		WithArchiver(archiver),
		WithClock(func() time.Time { return at }))

	p.tick()

	archiver.mu.Lock()
	defer archiver.mu.Unlock()
	if len(archiver.days) != 0 {
		t.Errorf("first tick archived %v, want no archiving without a completed day", archiver.days)
	}
}

func TestStartStop(t *testing.T) {
	var ticks atomic.Int32
	p := New(Config{Interval: 10 * time.Millisecond}, testMarkets(), session.New(nil),
		SnapshotHandlerFunc(func(Snapshot) { ticks.Add(1) }), nil, nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := ticks.Load(); got < 2 {
		t.Errorf("poller ticked %d times in 50ms at 10ms interval, want >= 2", got)
	}
}
