// Package poller drives the market clock: on every tick it recomputes each
// market's session status, hands the snapshot to a handler, and journals
// open/close transitions. The calculator stays pure; the poller owns all
// time.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketclock/internal/domain"
	"marketclock/internal/session"
	"marketclock/internal/store"
	"marketclock/internal/util"
)

// MarketStatus pairs a market with its computed session status.
type MarketStatus struct {
	Market domain.Market
	Status domain.Status
}

// Snapshot is one tick's worth of computed statuses.
type Snapshot struct {
	At      time.Time
	Markets []MarketStatus
}

// SnapshotHandler receives each tick's snapshot.
type SnapshotHandler interface {
	HandleSnapshot(snapshot Snapshot)
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(Snapshot)

func (f SnapshotHandlerFunc) HandleSnapshot(s Snapshot) {
	f(s)
}

// DayArchiver rolls a completed UTC day of journal entries into long-term
// storage. Called once per day rollover.
type DayArchiver interface {
	ArchiveDay(ctx context.Context, date string) error
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // tick interval (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// Option customises a Poller.
type Option func(*Poller)

// WithClock overrides the wall clock source. For tests.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// WithArchiver enables journal-to-archive day rollover: when a tick lands
// on a new UTC day, the previous day is archived.
func WithArchiver(a DayArchiver) Option {
	return func(p *Poller) {
		p.archiver = a
	}
}

// Poller periodically recomputes market statuses.
type Poller struct {
	cfg      Config
	markets  []domain.Market
	calc     *session.Calculator
	handler  SnapshotHandler
	journal  store.TransitionStore // nil disables journaling
	archiver DayArchiver           // nil disables day rollover
	now      func() time.Time
	logger   *slog.Logger

	// last holds each market's open flag from the previous tick, so
	// flips can be detected. The first tick only seeds it.
	last map[string]bool

	// lastDay is the UTC date of the previous tick; a change means the
	// completed day can be archived.
	lastDay string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, markets []domain.Market, calc *session.Calculator, handler SnapshotHandler, journal store.TransitionStore, logger *slog.Logger, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		cfg:     cfg,
		markets: markets,
		calc:    calc,
		handler: handler,
		journal: journal,
		now:     time.Now,
		logger:  logger,
		last:    make(map[string]bool, len(markets)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the tick loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("status poller started",
		"interval", p.cfg.Interval,
		"markets", len(p.markets),
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("status poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main tick loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Tick immediately on start.
	p.tick()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick recomputes every market's status at a single reference instant.
func (p *Poller) tick() {
	at := p.now()

	day := at.UTC().Format("2006-01-02")
	if p.lastDay != "" && day != p.lastDay {
		p.archiveDay(p.lastDay)
	}
	p.lastDay = day

	snap := Snapshot{At: at, Markets: make([]MarketStatus, 0, len(p.markets))}
	for _, m := range p.markets {
		st := p.calc.Compute(m, at)
		snap.Markets = append(snap.Markets, MarketStatus{Market: m, Status: st})
		p.observe(m, st, at)
	}

	if p.handler != nil {
		p.handler.HandleSnapshot(snap)
	}
}

// observe compares a market's open flag with the previous tick and records
// a transition when it flipped.
func (p *Poller) observe(m domain.Market, st domain.Status, at time.Time) {
	prev, seen := p.last[m.ID]
	p.last[m.ID] = st.Open
	if !seen || prev == st.Open {
		return
	}

	event := domain.EventClose
	if st.Open {
		event = domain.EventOpen
	}
	p.logger.Info("market transition", "market", m.ID, "event", event)

	if p.journal == nil {
		return
	}

	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &domain.Transition{
		ID:       uuid.NewString(),
		MarketID: m.ID,
		Event:    event,
		At:       at,
	}
	err := util.Retry(ctx, 3, 100*time.Millisecond, func() error {
		return p.journal.SaveTransition(ctx, tr)
	})
	if err != nil {
		p.logger.Warn("journaling transition", "market", m.ID, "event", event, "error", err)
	}
}

// archiveDay rolls the completed UTC day's journal entries into the
// archive. Failures are logged; the next rollover does not retry past
// days, so a persistently failing archive loses at most its day file
// while the journal keeps the data.
func (p *Poller) archiveDay(date string) {
	if p.archiver == nil {
		return
	}

	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	err := util.Retry(ctx, 3, 100*time.Millisecond, func() error {
		return p.archiver.ArchiveDay(ctx, date)
	})
	if err != nil {
		p.logger.Warn("archiving day", "date", date, "error", err)
		return
	}
	p.logger.Info("archived day", "date", date)
}
