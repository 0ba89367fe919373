package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"marketclock/internal/countdown"
	"marketclock/internal/domain"
	"marketclock/internal/i18n"
	"marketclock/internal/poller"
	"marketclock/internal/session"
	"marketclock/internal/store"
)

const maxListLimit = 1000

// Server serves market statuses, countdowns, and transition history over
// HTTP, and pushes live snapshots to WebSocket clients. It also acts as
// the poller's snapshot handler.
type Server struct {
	markets []domain.Market
	calc    *session.Calculator
	catalog *i18n.Catalog
	journal store.TransitionStore // nil disables journal endpoints
	archive *store.ParquetStore   // nil disables archive endpoints
	hub     *Hub
	locale  string // default label locale
	now     func() time.Time
	log     *slog.Logger
}

// NewServer creates a new market clock HTTP server.
func NewServer(
	markets []domain.Market,
	calc *session.Calculator,
	catalog *i18n.Catalog,
	journal store.TransitionStore,
	archive *store.ParquetStore,
	hub *Hub,
	defaultLocale string,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	if defaultLocale == "" {
		defaultLocale = i18n.DefaultLocale
	}
	return &Server{
		markets: markets,
		calc:    calc,
		catalog: catalog,
		journal: journal,
		archive: archive,
		hub:     hub,
		locale:  defaultLocale,
		now:     time.Now,
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/markets", s.handleMarkets)
	mux.HandleFunc("GET /api/markets/{id}", s.handleMarket)
	mux.HandleFunc("GET /api/markets/{id}/transitions", s.handleTransitions)
	mux.HandleFunc("GET /api/transitions/{date}", s.handleArchive)
	mux.HandleFunc("GET /api/stream", s.handleStream)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// HandleSnapshot broadcasts a poller snapshot to all stream clients,
// labeled in the server's default locale.
func (s *Server) HandleSnapshot(snap poller.Snapshot) {
	if s.hub == nil {
		return
	}
	resp := SnapshotJSON{
		At:      snap.At.UTC().Format(time.RFC3339),
		Markets: make([]MarketStatusJSON, 0, len(snap.Markets)),
	}
	for _, ms := range snap.Markets {
		resp.Markets = append(resp.Markets, s.statusJSON(ms.Market, ms.Status, s.locale))
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encoding snapshot", "error", err)
		return
	}
	s.hub.Broadcast(b)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// localeOf extracts the label locale from the "locale" query param.
func (s *Server) localeOf(r *http.Request) string {
	if l := r.URL.Query().Get("locale"); l != "" {
		return l
	}
	return s.locale
}

// statusJSON assembles the wire form of a market's status, resolving all
// labels through the catalog.
func (s *Server) statusJSON(m domain.Market, st domain.Status, locale string) MarketStatusJSON {
	parts := countdown.Format(st.Remaining, s.catalog.Labels(locale))
	partsJSON := make([]CountdownPartJSON, 0, len(parts))
	for _, p := range parts {
		partsJSON = append(partsJSON, CountdownPartJSON{Value: p.Value, Unit: p.Unit})
	}
	return MarketStatusJSON{
		ID:              m.ID,
		Name:            s.catalog.Name(locale, m.NameKey),
		Icon:            m.Icon,
		Color:           m.Color,
		LocalOpen:       m.LocalOpen,
		LocalClose:      m.LocalClose,
		Timezone:        m.Timezone,
		IsOpen:          st.Open,
		IsEventOpening:  st.EventOpening,
		TimeRemainingMs: st.Remaining.Milliseconds(),
		Progress:        st.Progress,
		StatusLabel:     s.catalog.Status(locale, st.Open),
		EventLabel:      s.catalog.Event(locale, st.EventOpening),
		Countdown:       partsJSON,
	}
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	locale := s.localeOf(r)
	at := s.now()

	resp := SnapshotJSON{
		At:      at.UTC().Format(time.RFC3339),
		Markets: make([]MarketStatusJSON, 0, len(s.markets)),
	}
	for _, m := range s.markets {
		resp.Markets = append(resp.Markets, s.statusJSON(m, s.calc.Compute(m, at), locale))
	}

	writeJSON(w, resp)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, ok := s.marketByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown market %q", id))
		return
	}

	at := s.now()
	writeJSON(w, s.statusJSON(m, s.calc.Compute(m, at), s.localeOf(r)))
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "transition journal disabled")
		return
	}

	id := r.PathValue("id")
	if _, ok := s.marketByID(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown market %q", id))
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	transitions, err := s.journal.ListTransitions(r.Context(), id, limit)
	if err != nil {
		s.log.Error("listing transitions", "market", id, "error", err)
		writeError(w, http.StatusInternalServerError, "listing transitions failed")
		return
	}

	writeJSON(w, transitionsJSON(transitions))
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "transition archive disabled")
		return
	}

	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	transitions, err := s.archive.ReadDay(date)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no archive for %s", date))
			return
		}
		s.log.Error("reading archive", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "reading archive failed")
		return
	}

	writeJSON(w, transitionsJSON(transitions))
}

func (s *Server) marketByID(id string) (domain.Market, bool) {
	for _, m := range s.markets {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Market{}, false
}

func transitionsJSON(transitions []domain.Transition) TransitionsJSON {
	out := TransitionsJSON{Transitions: make([]TransitionJSON, 0, len(transitions))}
	for _, tr := range transitions {
		out.Transitions = append(out.Transitions, TransitionJSON{
			ID:       tr.ID,
			MarketID: tr.MarketID,
			Event:    tr.Event,
			At:       tr.At.UTC().Format(time.RFC3339),
		})
	}
	return out
}
