package marketclock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	c := NewClient(baseURL)

	if c == nil {
		t.Fatal("expected non-nil client")
	}

	if c.baseURL != baseURL {
		t.Errorf("expected baseURL %q, got %q", baseURL, c.baseURL)
	}

	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestGetMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/markets" {
			t.Errorf("path = %q, want /api/markets", r.URL.Path)
		}
		if got := r.URL.Query().Get("locale"); got != "es" {
			t.Errorf("locale = %q, want %q", got, "es")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"at":"2025-01-08T09:00:00Z","markets":[{"id":"london","name":"Londres","isOpen":true,"timeRemainingMs":28800000}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.GetMarkets(context.Background(), "es")
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	if snap.At != "2025-01-08T09:00:00Z" {
		t.Errorf("At = %q, want %q", snap.At, "2025-01-08T09:00:00Z")
	}
	if len(snap.Markets) != 1 {
		t.Fatalf("got %d markets, want 1", len(snap.Markets))
	}
	m := snap.Markets[0]
	if m.ID != "london" || !m.IsOpen || m.TimeRemainingMs != 28_800_000 {
		t.Errorf("market = %+v, want open london with 28800000ms remaining", m)
	}
}

func TestGetMarketError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unknown market \"mars\""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetMarket(context.Background(), "mars", "")
	if err == nil {
		t.Fatal("expected error for unknown market")
	}
}

func TestGetTransitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/markets/london/transitions" {
			t.Errorf("path = %q, want /api/markets/london/transitions", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want %q", got, "10")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transitions":[{"id":"t1","marketId":"london","event":"close","at":"2025-01-08T17:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	trs, err := c.GetTransitions(context.Background(), "london", 10)
	if err != nil {
		t.Fatalf("GetTransitions: %v", err)
	}
	if len(trs) != 1 {
		t.Fatalf("got %d transitions, want 1", len(trs))
	}
	if trs[0].Event != "close" {
		t.Errorf("Event = %q, want %q", trs[0].Event, "close")
	}
}
