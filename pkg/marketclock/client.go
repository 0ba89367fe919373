// Package marketclock provides a Go SDK for the marketclock-server API.
package marketclock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides a Go SDK for interacting with the marketclock-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new market clock API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CountdownPart is one value/label component of a formatted countdown.
type CountdownPart struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// MarketStatus is a market and its session status at the snapshot instant.
type MarketStatus struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Icon            string          `json:"icon,omitempty"`
	Color           string          `json:"color,omitempty"`
	LocalOpen       string          `json:"localOpen"`
	LocalClose      string          `json:"localClose"`
	Timezone        string          `json:"timezone"`
	IsOpen          bool            `json:"isOpen"`
	IsEventOpening  bool            `json:"isEventOpening"`
	TimeRemainingMs int64           `json:"timeRemainingMs"`
	Progress        float64         `json:"progress"`
	StatusLabel     string          `json:"statusLabel"`
	EventLabel      string          `json:"eventLabel"`
	Countdown       []CountdownPart `json:"countdown"`
}

// Snapshot is the status of all markets at a single instant.
type Snapshot struct {
	At      string         `json:"at"` // RFC3339
	Markets []MarketStatus `json:"markets"`
}

// Transition is one journaled open/close event.
type Transition struct {
	ID       string `json:"id"`
	MarketID string `json:"marketId"`
	Event    string `json:"event"`
	At       string `json:"at"` // RFC3339
}

// GetMarkets retrieves the current status of all markets. locale may be
// empty to use the server's default.
func (c *Client) GetMarkets(ctx context.Context, locale string) (*Snapshot, error) {
	q := url.Values{}
	if locale != "" {
		q.Set("locale", locale)
	}
	var snap Snapshot
	if err := c.getJSON(ctx, "/api/markets", q, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetMarket retrieves the current status of a single market.
func (c *Client) GetMarket(ctx context.Context, id, locale string) (*MarketStatus, error) {
	q := url.Values{}
	if locale != "" {
		q.Set("locale", locale)
	}
	var st MarketStatus
	if err := c.getJSON(ctx, "/api/markets/"+url.PathEscape(id), q, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetTransitions retrieves the most recent journaled transitions for a
// market, newest first. limit <= 0 uses the server default.
func (c *Client) GetTransitions(ctx context.Context, marketID string, limit int) ([]Transition, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	path := "/api/markets/" + url.PathEscape(marketID) + "/transitions"
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// GetArchivedTransitions retrieves the archived transitions for a UTC day
// in YYYY-MM-DD form.
func (c *Client) GetArchivedTransitions(ctx context.Context, date string) ([]Transition, error) {
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.getJSON(ctx, "/api/transitions/"+url.PathEscape(date), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("GET %s: %s (status %d)", path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
