// Package domain defines the core data types shared across the market
// clock service: static market definitions, derived session status, and
// observed open/close transitions.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Market describes a financial exchange whose trading session the clock
// tracks. The market table is fixed at startup and never mutated.
type Market struct {
	ID         string // stable identifier, e.g. "london"
	NameKey    string // label catalog key for the display name
	LocalOpen  string // session open, "HH:MM" wall clock in Timezone
	LocalClose string // session close, "HH:MM" wall clock in Timezone
	Timezone   string // IANA identifier, e.g. "Europe/London"

	// Display metadata, passed through to API consumers untouched.
	Icon  string
	Color string
}

// Validate checks that the market's open/close times parse and that the
// required fields are present. The built-in table is validated in tests;
// configured overrides are validated at startup.
func (m Market) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("market: missing id")
	}
	if m.Timezone == "" {
		return fmt.Errorf("market %s: missing timezone", m.ID)
	}
	if _, err := ParseClock(m.LocalOpen); err != nil {
		return fmt.Errorf("market %s: open: %w", m.ID, err)
	}
	if _, err := ParseClock(m.LocalClose); err != nil {
		return fmt.Errorf("market %s: close: %w", m.ID, err)
	}
	return nil
}

// Status is the derived session state of a market at a reference instant.
// It is recomputed from scratch on every tick and never persisted.
type Status struct {
	// Open reports whether the instant falls inside the market's weekday
	// open/close window.
	Open bool

	// EventOpening is true when the next transition is an opening (market
	// currently closed), false when counting down to a close.
	EventOpening bool

	// Remaining is the time until the next transition. Never negative.
	Remaining time.Duration

	// Progress is the percentage elapsed through the current window, in
	// [0,100]. While closed the denominator is a nominal 24 hours.
	Progress float64
}

// Transition event kinds.
const (
	EventOpen  = "open"
	EventClose = "close"
)

// Transition records a single open/close state change observed for a
// market by the poller.
type Transition struct {
	ID       string
	MarketID string
	Event    string // EventOpen or EventClose
	At       time.Time
}

// ParseClock parses a "HH:MM" wall-clock string into minutes since local
// midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return h*60 + m, nil
}

// DefaultMarkets returns the built-in table of the four tracked exchanges.
func DefaultMarkets() []Market {
	return []Market{
		{
			ID:         "london",
			NameKey:    "market_london",
			LocalOpen:  "08:00",
			LocalClose: "17:00",
			Timezone:   "Europe/London",
			Icon:       "🇬🇧",
			Color:      "blue",
		},
		{
			ID:         "new_york",
			NameKey:    "market_new_york",
			LocalOpen:  "09:30",
			LocalClose: "16:00",
			Timezone:   "America/New_York",
			Icon:       "🇺🇸",
			Color:      "teal",
		},
		{
			ID:         "tokyo",
			NameKey:    "market_tokyo",
			LocalOpen:  "09:00",
			LocalClose: "15:00",
			Timezone:   "Asia/Tokyo",
			Icon:       "🇯🇵",
			Color:      "red",
		},
		{
			ID:         "sydney",
			NameKey:    "market_sydney",
			LocalOpen:  "10:00",
			LocalClose: "16:00",
			Timezone:   "Australia/Sydney",
			Icon:       "🇦🇺",
			Color:      "orange",
		},
	}
}
