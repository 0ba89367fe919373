// Package httpapi provides the HTTP REST and WebSocket API for the market
// clock dashboard, serving session statuses, countdowns, and transition
// history in JSON format.
package httpapi

// CountdownPartJSON is one value/label component of a formatted countdown.
type CountdownPartJSON struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// MarketStatusJSON is the JSON representation of a market and its session
// status at the snapshot instant.
type MarketStatusJSON struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Icon            string              `json:"icon,omitempty"`
	Color           string              `json:"color,omitempty"`
	LocalOpen       string              `json:"localOpen"`
	LocalClose      string              `json:"localClose"`
	Timezone        string              `json:"timezone"`
	IsOpen          bool                `json:"isOpen"`
	IsEventOpening  bool                `json:"isEventOpening"`
	TimeRemainingMs int64               `json:"timeRemainingMs"`
	Progress        float64             `json:"progress"`
	StatusLabel     string              `json:"statusLabel"`
	EventLabel      string              `json:"eventLabel"`
	Countdown       []CountdownPartJSON `json:"countdown"`
}

// SnapshotJSON is the payload of GET /api/markets and of each stream tick.
type SnapshotJSON struct {
	At      string             `json:"at"` // RFC3339
	Markets []MarketStatusJSON `json:"markets"`
}

// TransitionJSON is the JSON representation of a journaled transition.
type TransitionJSON struct {
	ID       string `json:"id"`
	MarketID string `json:"marketId"`
	Event    string `json:"event"`
	At       string `json:"at"` // RFC3339
}

// TransitionsJSON wraps a list of transitions.
type TransitionsJSON struct {
	Transitions []TransitionJSON `json:"transitions"`
}
