package models

import "time"

// Event type constants
const (
	EventPositionOpened   = "POSITION_OPENED"
	EventPositionClosed   = "POSITION_CLOSED"
	EventPositionUpdated  = "POSITION_UPDATED"
	EventWatchlistAdded   = "WATCHLIST_ADDED"
	EventWatchlistRemoved = "WATCHLIST_REMOVED"
	EventPredictionReady  = "PREDICTION_READY"
)

// PositionEvent represents a Kafka event for position lifecycle changes
type PositionEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Position  *Position `json:"position,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WatchlistEvent represents a Kafka event for watchlist changes
type WatchlistEvent struct {
	EventType string          `json:"event_type"`
	Ticker    string          `json:"ticker"`
	Entry     *WatchlistEntry `json:"entry,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// PredictionEvent is the payload published by the ML pipeline when a new
// forecast batch is ready.
type PredictionEvent struct {
	EventType  string     `json:"event_type"`
	Symbol     string     `json:"symbol"`
	Prediction Prediction `json:"prediction"`
	Timestamp  time.Time  `json:"timestamp"`
}
