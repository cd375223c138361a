// Package quotes wraps the external market data provider behind a small
// interface so handlers and jobs can be tested without network access.
package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single daily close for a symbol
type Bar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Provider fetches market prices from an external source
type Provider interface {
	// LatestPrice returns the most recent traded price for a symbol
	LatestPrice(symbol string) (decimal.Decimal, error)
	// DailyCloses returns daily closing prices for a symbol over [start, end]
	DailyCloses(symbol string, start, end time.Time) ([]Bar, error)
}
