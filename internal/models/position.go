package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position status constants
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// Timeframe constants
const (
	TimeframeHour  = "1h"
	TimeframeWeek  = "1wk"
	TimeframeMonth = "1mo"
)

// Trend direction constants
const (
	TrendUp       = "UP"
	TrendDown     = "DOWN"
	TrendSideways = "SIDEWAYS"
)

var hundred = decimal.NewFromInt(100)

// defaultStopLossFactor is applied to the entry price when no support level
// qualifies as a stop.
var defaultStopLossFactor = decimal.NewFromFloat(0.95)

// Trend describes the direction and strength of the price trend for a position
type Trend struct {
	Direction string          `json:"direction"`
	Strength  decimal.Decimal `json:"strength"`
}

// SignalSet holds technical signals attached to a position
type SignalSet struct {
	RSI           *decimal.Decimal `json:"rsi,omitempty"`
	MACDSignal    string           `json:"macd_signal,omitempty"`
	VolumeProfile string           `json:"volume_profile,omitempty"`
	PredictedMove *decimal.Decimal `json:"predicted_move,omitempty"`
}

// Position represents a tracked trade
type Position struct {
	ID               int              `json:"id"`
	Symbol           string           `json:"symbol"`
	EntryPrice       decimal.Decimal  `json:"entry_price"`
	CurrentPrice     *decimal.Decimal `json:"current_price,omitempty"`
	TargetPrice      *decimal.Decimal `json:"target_price,omitempty"`
	StopLoss         *decimal.Decimal `json:"stop_loss,omitempty"`
	TakeProfit       *decimal.Decimal `json:"take_profit,omitempty"`
	EntryDate        time.Time        `json:"entry_date"`
	TargetDate       *time.Time       `json:"target_date,omitempty"`
	SoldDate         *time.Time       `json:"sold_date,omitempty"`
	Timeframe        string           `json:"timeframe"`
	Status           string           `json:"status"`
	ProfitLoss       decimal.Decimal  `json:"profit_loss"`
	PnlPercent       decimal.Decimal  `json:"pnl_percent"`
	SupportLevels    []float64        `json:"support_levels,omitempty"`
	ResistanceLevels []float64        `json:"resistance_levels,omitempty"`
	FundamentalScore *decimal.Decimal `json:"fundamental_score,omitempty"`
	TechnicalScore   *decimal.Decimal `json:"technical_score,omitempty"`
	NewsScore        *decimal.Decimal `json:"news_score,omitempty"`
	Trend            *Trend           `json:"trend,omitempty"`
	Signals          *SignalSet       `json:"signals,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ValidTimeframe reports whether tf is a recognized holding horizon
func ValidTimeframe(tf string) bool {
	return tf == TimeframeHour || tf == TimeframeWeek || tf == TimeframeMonth
}

// Recompute refreshes the derived P&L fields from the stored entry and current
// prices. When either operand is missing the previously computed values are
// kept as-is.
func (p *Position) Recompute() {
	if p.CurrentPrice == nil || p.EntryPrice.IsZero() {
		return
	}
	p.ProfitLoss = p.CurrentPrice.Sub(p.EntryPrice)
	p.PnlPercent = p.ProfitLoss.Div(p.EntryPrice).Mul(hundred)
}

// Close transitions the position to CLOSED at the given sell price, freezing
// current price and P&L at the moment of sale.
func (p *Position) Close(sellPrice decimal.Decimal, at time.Time) {
	price := sellPrice.Copy()
	p.CurrentPrice = &price
	p.Status = StatusClosed
	p.SoldDate = &at
	p.Recompute()
}

// SetCurrentPrice updates the latest observed market price and recomputes P&L
func (p *Position) SetCurrentPrice(price decimal.Decimal) {
	price = price.Copy()
	p.CurrentPrice = &price
	p.Recompute()
}

// DeriveStopLoss picks the stop for a position: the nearest support level
// strictly below the entry price when one exists, otherwise 5% below entry.
func DeriveStopLoss(entryPrice decimal.Decimal, supportLevels []float64) decimal.Decimal {
	if stop, ok := nearestBelow(entryPrice, supportLevels); ok {
		return stop
	}
	return entryPrice.Mul(defaultStopLossFactor)
}

// DeriveTakeProfit picks the nearest resistance level strictly above the entry
// price. The second return value is false when no level qualifies.
func DeriveTakeProfit(entryPrice decimal.Decimal, resistanceLevels []float64) (decimal.Decimal, bool) {
	return nearestAbove(entryPrice, resistanceLevels)
}

// RederiveThresholds refreshes stop loss and take profit from the position's
// support and resistance levels after a level update.
func (p *Position) RederiveThresholds() {
	if len(p.SupportLevels) > 0 {
		stop := DeriveStopLoss(p.EntryPrice, p.SupportLevels)
		p.StopLoss = &stop
	}
	if len(p.ResistanceLevels) > 0 {
		if take, ok := DeriveTakeProfit(p.EntryPrice, p.ResistanceLevels); ok {
			p.TakeProfit = &take
		}
	}
}

func nearestBelow(price decimal.Decimal, levels []float64) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, l := range levels {
		level := decimal.NewFromFloat(l)
		if level.GreaterThanOrEqual(price) {
			continue
		}
		if !found || level.GreaterThan(best) {
			best = level
			found = true
		}
	}
	return best, found
}

func nearestAbove(price decimal.Decimal, levels []float64) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, l := range levels {
		level := decimal.NewFromFloat(l)
		if level.LessThanOrEqual(price) {
			continue
		}
		if !found || level.LessThan(best) {
			best = level
			found = true
		}
	}
	return best, found
}
