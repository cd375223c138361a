// Package portfolio computes read-only derived views over positions. All
// functions are pure so the math is testable apart from persistence.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/tmorgan842/position-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary aggregates statistics over a set of positions
type Summary struct {
	TotalPositions          int             `json:"total_positions"`
	OpenPositions           int             `json:"open_positions"`
	ClosedPositions         int             `json:"closed_positions"`
	TotalInvested           decimal.Decimal `json:"total_invested"`
	CurrentValue            decimal.Decimal `json:"current_value"`
	TotalPnlPercent         decimal.Decimal `json:"total_pnl_percent"`
	WinRate                 decimal.Decimal `json:"win_rate"`
	BestPercentageReturn    decimal.Decimal `json:"best_percentage_return"`
	WorstPercentageReturn   decimal.Decimal `json:"worst_percentage_return"`
	AveragePercentageReturn decimal.Decimal `json:"average_percentage_return"`
}

// Summarize computes aggregate statistics over all positions. Win rate,
// best/worst and average returns consider the closed subset only.
func Summarize(positions []*models.Position) Summary {
	s := Summary{TotalPositions: len(positions)}

	var closedReturns []decimal.Decimal
	winners := 0

	for _, p := range positions {
		s.TotalInvested = s.TotalInvested.Add(p.EntryPrice)
		if p.CurrentPrice != nil {
			s.CurrentValue = s.CurrentValue.Add(*p.CurrentPrice)
		} else {
			s.CurrentValue = s.CurrentValue.Add(p.EntryPrice)
		}
		s.TotalPnlPercent = s.TotalPnlPercent.Add(p.PnlPercent)

		if p.Status == models.StatusClosed {
			s.ClosedPositions++
			closedReturns = append(closedReturns, p.PnlPercent)
			if p.PnlPercent.IsPositive() {
				winners++
			}
		} else {
			s.OpenPositions++
		}
	}

	if len(closedReturns) == 0 {
		return s
	}

	closedCount := decimal.NewFromInt(int64(len(closedReturns)))
	s.WinRate = decimal.NewFromInt(int64(winners)).Div(closedCount).Mul(hundred)

	best, worst := closedReturns[0], closedReturns[0]
	sum := decimal.Zero
	for _, r := range closedReturns {
		sum = sum.Add(r)
		if r.GreaterThan(best) {
			best = r
		}
		if r.LessThan(worst) {
			worst = r
		}
	}
	s.AveragePercentageReturn = sum.Div(closedCount)

	// A lone closed trade is classified by sign: a non-negative return fills
	// the best slot only, a negative one the worst slot only. The empty slot
	// stays at zero.
	if len(closedReturns) == 1 {
		r := closedReturns[0]
		if r.IsNegative() {
			s.WorstPercentageReturn = r
		} else {
			s.BestPercentageReturn = r
		}
		return s
	}

	s.BestPercentageReturn = best
	s.WorstPercentageReturn = worst
	return s
}
