package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmorgan842/position-tracker/internal/models"
	"github.com/tmorgan842/position-tracker/internal/quotes"
)

const dayFormat = "2006-01-02"

// Point is one calendar day in the performance time series
type Point struct {
	Date                string           `json:"date"`
	CumulativeAvgReturn decimal.Decimal  `json:"cumulative_avg_return"`
	ClosedTrades        int              `json:"closed_trades"`
	Benchmark           *decimal.Decimal `json:"benchmark,omitempty"`
}

// TimeSeries buckets closed positions by sell day across [start, end] and
// reports the cumulative average return per day. Days without new closes
// carry the last known value forward. The benchmark series is expressed as
// percent change from its first observed close and forward-filled the same
// way.
func TimeSeries(positions []*models.Position, benchmark []quotes.Bar, start, end time.Time) []Point {
	closesByDay := make(map[string][]decimal.Decimal)
	for _, p := range positions {
		if p.Status != models.StatusClosed || p.SoldDate == nil {
			continue
		}
		day := p.SoldDate.UTC().Format(dayFormat)
		closesByDay[day] = append(closesByDay[day], p.PnlPercent)
	}

	barsByDay := make(map[string]decimal.Decimal)
	for _, bar := range benchmark {
		barsByDay[bar.Date.UTC().Format(dayFormat)] = bar.Close
	}

	var points []Point
	sum := decimal.Zero
	count := 0
	cumulative := decimal.Zero

	var baseline decimal.Decimal
	var lastClose decimal.Decimal
	haveBaseline := false

	for day := start.UTC().Truncate(24 * time.Hour); !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)

		for _, r := range closesByDay[key] {
			sum = sum.Add(r)
			count++
		}
		if count > 0 {
			cumulative = sum.Div(decimal.NewFromInt(int64(count)))
		}

		if close, ok := barsByDay[key]; ok {
			if !haveBaseline {
				baseline = close
				haveBaseline = true
			}
			lastClose = close
		}

		point := Point{
			Date:                key,
			CumulativeAvgReturn: cumulative,
			ClosedTrades:        count,
		}
		if haveBaseline && !baseline.IsZero() {
			change := lastClose.Sub(baseline).Div(baseline).Mul(hundred)
			point.Benchmark = &change
		}

		points = append(points, point)
	}

	return points
}
