package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tmorgan842/position-tracker/internal/models"
	"github.com/tmorgan842/position-tracker/internal/portfolio"
	"github.com/tmorgan842/position-tracker/internal/quotes"
)

const defaultTimeseriesDays = 30

// GetPerformance handles GET /performance
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.GetAllPositions()
	if err != nil {
		respondError(w, storeStatus(err), "failed to load positions", err)
		return
	}

	closed := make([]*models.Position, 0)
	for _, p := range positions {
		if p.Status == models.StatusClosed {
			closed = append(closed, p)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":          portfolio.Summarize(positions),
		"closed_positions": closed,
	})
}

// GetPerformanceTimeseries handles GET /performance/timeseries. Accepts
// optional start_date and end_date query params as YYYY-MM-DD, defaulting to
// the trailing 30 days. The benchmark overlay is best effort.
func (h *Handler) GetPerformanceTimeseries(w http.ResponseWriter, r *http.Request) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -defaultTimeseriesDays)

	var err error
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if start, err = time.Parse("2006-01-02", raw); err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD", err)
			return
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if end, err = time.Parse("2006-01-02", raw); err != nil {
			respondError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD", err)
			return
		}
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, "end_date precedes start_date", nil)
		return
	}

	closed, err := h.store.GetPositionsByStatus(models.StatusClosed)
	if err != nil {
		respondError(w, storeStatus(err), "failed to load closed positions", err)
		return
	}

	var bars []quotes.Bar
	if snapshot, err := h.benchmark.Series(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Benchmark series unavailable, omitting overlay")
	} else {
		bars = snapshot.Series
	}

	points := portfolio.TimeSeries(closed, bars, start, end)
	if points == nil {
		points = []portfolio.Point{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"points":     points,
	})
}

func parseDateParam(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}
