package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tmorgan842/position-tracker/internal/models"
)

const defaultPredictionHistoryDays = 30

// ReceivePrediction handles POST /predictions/receive. Each record is
// appended as-is; earlier forecasts for the same symbol are never mutated.
func (h *Handler) ReceivePrediction(w http.ResponseWriter, r *http.Request) {
	var prediction models.Prediction
	if err := decodeJSON(r, &prediction); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	prediction.Symbol = normalizeSymbol(prediction.Symbol)
	if prediction.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required", nil)
		return
	}
	if prediction.Ensemble.Price.IsZero() {
		respondError(w, http.StatusBadRequest, "ensemble forecast is required", nil)
		return
	}

	if err := h.store.CreatePrediction(&prediction); err != nil {
		respondError(w, storeStatus(err), "failed to store prediction", err)
		return
	}

	respondJSON(w, http.StatusCreated, &prediction)
}

// GetPrediction handles GET /predictions/{symbol}, returning the most recent
// forecast for the symbol.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(mux.Vars(r)["symbol"])

	prediction, err := h.store.GetLatestPrediction(symbol)
	if err != nil {
		respondError(w, storeStatus(err), "prediction not found", err)
		return
	}
	respondJSON(w, http.StatusOK, prediction)
}

// GetPredictionHistory handles GET /predictions/history. Accepts optional start_date
// and end_date query params as YYYY-MM-DD, defaulting to the trailing 30
// days.
func (h *Handler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -defaultPredictionHistoryDays)

	var err error
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if start, err = parseDateParam(raw); err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD", err)
			return
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if end, err = parseDateParam(raw); err != nil {
			respondError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD", err)
			return
		}
		// Include the whole end day.
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	predictions, err := h.store.GetPredictionsByRange(start, end)
	if err != nil {
		respondError(w, storeStatus(err), "failed to load predictions", err)
		return
	}
	if predictions == nil {
		predictions = []*models.Prediction{}
	}
	respondJSON(w, http.StatusOK, predictions)
}
