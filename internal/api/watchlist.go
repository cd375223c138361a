package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tmorgan842/position-tracker/internal/models"
)

type addWatchlistRequest struct {
	Ticker           string           `json:"ticker"`
	FundamentalScore *decimal.Decimal `json:"fundamental_score"`
	Notes            string           `json:"notes,omitempty"`
}

// AddWatchlistEntry handles POST /watchlist. A ticker enters the list once
// fundamental analysis has scored it, so the score is required and the
// fundamental flag latches immediately.
func (h *Handler) AddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Ticker = normalizeSymbol(req.Ticker)
	if req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	if req.FundamentalScore == nil {
		respondError(w, http.StatusBadRequest, "fundamental_score is required", nil)
		return
	}

	entry := &models.WatchlistEntry{
		Ticker:           req.Ticker,
		FundamentalScore: *req.FundamentalScore,
		AnalysisStatus:   models.AnalysisStatus{Fundamental: true},
		Notes:            req.Notes,
	}

	if price, err := h.quotes.LatestPrice(req.Ticker); err != nil {
		h.log.Warn().Err(err).Str("ticker", req.Ticker).Msg("Failed to fetch current price")
	} else {
		entry.CurrentPrice = &price
	}

	if err := h.store.CreateWatchlistEntry(entry); err != nil {
		respondError(w, storeStatus(err), "failed to add watchlist entry", err)
		return
	}

	if h.events != nil {
		if err := h.events.PublishWatchlistAdded(r.Context(), entry); err != nil {
			h.log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("Failed to publish watchlist added event")
		}
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetWatchlist handles GET /watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.GetAllWatchlistEntries()
	if err != nil {
		respondError(w, storeStatus(err), "failed to load watchlist", err)
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetWatchlistEntry handles GET /watchlist/{ticker}
func (h *Handler) GetWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	ticker := normalizeSymbol(mux.Vars(r)["ticker"])

	entry, err := h.store.GetWatchlistEntry(ticker)
	if err != nil {
		respondError(w, storeStatus(err), "watchlist entry not found", err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// UpdateWatchlistEntry handles PATCH /watchlist/{ticker}. Writing a score
// latches the matching analysis flag; flags never clear.
func (h *Handler) UpdateWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	ticker := normalizeSymbol(mux.Vars(r)["ticker"])

	var update models.WatchlistUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	entry, err := h.store.GetWatchlistEntry(ticker)
	if err != nil {
		respondError(w, storeStatus(err), "watchlist entry not found", err)
		return
	}

	entry.Apply(update)

	if err := h.store.UpdateWatchlistEntry(entry); err != nil {
		respondError(w, storeStatus(err), "failed to update watchlist entry", err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// DeleteWatchlistEntry handles DELETE /watchlist/{ticker}
func (h *Handler) DeleteWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	ticker := normalizeSymbol(mux.Vars(r)["ticker"])

	if err := h.store.DeleteWatchlistEntry(ticker); err != nil {
		respondError(w, storeStatus(err), "failed to remove watchlist entry", err)
		return
	}

	if h.events != nil {
		if err := h.events.PublishWatchlistRemoved(r.Context(), ticker); err != nil {
			h.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to publish watchlist removed event")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPendingTechnical handles GET /watchlist/pending/technical. Returns
// tickers whose fundamental stage is done but technical is not.
func (h *Handler) GetPendingTechnical(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.store.GetPendingTechnical()
	if err != nil {
		respondError(w, storeStatus(err), "failed to load pending tickers", err)
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tickers": tickers})
}

// GetPendingNews handles GET /watchlist/pending/news. Returns tickers whose
// technical stage is done but news is not.
func (h *Handler) GetPendingNews(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.store.GetPendingNews()
	if err != nil {
		respondError(w, storeStatus(err), "failed to load pending tickers", err)
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tickers": tickers})
}
