package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tmorgan842/position-tracker/internal/models"
	"github.com/tmorgan842/position-tracker/internal/portfolio"
)

type createPositionRequest struct {
	Symbol           string            `json:"symbol"`
	EntryPrice       decimal.Decimal   `json:"entry_price"`
	Timeframe        string            `json:"timeframe"`
	TargetPrice      *decimal.Decimal  `json:"target_price,omitempty"`
	StopLoss         *decimal.Decimal  `json:"stop_loss,omitempty"`
	EntryDate        *time.Time        `json:"entry_date,omitempty"`
	TargetDate       *time.Time        `json:"target_date,omitempty"`
	SupportLevels    []float64         `json:"support_levels,omitempty"`
	ResistanceLevels []float64         `json:"resistance_levels,omitempty"`
	FundamentalScore *decimal.Decimal  `json:"fundamental_score,omitempty"`
	TechnicalScore   *decimal.Decimal  `json:"technical_score,omitempty"`
	NewsScore        *decimal.Decimal  `json:"news_score,omitempty"`
	Trend            *models.Trend     `json:"trend,omitempty"`
	Signals          *models.SignalSet `json:"signals,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// CreatePosition handles POST /positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req createPositionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Symbol = normalizeSymbol(req.Symbol)
	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required", nil)
		return
	}
	if !req.EntryPrice.IsPositive() {
		respondError(w, http.StatusBadRequest, "entry_price must be positive", nil)
		return
	}
	if req.Timeframe == "" {
		req.Timeframe = models.TimeframeWeek
	}
	if !models.ValidTimeframe(req.Timeframe) {
		respondError(w, http.StatusBadRequest, "invalid timeframe", nil)
		return
	}

	position := &models.Position{
		Symbol:           req.Symbol,
		EntryPrice:       req.EntryPrice,
		Timeframe:        req.Timeframe,
		TargetPrice:      req.TargetPrice,
		TargetDate:       req.TargetDate,
		Status:           models.StatusOpen,
		SupportLevels:    req.SupportLevels,
		ResistanceLevels: req.ResistanceLevels,
		FundamentalScore: req.FundamentalScore,
		TechnicalScore:   req.TechnicalScore,
		NewsScore:        req.NewsScore,
		Trend:            req.Trend,
		Signals:          req.Signals,
		Notes:            req.Notes,
	}
	if req.EntryDate != nil {
		position.EntryDate = *req.EntryDate
	}

	if req.StopLoss != nil {
		position.StopLoss = req.StopLoss
	} else {
		stop := models.DeriveStopLoss(req.EntryPrice, req.SupportLevels)
		position.StopLoss = &stop
	}
	if take, ok := models.DeriveTakeProfit(req.EntryPrice, req.ResistanceLevels); ok {
		position.TakeProfit = &take
	}

	// Price fetch is best effort: the position opens either way.
	if price, err := h.quotes.LatestPrice(req.Symbol); err != nil {
		h.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("Failed to fetch current price")
	} else {
		position.SetCurrentPrice(price)
	}

	if err := h.store.CreatePosition(position); err != nil {
		respondError(w, storeStatus(err), "failed to create position", err)
		return
	}

	if h.events != nil {
		if err := h.events.PublishPositionOpened(r.Context(), position); err != nil {
			h.log.Warn().Err(err).Str("symbol", position.Symbol).Msg("Failed to publish position opened event")
		}
	}

	respondJSON(w, http.StatusCreated, position)
}

type updatePositionRequest struct {
	CurrentPrice     *decimal.Decimal  `json:"current_price,omitempty"`
	TargetPrice      *decimal.Decimal  `json:"target_price,omitempty"`
	StopLoss         *decimal.Decimal  `json:"stop_loss,omitempty"`
	TakeProfit       *decimal.Decimal  `json:"take_profit,omitempty"`
	TargetDate       *time.Time        `json:"target_date,omitempty"`
	SupportLevels    *[]float64        `json:"support_levels,omitempty"`
	ResistanceLevels *[]float64        `json:"resistance_levels,omitempty"`
	FundamentalScore *decimal.Decimal  `json:"fundamental_score,omitempty"`
	TechnicalScore   *decimal.Decimal  `json:"technical_score,omitempty"`
	NewsScore        *decimal.Decimal  `json:"news_score,omitempty"`
	Trend            *models.Trend     `json:"trend,omitempty"`
	Signals          *models.SignalSet `json:"signals,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Status           *string           `json:"status,omitempty"`
}

// UpdatePosition handles PATCH /positions/{symbol}. Only fields present in
// the body change; writing a score or level set also rederives thresholds and
// P&L. The only legal status transition is OPEN to CLOSED.
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(mux.Vars(r)["symbol"])

	var req updatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Status != nil && *req.Status != models.StatusClosed {
		respondError(w, http.StatusBadRequest, "status may only transition to CLOSED", nil)
		return
	}

	position, err := h.store.GetLatestOpenPosition(symbol)
	if err != nil {
		respondError(w, storeStatus(err), "open position not found", err)
		return
	}

	if req.TargetPrice != nil {
		position.TargetPrice = req.TargetPrice
	}
	if req.StopLoss != nil {
		position.StopLoss = req.StopLoss
	}
	if req.TakeProfit != nil {
		position.TakeProfit = req.TakeProfit
	}
	if req.TargetDate != nil {
		position.TargetDate = req.TargetDate
	}
	if req.SupportLevels != nil {
		position.SupportLevels = *req.SupportLevels
	}
	if req.ResistanceLevels != nil {
		position.ResistanceLevels = *req.ResistanceLevels
	}
	if req.SupportLevels != nil || req.ResistanceLevels != nil {
		position.RederiveThresholds()
	}
	if req.FundamentalScore != nil {
		position.FundamentalScore = req.FundamentalScore
	}
	if req.TechnicalScore != nil {
		position.TechnicalScore = req.TechnicalScore
	}
	if req.NewsScore != nil {
		position.NewsScore = req.NewsScore
	}
	if req.Trend != nil {
		position.Trend = req.Trend
	}
	if req.Signals != nil {
		position.Signals = req.Signals
	}
	if req.Notes != nil {
		position.Notes = *req.Notes
	}
	if req.CurrentPrice != nil {
		position.SetCurrentPrice(*req.CurrentPrice)
	}

	closed := req.Status != nil
	if closed {
		sellPrice := position.EntryPrice
		if position.CurrentPrice != nil {
			sellPrice = *position.CurrentPrice
		}
		position.Close(sellPrice, time.Now().UTC())
	}

	if err := h.store.UpdatePosition(position); err != nil {
		respondError(w, storeStatus(err), "failed to update position", err)
		return
	}

	if h.events != nil {
		publish := h.events.PublishPositionUpdated
		if closed {
			publish = h.events.PublishPositionClosed
		}
		if err := publish(r.Context(), position); err != nil {
			h.log.Warn().Err(err).Str("symbol", position.Symbol).Msg("Failed to publish position event")
		}
	}

	respondJSON(w, http.StatusOK, position)
}

type sellPositionRequest struct {
	SellPrice decimal.Decimal `json:"sell_price"`
}

// SellPosition handles POST /positions/{symbol}/sell
func (h *Handler) SellPosition(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(mux.Vars(r)["symbol"])

	var req sellPositionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !req.SellPrice.IsPositive() {
		respondError(w, http.StatusBadRequest, "sell_price must be positive", nil)
		return
	}

	position, err := h.store.GetLatestOpenPosition(symbol)
	if err != nil {
		respondError(w, storeStatus(err), "open position not found", err)
		return
	}

	position.Close(req.SellPrice, time.Now().UTC())

	if err := h.store.UpdatePosition(position); err != nil {
		respondError(w, storeStatus(err), "failed to close position", err)
		return
	}

	if h.events != nil {
		if err := h.events.PublishPositionClosed(r.Context(), position); err != nil {
			h.log.Warn().Err(err).Str("symbol", position.Symbol).Msg("Failed to publish position closed event")
		}
	}

	respondJSON(w, http.StatusOK, position)
}

// DeletePosition handles DELETE /positions/{symbol}
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(mux.Vars(r)["symbol"])

	position, err := h.store.GetLatestPosition(symbol)
	if err != nil {
		respondError(w, storeStatus(err), "position not found", err)
		return
	}

	if err := h.store.DeletePosition(position.ID); err != nil {
		respondError(w, storeStatus(err), "failed to delete position", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "position deleted",
		"position": position,
	})
}

type refreshResult struct {
	Symbol string           `json:"symbol"`
	Status string           `json:"status"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// RefreshPrices handles POST /positions/update-prices. Quotes for all open
// positions are fetched concurrently; one symbol failing never aborts the
// rest, each gets its own slot in the result array.
func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.GetPositionsByStatus(models.StatusOpen)
	if err != nil {
		respondError(w, storeStatus(err), "failed to load open positions", err)
		return
	}

	results := make([]refreshResult, len(positions))
	g, _ := errgroup.WithContext(r.Context())
	for i, position := range positions {
		i, position := i, position
		g.Go(func() error {
			price, err := h.quotes.LatestPrice(position.Symbol)
			if err != nil {
				results[i] = refreshResult{Symbol: position.Symbol, Status: "failed", Error: err.Error()}
				return nil
			}
			results[i] = refreshResult{Symbol: position.Symbol, Status: "updated", Price: &price}
			return nil
		})
	}
	g.Wait()

	for i, position := range positions {
		if results[i].Price == nil {
			continue
		}
		position.SetCurrentPrice(*results[i].Price)
		if err := h.store.UpdatePosition(position); err != nil {
			h.log.Error().Err(err).Str("symbol", position.Symbol).Msg("Failed to persist refreshed price")
			results[i] = refreshResult{Symbol: position.Symbol, Status: "failed", Error: err.Error()}
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// GetPortfolio handles GET /portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.GetAllPositions()
	if err != nil {
		respondError(w, storeStatus(err), "failed to load positions", err)
		return
	}
	if positions == nil {
		positions = []*models.Position{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"summary":   portfolio.Summarize(positions),
	})
}

// GetCurrentPrice handles GET /prices/{symbol}
func (h *Handler) GetCurrentPrice(w http.ResponseWriter, r *http.Request) {
	symbol := normalizeSymbol(mux.Vars(r)["symbol"])

	price, err := h.quotes.LatestPrice(symbol)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch price", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":        symbol,
		"current_price": price,
	})
}
