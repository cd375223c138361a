package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmorgan842/position-tracker/internal/benchmark"
	"github.com/tmorgan842/position-tracker/internal/database"
	"github.com/tmorgan842/position-tracker/internal/models"
	"github.com/tmorgan842/position-tracker/internal/quotes"
)

// Store defines the persistence operations handlers depend on.
// *database.DB satisfies it.
type Store interface {
	CreatePosition(p *models.Position) error
	GetPositionByID(id int) (*models.Position, error)
	GetLatestOpenPosition(symbol string) (*models.Position, error)
	GetLatestPosition(symbol string) (*models.Position, error)
	GetAllPositions() ([]*models.Position, error)
	GetPositionsByStatus(status string) ([]*models.Position, error)
	UpdatePosition(p *models.Position) error
	DeletePosition(id int) error

	CreateWatchlistEntry(w *models.WatchlistEntry) error
	GetWatchlistEntry(ticker string) (*models.WatchlistEntry, error)
	GetAllWatchlistEntries() ([]*models.WatchlistEntry, error)
	GetPendingTechnical() ([]string, error)
	GetPendingNews() ([]string, error)
	UpdateWatchlistEntry(w *models.WatchlistEntry) error
	DeleteWatchlistEntry(ticker string) error

	CreatePrediction(p *models.Prediction) error
	GetLatestPrediction(symbol string) (*models.Prediction, error)
	GetPredictionsByRange(start, end time.Time) ([]*models.Prediction, error)
}

// EventPublisher publishes lifecycle events. May be nil when Kafka is not
// configured; publish failures never fail the request.
type EventPublisher interface {
	PublishPositionOpened(ctx context.Context, position *models.Position) error
	PublishPositionClosed(ctx context.Context, position *models.Position) error
	PublishPositionUpdated(ctx context.Context, position *models.Position) error
	PublishWatchlistAdded(ctx context.Context, entry *models.WatchlistEntry) error
	PublishWatchlistRemoved(ctx context.Context, ticker string) error
}

// BenchmarkSource serves the cached benchmark index series
type BenchmarkSource interface {
	Series(ctx context.Context) (*benchmark.Snapshot, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store     Store
	quotes    quotes.Provider
	benchmark BenchmarkSource
	events    EventPublisher
	log       zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(store Store, provider quotes.Provider, benchmarkSource BenchmarkSource, events EventPublisher, log zerolog.Logger) *Handler {
	return &Handler{
		store:     store,
		quotes:    provider,
		benchmark: benchmarkSource,
		events:    events,
		log:       log.With().Str("component", "api").Logger(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetBenchmark handles GET /benchmark
func (h *Handler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.benchmark.Series(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch benchmark series", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}

// storeStatus maps repository errors to HTTP status codes
func storeStatus(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
