package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Position routes
	api.HandleFunc("/positions", handler.CreatePosition).Methods("POST")
	api.HandleFunc("/positions/update-prices", handler.RefreshPrices).Methods("POST")
	api.HandleFunc("/positions/{symbol}", handler.UpdatePosition).Methods("PATCH")
	api.HandleFunc("/positions/{symbol}", handler.DeletePosition).Methods("DELETE")
	api.HandleFunc("/positions/{symbol}/sell", handler.SellPosition).Methods("POST")
	api.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/prices/{symbol}", handler.GetCurrentPrice).Methods("GET")

	// Watchlist routes
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddWatchlistEntry).Methods("POST")
	api.HandleFunc("/watchlist/pending/technical", handler.GetPendingTechnical).Methods("GET")
	api.HandleFunc("/watchlist/pending/news", handler.GetPendingNews).Methods("GET")
	api.HandleFunc("/watchlist/{ticker}", handler.GetWatchlistEntry).Methods("GET")
	api.HandleFunc("/watchlist/{ticker}", handler.UpdateWatchlistEntry).Methods("PATCH")
	api.HandleFunc("/watchlist/{ticker}", handler.DeleteWatchlistEntry).Methods("DELETE")

	// Performance and benchmark routes
	api.HandleFunc("/performance", handler.GetPerformance).Methods("GET")
	api.HandleFunc("/performance/timeseries", handler.GetPerformanceTimeseries).Methods("GET")
	api.HandleFunc("/benchmark", handler.GetBenchmark).Methods("GET")

	// Prediction routes
	api.HandleFunc("/predictions/receive", handler.ReceivePrediction).Methods("POST")
	api.HandleFunc("/predictions/history", handler.GetPredictionHistory).Methods("GET")
	api.HandleFunc("/predictions/{symbol}", handler.GetPrediction).Methods("GET")

	return r
}
