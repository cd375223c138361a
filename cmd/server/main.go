package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tmorgan842/position-tracker/internal/api"
	"github.com/tmorgan842/position-tracker/internal/benchmark"
	"github.com/tmorgan842/position-tracker/internal/config"
	"github.com/tmorgan842/position-tracker/internal/database"
	"github.com/tmorgan842/position-tracker/internal/kafka"
	"github.com/tmorgan842/position-tracker/internal/quotes"
	"github.com/tmorgan842/position-tracker/internal/scheduler"
	"github.com/tmorgan842/position-tracker/pkg/logger"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("Starting position tracker")

	db, err := database.New(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Database migrations applied")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	provider := quotes.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)

	benchmarkSvc, err := benchmark.NewService(
		benchmark.NewRedisStore(rdb, cfg.Benchmark.Symbol),
		provider,
		benchmark.Config{
			Symbol:          cfg.Benchmark.Symbol,
			StaleAfter:      cfg.Benchmark.StaleAfter,
			HistoryDays:     cfg.Benchmark.HistoryDays,
			MarketOpenHour:  cfg.Benchmark.MarketOpenHour,
			MarketCloseHour: cfg.Benchmark.MarketCloseHour,
			MarketTimezone:  cfg.Benchmark.MarketTimezone,
		},
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create benchmark service")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer producer.Close()

	handler := api.NewHandler(db, provider, benchmarkSvc, producer, log)
	router := api.SetupRoutes(handler)

	sched := scheduler.New(log)
	if err := sched.Add(cfg.Benchmark.RefreshSchedule, &benchmark.RefreshJob{Service: benchmarkSvc}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register benchmark refresh job")
	}
	sched.Start()
	defer sched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PredictionsTopic, cfg.Kafka.GroupID, db, log)
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Prediction consumer stopped")
		}
	}()

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Stopped")
}
