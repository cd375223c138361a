package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Alpaca    AlpacaConfig
	Benchmark BenchmarkConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

// RedisConfig holds Redis configuration for the benchmark cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers          []string
	EventsTopic      string
	PredictionsTopic string
	GroupID          string
}

// AlpacaConfig holds credentials for the market data provider
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// BenchmarkConfig controls the cached benchmark index series
type BenchmarkConfig struct {
	Symbol          string
	RefreshSchedule string
	StaleAfter      time.Duration
	HistoryDays     int
	MarketOpenHour  int
	MarketCloseHour int
	MarketTimezone  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables. The database URL has
// no default: starting without one is an error.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	staleAfter, err := time.ParseDuration(getEnv("BENCHMARK_STALE_AFTER", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BENCHMARK_STALE_AFTER: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:            databaseURL,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:          []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			EventsTopic:      getEnv("KAFKA_EVENTS_TOPIC", "position-events"),
			PredictionsTopic: getEnv("KAFKA_PREDICTIONS_TOPIC", "prediction-events"),
			GroupID:          getEnv("KAFKA_GROUP_ID", "position-tracker"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    getEnv("APCA_API_KEY_ID", ""),
			APISecret: getEnv("APCA_API_SECRET_KEY", ""),
		},
		Benchmark: BenchmarkConfig{
			Symbol:          getEnv("BENCHMARK_SYMBOL", "SPY"),
			RefreshSchedule: getEnv("BENCHMARK_REFRESH_SCHEDULE", "@every 10m"),
			StaleAfter:      staleAfter,
			HistoryDays:     getEnvInt("BENCHMARK_HISTORY_DAYS", 90),
			MarketOpenHour:  getEnvInt("MARKET_OPEN_HOUR", 9),
			MarketCloseHour: getEnvInt("MARKET_CLOSE_HOUR", 16),
			MarketTimezone:  getEnv("MARKET_TIMEZONE", "America/New_York"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
