// Package benchmark maintains a cached benchmark index series (daily closes)
// refreshed from the market data provider. The cache is a single slot of
// {series, fetchedAt} checked for staleness on every read.
package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tmorgan842/position-tracker/internal/quotes"
)

// ErrCacheMiss is returned when no snapshot has been stored yet
var ErrCacheMiss = errors.New("benchmark cache miss")

// Snapshot is the cached index series with its fetch timestamp
type Snapshot struct {
	Symbol    string       `json:"symbol"`
	Series    []quotes.Bar `json:"series"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Age returns how long ago the snapshot was fetched
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Store persists benchmark snapshots
type Store interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snapshot *Snapshot) error
}

// RedisStore implements Store on a Redis string key holding the snapshot as
// JSON.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a RedisStore for the given benchmark symbol
func NewRedisStore(rdb *redis.Client, symbol string) *RedisStore {
	return &RedisStore{rdb: rdb, key: "benchmark:" + symbol}
}

// Get retrieves the cached snapshot, or ErrCacheMiss when absent
func (s *RedisStore) Get(ctx context.Context) (*Snapshot, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get benchmark: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("redis: decode benchmark: %w", err)
	}
	return &snapshot, nil
}

// Set stores the snapshot, replacing any previous one
func (s *RedisStore) Set(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("redis: encode benchmark: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set benchmark: %w", err)
	}
	return nil
}
