package benchmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tmorgan842/position-tracker/internal/quotes"
)

// Config controls refresh behavior for the benchmark series
type Config struct {
	Symbol          string
	StaleAfter      time.Duration
	HistoryDays     int
	MarketOpenHour  int
	MarketCloseHour int
	MarketTimezone  string
}

// Service owns the benchmark snapshot: reads go through a staleness check and
// force a refetch when the cached copy is too old.
type Service struct {
	store    Store
	provider quotes.Provider
	cfg      Config
	location *time.Location
	log      zerolog.Logger

	now func() time.Time
}

// NewService creates a benchmark service
func NewService(store Store, provider quotes.Provider, cfg Config, log zerolog.Logger) (*Service, error) {
	location, err := time.LoadLocation(cfg.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid market timezone %q: %w", cfg.MarketTimezone, err)
	}

	return &Service{
		store:    store,
		provider: provider,
		cfg:      cfg,
		location: location,
		log:      log.With().Str("component", "benchmark").Logger(),
		now:      time.Now,
	}, nil
}

// Series returns the benchmark series, refreshing first when the cached
// snapshot is missing or older than the staleness threshold.
func (s *Service) Series(ctx context.Context) (*Snapshot, error) {
	snapshot, err := s.store.Get(ctx)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	if snapshot != nil && snapshot.Age(s.now()) <= s.cfg.StaleAfter {
		return snapshot, nil
	}

	refreshed, refreshErr := s.Refresh(ctx)
	if refreshErr != nil {
		// serve the stale copy rather than fail when the provider is down
		if snapshot != nil {
			s.log.Warn().Err(refreshErr).Msg("refresh failed, serving stale benchmark")
			return snapshot, nil
		}
		return nil, refreshErr
	}
	return refreshed, nil
}

// Refresh fetches the series from the provider and stores a new snapshot
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	now := s.now()
	start := now.AddDate(0, 0, -s.cfg.HistoryDays)

	series, err := s.provider.DailyCloses(s.cfg.Symbol, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch benchmark series: %w", err)
	}

	snapshot := &Snapshot{
		Symbol:    s.cfg.Symbol,
		Series:    series,
		FetchedAt: now,
	}
	if err := s.store.Set(ctx, snapshot); err != nil {
		return nil, err
	}

	s.log.Info().Int("bars", len(series)).Msg("Benchmark series refreshed")
	return snapshot, nil
}

// InMarketHours reports whether t falls inside the configured trading window
func (s *Service) InMarketHours(t time.Time) bool {
	local := t.In(s.location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= s.cfg.MarketOpenHour && hour < s.cfg.MarketCloseHour
}

// RefreshJob is the scheduled variant of Refresh, gated to market hours
type RefreshJob struct {
	Service *Service
}

// Name identifies the job in scheduler logs
func (j *RefreshJob) Name() string { return "benchmark-refresh" }

// Run refreshes the benchmark cache when the market is open
func (j *RefreshJob) Run() error {
	s := j.Service
	if !s.InMarketHours(s.now()) {
		s.log.Debug().Msg("Market closed, skipping benchmark refresh")
		return nil
	}
	_, err := s.Refresh(context.Background())
	return err
}
