package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tmorgan842/position-tracker/internal/benchmark"
	"github.com/tmorgan842/position-tracker/internal/database"
	"github.com/tmorgan842/position-tracker/internal/models"
	"github.com/tmorgan842/position-tracker/internal/quotes"
)

// fakeStore is an in-memory Store for handler tests
type fakeStore struct {
	positions   []*models.Position
	watchlist   map[string]*models.WatchlistEntry
	predictions []*models.Prediction
	nextID      int
	err         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{watchlist: make(map[string]*models.WatchlistEntry)}
}

func (s *fakeStore) CreatePosition(p *models.Position) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	p.ID = s.nextID
	if p.EntryDate.IsZero() {
		p.EntryDate = time.Now().UTC()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.positions = append(s.positions, p)
	return nil
}

func (s *fakeStore) GetPositionByID(id int) (*models.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.positions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetLatestOpenPosition(symbol string) (*models.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := len(s.positions) - 1; i >= 0; i-- {
		p := s.positions[i]
		if p.Symbol == symbol && p.Status == models.StatusOpen {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetLatestPosition(symbol string) (*models.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := len(s.positions) - 1; i >= 0; i-- {
		if s.positions[i].Symbol == symbol {
			return s.positions[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetAllPositions() ([]*models.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.positions, nil
}

func (s *fakeStore) GetPositionsByStatus(status string) ([]*models.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Position
	for _, p := range s.positions {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdatePosition(p *models.Position) error {
	if s.err != nil {
		return s.err
	}
	for i, existing := range s.positions {
		if existing.ID == p.ID {
			s.positions[i] = p
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) DeletePosition(id int) error {
	if s.err != nil {
		return s.err
	}
	for i, p := range s.positions {
		if p.ID == id {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.watchlist[w.Ticker]; ok {
		return database.ErrDuplicate
	}
	w.AddedDate = time.Now().UTC()
	w.LastUpdated = w.AddedDate
	s.watchlist[w.Ticker] = w
	return nil
}

func (s *fakeStore) GetWatchlistEntry(ticker string) (*models.WatchlistEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	entry, ok := s.watchlist[ticker]
	if !ok {
		return nil, database.ErrNotFound
	}
	return entry, nil
}

func (s *fakeStore) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.WatchlistEntry
	for _, entry := range s.watchlist {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (s *fakeStore) GetPendingTechnical() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, entry := range s.watchlist {
		if entry.AnalysisStatus.Fundamental && !entry.AnalysisStatus.Technical {
			out = append(out, entry.Ticker)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) GetPendingNews() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, entry := range s.watchlist {
		if entry.AnalysisStatus.Technical && !entry.AnalysisStatus.News {
			out = append(out, entry.Ticker)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) UpdateWatchlistEntry(w *models.WatchlistEntry) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.watchlist[w.Ticker]; !ok {
		return database.ErrNotFound
	}
	w.LastUpdated = time.Now().UTC()
	s.watchlist[w.Ticker] = w
	return nil
}

func (s *fakeStore) DeleteWatchlistEntry(ticker string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.watchlist[ticker]; !ok {
		return database.ErrNotFound
	}
	delete(s.watchlist, ticker)
	return nil
}

func (s *fakeStore) CreatePrediction(p *models.Prediction) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	p.ID = s.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.predictions = append(s.predictions, p)
	return nil
}

func (s *fakeStore) GetLatestPrediction(symbol string) (*models.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := len(s.predictions) - 1; i >= 0; i-- {
		if s.predictions[i].Symbol == symbol {
			return s.predictions[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetPredictionsByRange(start, end time.Time) ([]*models.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Prediction
	for _, p := range s.predictions {
		if !p.CreatedAt.Before(start) && !p.CreatedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

var errNoQuote = errors.New("quote unavailable")

// fakeQuoteProvider serves canned prices per symbol
type fakeQuoteProvider struct {
	prices map[string]decimal.Decimal
	errs   map[string]error
}

func (f *fakeQuoteProvider) LatestPrice(symbol string) (decimal.Decimal, error) {
	if err, ok := f.errs[symbol]; ok {
		return decimal.Zero, err
	}
	if price, ok := f.prices[symbol]; ok {
		return price, nil
	}
	return decimal.Zero, errNoQuote
}

func (f *fakeQuoteProvider) DailyCloses(symbol string, start, end time.Time) ([]quotes.Bar, error) {
	return nil, nil
}

type fakeBenchmarkSource struct {
	snapshot *benchmark.Snapshot
	err      error
}

func (f *fakeBenchmarkSource) Series(ctx context.Context) (*benchmark.Snapshot, error) {
	return f.snapshot, f.err
}

// fakeEvents records published event types
type fakeEvents struct {
	published []string
}

func (f *fakeEvents) PublishPositionOpened(ctx context.Context, p *models.Position) error {
	f.published = append(f.published, models.EventPositionOpened)
	return nil
}

func (f *fakeEvents) PublishPositionClosed(ctx context.Context, p *models.Position) error {
	f.published = append(f.published, models.EventPositionClosed)
	return nil
}

func (f *fakeEvents) PublishPositionUpdated(ctx context.Context, p *models.Position) error {
	f.published = append(f.published, models.EventPositionUpdated)
	return nil
}

func (f *fakeEvents) PublishWatchlistAdded(ctx context.Context, e *models.WatchlistEntry) error {
	f.published = append(f.published, models.EventWatchlistAdded)
	return nil
}

func (f *fakeEvents) PublishWatchlistRemoved(ctx context.Context, ticker string) error {
	f.published = append(f.published, models.EventWatchlistRemoved)
	return nil
}

type testEnv struct {
	store  *fakeStore
	quotes *fakeQuoteProvider
	bench  *fakeBenchmarkSource
	events *fakeEvents
	router http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:  newFakeStore(),
		quotes: &fakeQuoteProvider{prices: map[string]decimal.Decimal{}, errs: map[string]error{}},
		bench:  &fakeBenchmarkSource{},
		events: &fakeEvents{},
	}
	handler := NewHandler(env.store, env.quotes, env.bench, env.events, zerolog.Nop())
	env.router = SetupRoutes(handler)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}
