package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/tmorgan842/position-tracker/internal/models"
)

const watchlistColumns = `
	ticker, current_price, fundamental_score, technical_score, news_score,
	fundamental_done, technical_done, news_done, notes, added_date, last_updated`

// CreateWatchlistEntry adds a ticker to the watchlist. A duplicate ticker is
// rejected with ErrDuplicate.
func (db *DB) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (
			ticker, current_price, fundamental_score, technical_score, news_score,
			fundamental_done, technical_done, news_done, notes, added_date, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	now := time.Now()

	_, err := db.conn.Exec(query,
		w.Ticker, w.CurrentPrice, w.FundamentalScore, w.TechnicalScore, w.NewsScore,
		w.AnalysisStatus.Fundamental, w.AnalysisStatus.Technical, w.AnalysisStatus.News,
		w.Notes, now, now,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("watchlist entry %s: %w", w.Ticker, ErrDuplicate)
		}
		return fmt.Errorf("failed to create watchlist entry: %w", err)
	}
	w.AddedDate = now
	w.LastUpdated = now
	return nil
}

// GetWatchlistEntry retrieves a watchlist entry by ticker
func (db *DB) GetWatchlistEntry(ticker string) (*models.WatchlistEntry, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist WHERE ticker = $1`
	w, err := scanWatchlistEntry(db.conn.QueryRow(query, ticker))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watchlist entry %s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	return w, nil
}

// GetAllWatchlistEntries retrieves the full watchlist, newest first
func (db *DB) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist ORDER BY added_date DESC`
	return db.scanWatchlistEntries(db.conn.Query(query))
}

// GetPendingTechnical returns tickers whose fundamental analysis is complete
// but whose technical analysis is not.
func (db *DB) GetPendingTechnical() ([]string, error) {
	query := `
		SELECT ticker
		FROM watchlist
		WHERE fundamental_done = true AND technical_done = false
		ORDER BY added_date ASC
	`
	return db.scanTickers(db.conn.Query(query))
}

// GetPendingNews returns tickers whose technical analysis is complete but
// whose news analysis is not.
func (db *DB) GetPendingNews() ([]string, error) {
	query := `
		SELECT ticker
		FROM watchlist
		WHERE technical_done = true AND news_done = false
		ORDER BY added_date ASC
	`
	return db.scanTickers(db.conn.Query(query))
}

// UpdateWatchlistEntry persists all mutable fields of an existing entry and
// advances last_updated.
func (db *DB) UpdateWatchlistEntry(w *models.WatchlistEntry) error {
	query := `
		UPDATE watchlist SET
			current_price = $2, fundamental_score = $3, technical_score = $4, news_score = $5,
			fundamental_done = $6, technical_done = $7, news_done = $8,
			notes = $9, last_updated = $10
		WHERE ticker = $1
	`
	w.LastUpdated = time.Now()

	result, err := db.conn.Exec(query,
		w.Ticker, w.CurrentPrice, w.FundamentalScore, w.TechnicalScore, w.NewsScore,
		w.AnalysisStatus.Fundamental, w.AnalysisStatus.Technical, w.AnalysisStatus.News,
		w.Notes, w.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to update watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry %s: %w", w.Ticker, ErrNotFound)
	}
	return nil
}

// DeleteWatchlistEntry removes a ticker from the watchlist
func (db *DB) DeleteWatchlistEntry(ticker string) error {
	result, err := db.conn.Exec(`DELETE FROM watchlist WHERE ticker = $1`, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry %s: %w", ticker, ErrNotFound)
	}
	return nil
}

func scanWatchlistEntry(row rowScanner) (*models.WatchlistEntry, error) {
	var w models.WatchlistEntry
	var currentPrice, technicalScore, newsScore sql.NullString
	var notes sql.NullString

	err := row.Scan(
		&w.Ticker, &currentPrice, &w.FundamentalScore, &technicalScore, &newsScore,
		&w.AnalysisStatus.Fundamental, &w.AnalysisStatus.Technical, &w.AnalysisStatus.News,
		&notes, &w.AddedDate, &w.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	w.CurrentPrice = decimalPtr(currentPrice)
	w.TechnicalScore = decimalPtr(technicalScore)
	w.NewsScore = decimalPtr(newsScore)
	if notes.Valid {
		w.Notes = notes.String
	}

	return &w, nil
}

func (db *DB) scanWatchlistEntries(rows *sql.Rows, err error) ([]*models.WatchlistEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		w, err := scanWatchlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, w)
	}

	return entries, rows.Err()
}

func (db *DB) scanTickers(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	return tickers, rows.Err()
}
