package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/tmorgan842/position-tracker/internal/models"
)

const positionColumns = `
	id, symbol, entry_price, current_price, target_price, stop_loss, take_profit,
	entry_date, target_date, sold_date, timeframe, status, profit_loss, pnl_percent,
	support_levels, resistance_levels, fundamental_score, technical_score, news_score,
	trend_direction, trend_strength, signal_rsi, signal_macd, signal_volume_profile,
	signal_predicted_move, notes, created_at, updated_at`

// CreatePosition inserts a new position record
func (db *DB) CreatePosition(p *models.Position) error {
	query := `
		INSERT INTO positions (
			symbol, entry_price, current_price, target_price, stop_loss, take_profit,
			entry_date, target_date, sold_date, timeframe, status, profit_loss, pnl_percent,
			support_levels, resistance_levels, fundamental_score, technical_score, news_score,
			trend_direction, trend_strength, signal_rsi, signal_macd, signal_volume_profile,
			signal_predicted_move, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		RETURNING id
	`
	now := time.Now()
	if p.EntryDate.IsZero() {
		p.EntryDate = now
	}
	if p.Status == "" {
		p.Status = models.StatusOpen
	}

	trendDirection, trendStrength := trendColumns(p.Trend)
	signalRSI, signalMACD, signalVolume, signalMove := signalColumns(p.Signals)

	err := db.conn.QueryRow(query,
		p.Symbol, p.EntryPrice, p.CurrentPrice, p.TargetPrice, p.StopLoss, p.TakeProfit,
		p.EntryDate, p.TargetDate, p.SoldDate, p.Timeframe, p.Status, p.ProfitLoss, p.PnlPercent,
		pq.Array(p.SupportLevels), pq.Array(p.ResistanceLevels),
		p.FundamentalScore, p.TechnicalScore, p.NewsScore,
		trendDirection, trendStrength, signalRSI, signalMACD, signalVolume, signalMove,
		p.Notes, now, now,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPositionByID retrieves a position by ID
func (db *DB) GetPositionByID(id int) (*models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	p, err := scanPosition(db.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// GetLatestOpenPosition retrieves the most recently opened OPEN position for a symbol
func (db *DB) GetLatestOpenPosition(symbol string) (*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE symbol = $1 AND status = $2
		ORDER BY entry_date DESC
		LIMIT 1
	`
	p, err := scanPosition(db.conn.QueryRow(query, symbol, models.StatusOpen))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no open position for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open position: %w", err)
	}
	return p, nil
}

// GetLatestPosition retrieves the most recent position for a symbol regardless of status
func (db *DB) GetLatestPosition(symbol string) (*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE symbol = $1
		ORDER BY entry_date DESC
		LIMIT 1
	`
	p, err := scanPosition(db.conn.QueryRow(query, symbol))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no position for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// GetAllPositions retrieves all positions ordered by entry date, newest first
func (db *DB) GetAllPositions() ([]*models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions ORDER BY entry_date DESC`
	return db.scanPositions(db.conn.Query(query))
}

// GetPositionsByStatus retrieves all positions with the given status
func (db *DB) GetPositionsByStatus(status string) ([]*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE status = $1
		ORDER BY entry_date DESC
	`
	return db.scanPositions(db.conn.Query(query, status))
}

// UpdatePosition persists all mutable fields of an existing position
func (db *DB) UpdatePosition(p *models.Position) error {
	query := `
		UPDATE positions SET
			current_price = $2, target_price = $3, stop_loss = $4, take_profit = $5,
			target_date = $6, sold_date = $7, status = $8, profit_loss = $9, pnl_percent = $10,
			support_levels = $11, resistance_levels = $12,
			fundamental_score = $13, technical_score = $14, news_score = $15,
			trend_direction = $16, trend_strength = $17,
			signal_rsi = $18, signal_macd = $19, signal_volume_profile = $20,
			signal_predicted_move = $21, notes = $22, updated_at = $23
		WHERE id = $1
	`
	p.UpdatedAt = time.Now()

	trendDirection, trendStrength := trendColumns(p.Trend)
	signalRSI, signalMACD, signalVolume, signalMove := signalColumns(p.Signals)

	result, err := db.conn.Exec(query,
		p.ID, p.CurrentPrice, p.TargetPrice, p.StopLoss, p.TakeProfit,
		p.TargetDate, p.SoldDate, p.Status, p.ProfitLoss, p.PnlPercent,
		pq.Array(p.SupportLevels), pq.Array(p.ResistanceLevels),
		p.FundamentalScore, p.TechnicalScore, p.NewsScore,
		trendDirection, trendStrength, signalRSI, signalMACD, signalVolume, signalMove,
		p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeletePosition removes a position by ID
func (db *DB) DeletePosition(id int) error {
	result, err := db.conn.Exec(`DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (*models.Position, error) {
	var p models.Position
	var currentPrice, targetPrice, stopLoss, takeProfit sql.NullString
	var fundamentalScore, technicalScore, newsScore sql.NullString
	var trendDirection, trendStrength sql.NullString
	var signalRSI, signalMACD, signalVolume, signalMove sql.NullString
	var targetDate, soldDate sql.NullTime
	var notes sql.NullString
	var supportLevels, resistanceLevels pq.Float64Array

	err := row.Scan(
		&p.ID, &p.Symbol, &p.EntryPrice, &currentPrice, &targetPrice, &stopLoss, &takeProfit,
		&p.EntryDate, &targetDate, &soldDate, &p.Timeframe, &p.Status, &p.ProfitLoss, &p.PnlPercent,
		&supportLevels, &resistanceLevels, &fundamentalScore, &technicalScore, &newsScore,
		&trendDirection, &trendStrength, &signalRSI, &signalMACD, &signalVolume, &signalMove,
		&notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CurrentPrice = decimalPtr(currentPrice)
	p.TargetPrice = decimalPtr(targetPrice)
	p.StopLoss = decimalPtr(stopLoss)
	p.TakeProfit = decimalPtr(takeProfit)
	p.FundamentalScore = decimalPtr(fundamentalScore)
	p.TechnicalScore = decimalPtr(technicalScore)
	p.NewsScore = decimalPtr(newsScore)
	p.SupportLevels = []float64(supportLevels)
	p.ResistanceLevels = []float64(resistanceLevels)

	if targetDate.Valid {
		p.TargetDate = &targetDate.Time
	}
	if soldDate.Valid {
		p.SoldDate = &soldDate.Time
	}
	if notes.Valid {
		p.Notes = notes.String
	}

	if trendDirection.Valid {
		trend := &models.Trend{Direction: trendDirection.String}
		if trendStrength.Valid {
			trend.Strength, _ = decimal.NewFromString(trendStrength.String)
		}
		p.Trend = trend
	}

	if signalRSI.Valid || signalMACD.Valid || signalVolume.Valid || signalMove.Valid {
		signals := &models.SignalSet{}
		signals.RSI = decimalPtr(signalRSI)
		signals.PredictedMove = decimalPtr(signalMove)
		if signalMACD.Valid {
			signals.MACDSignal = signalMACD.String
		}
		if signalVolume.Valid {
			signals.VolumeProfile = signalVolume.String
		}
		p.Signals = signals
	}

	return &p, nil
}

func (db *DB) scanPositions(rows *sql.Rows, err error) ([]*models.Position, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

func decimalPtr(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid {
		return nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func trendColumns(t *models.Trend) (direction interface{}, strength interface{}) {
	if t == nil {
		return nil, nil
	}
	return t.Direction, t.Strength
}

func signalColumns(s *models.SignalSet) (rsi, macd, volume, move interface{}) {
	if s == nil {
		return nil, nil, nil, nil
	}
	rsi = s.RSI
	move = s.PredictedMove
	if s.MACDSignal != "" {
		macd = s.MACDSignal
	}
	if s.VolumeProfile != "" {
		volume = s.VolumeProfile
	}
	return rsi, macd, volume, move
}
