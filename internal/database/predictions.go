package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmorgan842/position-tracker/internal/models"
)

const predictionColumns = `
	id, symbol, target_date,
	svm_price, svm_change, rf_price, rf_change, xgb_price, xgb_change,
	lgb_price, lgb_change, lstm_price, lstm_change,
	ensemble_price, ensemble_change, created_at`

// CreatePrediction appends a forecast record. Predictions are immutable: there
// is no update path.
func (db *DB) CreatePrediction(p *models.Prediction) error {
	query := `
		INSERT INTO predictions (
			symbol, target_date,
			svm_price, svm_change, rf_price, rf_change, xgb_price, xgb_change,
			lgb_price, lgb_change, lstm_price, lstm_change,
			ensemble_price, ensemble_change, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id
	`
	now := time.Now()

	svmPrice, svmChange := forecastColumns(p.SVM)
	rfPrice, rfChange := forecastColumns(p.RF)
	xgbPrice, xgbChange := forecastColumns(p.XGB)
	lgbPrice, lgbChange := forecastColumns(p.LGB)
	lstmPrice, lstmChange := forecastColumns(p.LSTM)

	err := db.conn.QueryRow(query,
		p.Symbol, p.TargetDate,
		svmPrice, svmChange, rfPrice, rfChange, xgbPrice, xgbChange,
		lgbPrice, lgbChange, lstmPrice, lstmChange,
		p.Ensemble.Price, p.Ensemble.Change, now,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	p.CreatedAt = now
	return nil
}

// GetLatestPrediction retrieves the most recent prediction for a symbol
func (db *DB) GetLatestPrediction(symbol string) (*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	p, err := scanPrediction(db.conn.QueryRow(query, symbol))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prediction for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// GetPredictionsByRange retrieves predictions created within [start, end],
// newest first.
func (db *DB) GetPredictionsByRange(start, end time.Time) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`
	return db.scanPredictions(db.conn.Query(query, start, end))
}

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	var p models.Prediction
	var targetDate sql.NullTime
	var svmPrice, svmChange, rfPrice, rfChange, xgbPrice, xgbChange sql.NullString
	var lgbPrice, lgbChange, lstmPrice, lstmChange sql.NullString

	err := row.Scan(
		&p.ID, &p.Symbol, &targetDate,
		&svmPrice, &svmChange, &rfPrice, &rfChange, &xgbPrice, &xgbChange,
		&lgbPrice, &lgbChange, &lstmPrice, &lstmChange,
		&p.Ensemble.Price, &p.Ensemble.Change, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if targetDate.Valid {
		p.TargetDate = &targetDate.Time
	}
	p.SVM = forecastFromColumns(svmPrice, svmChange)
	p.RF = forecastFromColumns(rfPrice, rfChange)
	p.XGB = forecastFromColumns(xgbPrice, xgbChange)
	p.LGB = forecastFromColumns(lgbPrice, lgbChange)
	p.LSTM = forecastFromColumns(lstmPrice, lstmChange)

	return &p, nil
}

func (db *DB) scanPredictions(rows *sql.Rows, err error) ([]*models.Prediction, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

func forecastColumns(f *models.ModelForecast) (price interface{}, change interface{}) {
	if f == nil {
		return nil, nil
	}
	return f.Price, f.Change
}

func forecastFromColumns(price, change sql.NullString) *models.ModelForecast {
	if !price.Valid {
		return nil
	}
	f := &models.ModelForecast{}
	f.Price, _ = decimal.NewFromString(price.String)
	if change.Valid {
		f.Change, _ = decimal.NewFromString(change.String)
	}
	return f
}
