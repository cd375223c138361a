package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Forecast model name constants
const (
	ModelSVM  = "svm"
	ModelRF   = "rf"
	ModelXGB  = "xgb"
	ModelLGB  = "lgb"
	ModelLSTM = "lstm"
)

// ModelForecast is a single model's price forecast
type ModelForecast struct {
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
}

// Prediction is an immutable record of per-model price forecasts for a
// symbol/target-date pair. Records are appended and never mutated.
type Prediction struct {
	ID         int            `json:"id"`
	Symbol     string         `json:"symbol"`
	TargetDate *time.Time     `json:"target_date,omitempty"`
	SVM        *ModelForecast `json:"svm,omitempty"`
	RF         *ModelForecast `json:"rf,omitempty"`
	XGB        *ModelForecast `json:"xgb,omitempty"`
	LGB        *ModelForecast `json:"lgb,omitempty"`
	LSTM       *ModelForecast `json:"lstm,omitempty"`
	Ensemble   ModelForecast  `json:"ensemble"`
	CreatedAt  time.Time      `json:"created_at"`
}
