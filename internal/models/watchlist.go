package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisStatus tracks which analysis stages have completed for a watchlist
// entry. A flag latches true when its score is first written and is never
// cleared.
type AnalysisStatus struct {
	Fundamental bool `json:"fundamental"`
	Technical   bool `json:"technical"`
	News        bool `json:"news"`
}

// WatchlistEntry represents a candidate ticker undergoing staged analysis
type WatchlistEntry struct {
	Ticker           string           `json:"ticker"`
	CurrentPrice     *decimal.Decimal `json:"current_price,omitempty"`
	FundamentalScore decimal.Decimal  `json:"fundamental_score"`
	TechnicalScore   *decimal.Decimal `json:"technical_score,omitempty"`
	NewsScore        *decimal.Decimal `json:"news_score,omitempty"`
	AnalysisStatus   AnalysisStatus   `json:"analysis_status"`
	Notes            string           `json:"notes"`
	AddedDate        time.Time        `json:"added_date"`
	LastUpdated      time.Time        `json:"last_updated"`
}

// WatchlistUpdate is the allow-list of mutable watchlist fields. A nil field
// leaves the stored value untouched.
type WatchlistUpdate struct {
	FundamentalScore *decimal.Decimal `json:"fundamental_score,omitempty"`
	TechnicalScore   *decimal.Decimal `json:"technical_score,omitempty"`
	NewsScore        *decimal.Decimal `json:"news_score,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

// Apply writes the supplied scores onto the entry, latching the matching
// analysis flags.
func (w *WatchlistEntry) Apply(u WatchlistUpdate) {
	if u.FundamentalScore != nil {
		w.FundamentalScore = *u.FundamentalScore
		w.AnalysisStatus.Fundamental = true
	}
	if u.TechnicalScore != nil {
		score := u.TechnicalScore.Copy()
		w.TechnicalScore = &score
		w.AnalysisStatus.Technical = true
	}
	if u.NewsScore != nil {
		score := u.NewsScore.Copy()
		w.NewsScore = &score
		w.AnalysisStatus.News = true
	}
	if u.Notes != nil {
		w.Notes = *u.Notes
	}
}
