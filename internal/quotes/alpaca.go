package quotes

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// AlpacaProvider implements Provider against the Alpaca market data API
type AlpacaProvider struct {
	client *marketdata.Client
}

// NewAlpacaProvider creates a provider using the given API credentials
func NewAlpacaProvider(apiKey, apiSecret string) *AlpacaProvider {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	return &AlpacaProvider{client: client}
}

// LatestPrice returns the last traded price for a symbol
func (p *AlpacaProvider) LatestPrice(symbol string) (decimal.Decimal, error) {
	trade, err := p.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest trade for %s: %w", symbol, err)
	}
	return decimal.NewFromFloat(trade.Price), nil
}

// DailyCloses returns daily bars for a symbol over [start, end]
func (p *AlpacaProvider) DailyCloses(symbol string, start, end time.Time) ([]Bar, error) {
	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	closes := make([]Bar, 0, len(bars))
	for _, bar := range bars {
		closes = append(closes, Bar{
			Date:  bar.Timestamp,
			Close: decimal.NewFromFloat(bar.Close),
		})
	}
	return closes, nil
}
