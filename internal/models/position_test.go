package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecompute(t *testing.T) {
	t.Run("computes pnl from entry and current price", func(t *testing.T) {
		current := decimal.NewFromFloat(110)
		p := &Position{
			EntryPrice:   decimal.NewFromFloat(100),
			CurrentPrice: &current,
		}
		p.Recompute()

		assert.True(t, decimal.NewFromFloat(10).Equal(p.ProfitLoss), "profit loss = %s", p.ProfitLoss)
		assert.True(t, decimal.NewFromFloat(10).Equal(p.PnlPercent), "pnl percent = %s", p.PnlPercent)
	})

	t.Run("negative pnl", func(t *testing.T) {
		current := decimal.NewFromFloat(96.8)
		p := &Position{
			EntryPrice:   decimal.NewFromFloat(100),
			CurrentPrice: &current,
		}
		p.Recompute()

		assert.True(t, decimal.NewFromFloat(-3.2).Equal(p.PnlPercent), "pnl percent = %s", p.PnlPercent)
	})

	t.Run("keeps last value when current price is missing", func(t *testing.T) {
		p := &Position{
			EntryPrice: decimal.NewFromFloat(100),
			PnlPercent: decimal.NewFromFloat(4.5),
			ProfitLoss: decimal.NewFromFloat(4.5),
		}
		p.Recompute()

		assert.True(t, decimal.NewFromFloat(4.5).Equal(p.PnlPercent))
	})
}

func TestClose(t *testing.T) {
	current := decimal.NewFromFloat(105)
	p := &Position{
		Symbol:       "ABC",
		EntryPrice:   decimal.NewFromFloat(100),
		CurrentPrice: &current,
		Status:       StatusOpen,
	}
	p.Recompute()

	soldAt := time.Now()
	p.Close(decimal.NewFromFloat(120), soldAt)

	assert.Equal(t, StatusClosed, p.Status)
	require.NotNil(t, p.CurrentPrice)
	assert.True(t, decimal.NewFromFloat(120).Equal(*p.CurrentPrice))
	assert.True(t, decimal.NewFromFloat(20).Equal(p.PnlPercent), "pnl frozen at sell price, got %s", p.PnlPercent)
	require.NotNil(t, p.SoldDate)
	assert.Equal(t, soldAt, *p.SoldDate)
}

func TestDeriveStopLoss(t *testing.T) {
	t.Run("defaults to 5 percent below entry", func(t *testing.T) {
		stop := DeriveStopLoss(decimal.NewFromFloat(100), nil)
		assert.True(t, decimal.NewFromFloat(95).Equal(stop), "stop = %s", stop)
	})

	t.Run("uses nearest support below entry", func(t *testing.T) {
		stop := DeriveStopLoss(decimal.NewFromFloat(100), []float64{90, 97, 102})
		assert.True(t, decimal.NewFromFloat(97).Equal(stop), "stop = %s", stop)
	})

	t.Run("ignores supports at or above entry", func(t *testing.T) {
		stop := DeriveStopLoss(decimal.NewFromFloat(100), []float64{100, 105})
		assert.True(t, decimal.NewFromFloat(95).Equal(stop), "stop = %s", stop)
	})
}

func TestDeriveTakeProfit(t *testing.T) {
	t.Run("uses nearest resistance above entry", func(t *testing.T) {
		take, ok := DeriveTakeProfit(decimal.NewFromFloat(100), []float64{95, 104, 110})
		require.True(t, ok)
		assert.True(t, decimal.NewFromFloat(104).Equal(take), "take = %s", take)
	})

	t.Run("no qualifying resistance", func(t *testing.T) {
		_, ok := DeriveTakeProfit(decimal.NewFromFloat(100), []float64{90, 100})
		assert.False(t, ok)
	})
}

func TestRederiveThresholds(t *testing.T) {
	p := &Position{
		EntryPrice:       decimal.NewFromFloat(100),
		SupportLevels:    []float64{90, 97},
		ResistanceLevels: []float64{102, 110},
	}
	p.RederiveThresholds()

	require.NotNil(t, p.StopLoss)
	assert.True(t, decimal.NewFromFloat(97).Equal(*p.StopLoss))
	require.NotNil(t, p.TakeProfit)
	assert.True(t, decimal.NewFromFloat(102).Equal(*p.TakeProfit))
}

func TestValidTimeframe(t *testing.T) {
	assert.True(t, ValidTimeframe(TimeframeHour))
	assert.True(t, ValidTimeframe(TimeframeWeek))
	assert.True(t, ValidTimeframe(TimeframeMonth))
	assert.False(t, ValidTimeframe("1d"))
	assert.False(t, ValidTimeframe(""))
}
