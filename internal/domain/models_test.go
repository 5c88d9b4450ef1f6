package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPositionDerivedValues(t *testing.T) {
	pos := &Position{Code: "005930", Shares: 10, AvgPrice: 100, CurrentPrice: 110}

	assert.Equal(t, 1100.0, pos.Value())
	assert.Equal(t, 100.0, pos.PnL())
	assert.InDelta(t, 0.10, pos.PnLPct(), 1e-9)

	zero := &Position{Code: "000660", Shares: 5}
	assert.Equal(t, 0.0, zero.PnLPct())
}

func TestPortfolioTotalValue(t *testing.T) {
	p := NewPortfolio(1000)
	p.Positions["005930"] = &Position{Code: "005930", Shares: 10, AvgPrice: 90, CurrentPrice: 100}
	p.Positions["000660"] = &Position{Code: "000660", Shares: 2, AvgPrice: 40, CurrentPrice: 50}

	assert.Equal(t, 1100.0, p.StockValue())
	assert.Equal(t, 2100.0, p.TotalValue())
}

func TestPortfolioUpdatePrices(t *testing.T) {
	p := NewPortfolio(0)
	p.Positions["005930"] = &Position{Code: "005930", Shares: 1, CurrentPrice: 100}
	p.Positions["000660"] = &Position{Code: "000660", Shares: 1, CurrentPrice: 50}

	p.UpdatePrices(map[string]float64{"005930": 120})

	assert.Equal(t, 120.0, p.Positions["005930"].CurrentPrice)
	// Missing price keeps the last known mark
	assert.Equal(t, 50.0, p.Positions["000660"].CurrentPrice)
}

func TestPortfolioSnapshotIdentity(t *testing.T) {
	p := NewPortfolio(500)
	p.Positions["005930"] = &Position{Code: "005930", Shares: 3, CurrentPrice: 100}

	snap := p.Snapshot(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, snap.TotalValue, snap.Cash+snap.StockValue)
	assert.Equal(t, 1, snap.NumPositions)
	assert.Equal(t, 300.0, snap.StockValue)
}
