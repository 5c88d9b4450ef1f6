// Package domain provides core domain models and types shared across the
// backtest engine.
package domain

import "time"

// TradeAction represents the side of an executed trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Position represents a single holding inside a Portfolio. A Position is
// created by a buy fill, marked to market daily, and removed when the
// holding is liquidated. It is owned exclusively by one Portfolio.
type Position struct {
	Code         string  `json:"code"`
	Shares       int64   `json:"shares"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
}

// Value returns the mark-to-market value of the position.
func (p *Position) Value() float64 {
	return float64(p.Shares) * p.CurrentPrice
}

// PnL returns the unrealized profit or loss of the position.
func (p *Position) PnL() float64 {
	return (p.CurrentPrice - p.AvgPrice) * float64(p.Shares)
}

// PnLPct returns the unrealized return of the position relative to its
// average entry price. Zero for a zero entry price.
func (p *Position) PnLPct() float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.AvgPrice) / p.AvgPrice
}

// Portfolio holds the positions and cash of one simulation run. Each run
// owns exactly one Portfolio; portfolios are never shared across runs.
type Portfolio struct {
	Positions map[string]*Position `json:"positions"`
	Cash      float64              `json:"cash"`
}

// NewPortfolio creates a portfolio holding only cash.
func NewPortfolio(cash float64) *Portfolio {
	return &Portfolio{
		Positions: make(map[string]*Position),
		Cash:      cash,
	}
}

// StockValue returns the combined mark-to-market value of all positions.
func (p *Portfolio) StockValue() float64 {
	total := 0.0
	for _, pos := range p.Positions {
		total += pos.Value()
	}
	return total
}

// TotalValue returns cash plus the value of all positions.
func (p *Portfolio) TotalValue() float64 {
	return p.Cash + p.StockValue()
}

// UpdatePrices marks all held positions to the supplied closing prices.
// Positions without a price entry keep their last known price.
func (p *Portfolio) UpdatePrices(prices map[string]float64) {
	for code, pos := range p.Positions {
		if price, ok := prices[code]; ok {
			pos.CurrentPrice = price
		}
	}
}

// Snapshot captures the portfolio state for one trading day.
func (p *Portfolio) Snapshot(date time.Time) PortfolioSnapshot {
	stockValue := p.StockValue()
	return PortfolioSnapshot{
		Date:         date,
		TotalValue:   p.Cash + stockValue,
		Cash:         p.Cash,
		StockValue:   stockValue,
		NumPositions: len(p.Positions),
	}
}

// TradeRecord is one executed fill. Records are immutable once created
// and appended to an ordered trade log.
type TradeRecord struct {
	Date       time.Time   `json:"date"`
	Code       string      `json:"code"`
	Action     TradeAction `json:"action"`
	Shares     int64       `json:"shares"`
	Price      float64     `json:"price"`
	Value      float64     `json:"value"`
	Commission float64     `json:"commission"`
}

// PortfolioSnapshot is the end-of-day portfolio state. One snapshot is
// appended per trading day, in non-decreasing date order.
type PortfolioSnapshot struct {
	Date         time.Time `json:"date"`
	TotalValue   float64   `json:"total_value"`
	Cash         float64   `json:"cash"`
	StockValue   float64   `json:"stock_value"`
	NumPositions int       `json:"num_positions"`
}
