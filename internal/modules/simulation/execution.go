// Package simulation runs day-by-day portfolio backtests over a
// trading calendar, rebalancing with a pluggable stock selector and
// filling orders through a slippage and commission cost model.
package simulation

import (
	"time"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// ExecutionModel converts order intents into fills. Buys pay slippage
// above the quoted price, sells receive slippage below it, and both
// sides pay commission on the traded notional.
type ExecutionModel struct {
	Slippage   float64
	Commission float64
}

// Buy sizes a whole-share order against an allocation budget and
// settles it from the available cash. Returns the fill and the
// remaining cash, or (nil, cash) when no order is possible: a
// non-positive quote, a budget too small for one share, or a total
// cost exceeding available cash.
func (m ExecutionModel) Buy(date time.Time, code string, allocation, cash, quote float64) (*domain.TradeRecord, float64) {
	if quote <= 0 {
		return nil, cash
	}

	effective := quote * (1 + m.Slippage)
	shares := int64(allocation / effective)
	if shares <= 0 {
		return nil, cash
	}

	cost := float64(shares) * effective
	commission := cost * m.Commission
	total := cost + commission
	if total > cash {
		return nil, cash
	}

	return &domain.TradeRecord{
		Date:       date,
		Code:       code,
		Action:     domain.ActionBuy,
		Shares:     shares,
		Price:      effective,
		Value:      cost,
		Commission: commission,
	}, cash - total
}

// Sell liquidates a whole-share position at the quoted price less
// slippage. Returns the fill and the net cash credit after commission.
// Returns (nil, 0) for a non-positive quote or share count.
func (m ExecutionModel) Sell(date time.Time, code string, shares int64, quote float64) (*domain.TradeRecord, float64) {
	if quote <= 0 || shares <= 0 {
		return nil, 0
	}

	effective := quote * (1 - m.Slippage)
	proceeds := float64(shares) * effective
	commission := proceeds * m.Commission

	return &domain.TradeRecord{
		Date:       date,
		Code:       code,
		Action:     domain.ActionSell,
		Shares:     shares,
		Price:      effective,
		Value:      proceeds,
		Commission: commission,
	}, proceeds - commission
}
