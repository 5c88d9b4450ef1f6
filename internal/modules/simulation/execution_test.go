package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/domain"
)

var testModel = ExecutionModel{Slippage: 0.001, Commission: 0.00015}

func TestExecutionModel_Buy(t *testing.T) {
	date := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("fills whole shares at slipped price", func(t *testing.T) {
		trade, cash := testModel.Buy(date, "005930", 99_000, 100_000, 1000)
		require.NotNil(t, trade)

		// 99,000 / 1001 = 98.9 shares, truncated to 98.
		assert.Equal(t, int64(98), trade.Shares)
		assert.InDelta(t, 1001.0, trade.Price, 1e-9)
		assert.InDelta(t, 98_098.0, trade.Value, 1e-6)
		assert.InDelta(t, 14.7147, trade.Commission, 1e-4)
		assert.Equal(t, domain.ActionBuy, trade.Action)
		assert.InDelta(t, 100_000-98_098-14.7147, cash, 1e-4)
	})

	t.Run("skips when allocation below one share", func(t *testing.T) {
		trade, cash := testModel.Buy(date, "005930", 500, 100_000, 1000)
		assert.Nil(t, trade)
		assert.Equal(t, 100_000.0, cash)
	})

	t.Run("skips when total cost exceeds cash", func(t *testing.T) {
		trade, cash := testModel.Buy(date, "005930", 99_000, 98_100, 1000)
		assert.Nil(t, trade)
		assert.Equal(t, 98_100.0, cash)
	})

	t.Run("skips non-positive quote", func(t *testing.T) {
		trade, cash := testModel.Buy(date, "005930", 99_000, 100_000, 0)
		assert.Nil(t, trade)
		assert.Equal(t, 100_000.0, cash)
	})
}

func TestExecutionModel_Sell(t *testing.T) {
	date := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("credits proceeds net of slippage and commission", func(t *testing.T) {
		trade, credit := testModel.Sell(date, "005930", 50, 1000)
		require.NotNil(t, trade)

		assert.Equal(t, int64(50), trade.Shares)
		assert.InDelta(t, 999.0, trade.Price, 1e-9)
		assert.InDelta(t, 49_950.0, trade.Value, 1e-6)
		assert.InDelta(t, 7.4925, trade.Commission, 1e-4)
		assert.Equal(t, domain.ActionSell, trade.Action)
		assert.InDelta(t, 49_942.5075, credit, 1e-4)
	})

	t.Run("skips non-positive quote", func(t *testing.T) {
		trade, credit := testModel.Sell(date, "005930", 50, 0)
		assert.Nil(t, trade)
		assert.Zero(t, credit)
	})

	t.Run("skips zero shares", func(t *testing.T) {
		trade, credit := testModel.Sell(date, "005930", 0, 1000)
		assert.Nil(t, trade)
		assert.Zero(t, credit)
	})
}

func TestExecutionModel_BuyThenSellCostsMoney(t *testing.T) {
	date := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)

	buy, cash := testModel.Buy(date, "005930", 99_000, 100_000, 1000)
	require.NotNil(t, buy)

	sell, credit := testModel.Sell(date, "005930", buy.Shares, 1000)
	require.NotNil(t, sell)

	// Round-tripping at an unchanged quote must lose the slippage and
	// commission paid on both legs.
	assert.Less(t, cash+credit, 100_000.0)
}
