package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/quantfolio/quantfolio/internal/testing"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

func TestFiscalYear(t *testing.T) {
	assert.Equal(t, 2022, fiscalYear(day(2023, 6, 15)))
	assert.Equal(t, 2022, fiscalYear(day(2023, 4, 1)))
	assert.Equal(t, 2021, fiscalYear(day(2023, 3, 31)))
	assert.Equal(t, 2021, fiscalYear(day(2023, 1, 2)))
}

func TestComputeMomentum(t *testing.T) {
	start := day(2022, 1, 3)

	t.Run("short history has no momentum", func(t *testing.T) {
		days := testutil.Weekdays(start, minMomentumObservations-1)
		features := ComputeMomentum(testutil.TrendingPrices(days, 1000, 1))
		assert.Nil(t, features.M3)
		assert.Nil(t, features.M6)
		assert.Nil(t, features.M12)
	})

	t.Run("medium history fills short lookbacks only", func(t *testing.T) {
		days := testutil.Weekdays(start, 100)
		closes := testutil.TrendingPrices(days, 1000, 1)
		features := ComputeMomentum(closes)

		require.NotNil(t, features.M3)
		values := closes.Values()
		want := values[len(values)-1]/values[len(values)-1-momentum3MDays] - 1
		assert.InDelta(t, want, *features.M3, 1e-9)
		assert.Nil(t, features.M6)
		assert.Nil(t, features.M12)
	})

	t.Run("full history fills every lookback", func(t *testing.T) {
		days := testutil.Weekdays(start, 300)
		closes := testutil.TrendingPrices(days, 1000, 1)
		features := ComputeMomentum(closes)

		require.NotNil(t, features.M12)
		values := closes.Values()
		want := values[len(values)-1]/values[len(values)-1-momentum12MDays] - 1
		assert.InDelta(t, want, *features.M12, 1e-9)
		require.NotNil(t, features.M6)
		require.NotNil(t, features.M3)
	})
}

func TestProvider_UniverseSnapshot(t *testing.T) {
	db, cleanup := testutil.NewTestDB(t)
	defer cleanup()

	log := logger.Nop()
	provider := NewProvider(db.Conn(), log)
	securities := NewSecurityRepository(db.Conn(), log)
	financials := NewFinancialRepository(db.Conn(), log)
	prices := NewPriceRepository(db.Conn(), log)

	require.NoError(t, securities.Upsert(Security{Code: "005930", Name: "Samsung Electronics", Market: "KOSPI", Sector: "Technology", MarketCap: 4e14, Status: "normal"}))
	require.NoError(t, securities.Upsert(Security{Code: "000660", Name: "SK Hynix", Market: "KOSPI", Sector: "Technology", MarketCap: 9e13, Status: "normal"}))
	require.NoError(t, securities.Upsert(Security{Code: "999999", Name: "Delisted Corp", Market: "KOSPI", Sector: "Industrials", MarketCap: 1e12, Status: "delisted"}))

	require.NoError(t, financials.Upsert(Financials{Code: "005930", Year: 2022, PER: testutil.F(10.5), ROE: testutil.F(0.15)}))
	require.NoError(t, financials.Upsert(Financials{Code: "005930", Year: 2021, PER: testutil.F(99.0)}))

	asOf := day(2023, 6, 15)
	days := testutil.Weekdays(asOf.AddDate(0, 0, -momentumWindowCalendarDays), 300)
	var bars []DailyPrice
	for i, d := range days {
		if d.After(asOf) {
			break
		}
		bars = append(bars, DailyPrice{Code: "005930", Date: d, Close: 1000 + float64(i)},
			DailyPrice{Code: "000660", Date: d, Close: 500})
	}
	require.NoError(t, prices.UpsertBatch(bars))

	snapshot, err := provider.UniverseSnapshot(asOf)
	require.NoError(t, err)

	// Delisted Corp has no prices at all and is dropped.
	require.Len(t, snapshot, 2)
	byCode := map[string]int{}
	for i, s := range snapshot {
		byCode[s.Code] = i
	}

	t.Run("fundamentals join on the published fiscal year", func(t *testing.T) {
		samsung := snapshot[byCode["005930"]]
		require.NotNil(t, samsung.PER)
		assert.Equal(t, 10.5, *samsung.PER)
		require.NotNil(t, samsung.ROE)
		assert.Equal(t, 0.15, *samsung.ROE)
	})

	t.Run("securities without fundamentals keep nil factors", func(t *testing.T) {
		hynix := snapshot[byCode["000660"]]
		assert.Nil(t, hynix.PER)
		assert.Nil(t, hynix.ROE)
		assert.Equal(t, 500.0, hynix.Close)
	})

	t.Run("momentum is derived from trailing prices", func(t *testing.T) {
		samsung := snapshot[byCode["005930"]]
		require.NotNil(t, samsung.Momentum3M)
		assert.Greater(t, *samsung.Momentum3M, 0.0)
		hynix := snapshot[byCode["000660"]]
		require.NotNil(t, hynix.Momentum3M)
		assert.InDelta(t, 0.0, *hynix.Momentum3M, 1e-12)
	})
}

func TestProvider_CalendarAndSeries(t *testing.T) {
	db, cleanup := testutil.NewTestDB(t)
	defer cleanup()

	log := logger.Nop()
	provider := NewProvider(db.Conn(), log)
	prices := NewPriceRepository(db.Conn(), log)

	days := testutil.Weekdays(day(2023, 1, 2), 20)
	var bars []DailyPrice
	for i, d := range days {
		bars = append(bars, DailyPrice{Code: "KOSPI", Date: d, Close: 2400 + float64(i)})
	}
	require.NoError(t, prices.UpsertBatch(bars))

	calendar, err := provider.TradingDays(days[0], days[len(days)-1])
	require.NoError(t, err)
	assert.Len(t, calendar, len(days))

	series, err := provider.Prices("KOSPI", days[0], days[len(days)-1])
	require.NoError(t, err)
	require.Len(t, series, len(days))
	assert.Equal(t, 2400.0, series.First().Value)

	price, ok, err := provider.LatestClose("KOSPI", days[len(days)-1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2419.0, price)
}
