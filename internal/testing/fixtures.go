package testing

import (
	"time"

	"github.com/quantfolio/quantfolio/internal/domain"
	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// F returns a pointer to the given float64, for optional factor fields.
func F(v float64) *float64 {
	return &v
}

// NewStockDataFixtures returns a small universe snapshot for use in
// selector and simulator tests. Codes follow the KRX six-digit
// convention.
func NewStockDataFixtures() []domain.StockData {
	return []domain.StockData{
		{
			Code: "005930", Name: "Samsung Electronics", Sector: "Technology",
			Status: "normal", MarketCap: 400e12, Close: 70000,
			PER: F(12.5), PBR: F(1.4), PSR: F(1.8), PCR: F(7.0), EPS: F(5600),
			ROE: F(0.11), GPA: F(0.28), CFORatio: F(0.15),
			EBIT: F(35e12), InvestedCapital: F(250e12), NetDebt: F(-80e12),
			Momentum3M: F(0.05), Momentum6M: F(0.12), Momentum12M: F(0.20),
		},
		{
			Code: "000660", Name: "SK Hynix", Sector: "Technology",
			Status: "normal", MarketCap: 90e12, Close: 120000,
			PER: F(8.2), PBR: F(1.1), PSR: F(2.1), PCR: F(5.5), EPS: F(14600),
			ROE: F(0.14), GPA: F(0.31), CFORatio: F(0.22),
			EBIT: F(12e12), InvestedCapital: F(60e12), NetDebt: F(5e12),
			Momentum3M: F(0.15), Momentum6M: F(0.25), Momentum12M: F(0.40),
		},
		{
			Code: "035420", Name: "NAVER", Sector: "Communication",
			Status: "normal", MarketCap: 35e12, Close: 210000,
			PER: F(28.0), PBR: F(1.6), PSR: F(3.9), PCR: F(15.0), EPS: F(7500),
			ROE: F(0.06), GPA: F(0.19), CFORatio: F(0.12),
			EBIT: F(1.4e12), InvestedCapital: F(20e12), NetDebt: F(-2e12),
			Momentum3M: F(-0.03), Momentum6M: F(0.02), Momentum12M: F(-0.10),
		},
		{
			Code: "005380", Name: "Hyundai Motor", Sector: "Automotive",
			Status: "normal", MarketCap: 50e12, Close: 240000,
			PER: F(5.1), PBR: F(0.6), PSR: F(0.4), PCR: F(3.2), EPS: F(47000),
			ROE: F(0.12), GPA: F(0.18), CFORatio: F(0.10),
			EBIT: F(15e12), InvestedCapital: F(120e12), NetDebt: F(30e12),
			Momentum3M: F(0.08), Momentum6M: F(0.10), Momentum12M: F(0.18),
		},
		{
			Code: "105560", Name: "KB Financial Group", Sector: "Financials",
			Status: "normal", MarketCap: 30e12, Close: 75000,
			PER: F(5.8), PBR: F(0.5), EPS: F(13000),
			ROE: F(0.09),
			Momentum3M: F(0.04), Momentum6M: F(0.09), Momentum12M: F(0.15),
		},
		{
			Code: "123456", Name: "Suspended Corp", Sector: "Industrials",
			Status: "suspended", MarketCap: 1e12, Close: 5000,
			PER: F(3.0), PBR: F(0.3), ROE: F(0.20),
			Momentum3M: F(0.50), Momentum6M: F(0.60), Momentum12M: F(0.90),
		},
	}
}

// MemoryDataProvider is a deterministic in-memory DataProvider for
// simulator and report tests. All data is fixed up front; repeated
// calls always return identical results.
type MemoryDataProvider struct {
	Days            []time.Time
	PriceSeries     map[string]formulas.Series
	Snapshots       map[string][]domain.StockData // keyed by date (2006-01-02)
	DefaultSnapshot []domain.StockData
}

var _ domain.DataProvider = (*MemoryDataProvider)(nil)

// TradingDays returns the fixture days inside the range, inclusive.
func (m *MemoryDataProvider) TradingDays(start, end time.Time) ([]time.Time, error) {
	var days []time.Time
	for _, d := range m.Days {
		if !d.Before(start) && !d.After(end) {
			days = append(days, d)
		}
	}
	return days, nil
}

// UniverseSnapshot returns the snapshot registered for the date, or the
// default snapshot when none is registered.
func (m *MemoryDataProvider) UniverseSnapshot(date time.Time) ([]domain.StockData, error) {
	if snap, ok := m.Snapshots[date.Format("2006-01-02")]; ok {
		return snap, nil
	}
	return m.DefaultSnapshot, nil
}

// Prices returns the fixture series for the code restricted to the range.
func (m *MemoryDataProvider) Prices(code string, start, end time.Time) (formulas.Series, error) {
	var out formulas.Series
	for _, p := range m.PriceSeries[code] {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

// LatestClose returns the most recent close at or before the date,
// within a ten-calendar-day lookback.
func (m *MemoryDataProvider) LatestClose(code string, date time.Time) (float64, bool, error) {
	series := m.PriceSeries[code]
	cutoff := date.AddDate(0, 0, -10)
	for i := len(series) - 1; i >= 0; i-- {
		p := series[i]
		if p.Date.After(date) {
			continue
		}
		if p.Date.Before(cutoff) {
			break
		}
		return p.Value, true, nil
	}
	return 0, false, nil
}

// FixedSelector always returns the same candidate codes, in order.
type FixedSelector struct {
	StrategyName string
	Codes        []string
}

var _ domain.StockSelector = (*FixedSelector)(nil)

// Name returns the configured strategy name.
func (s *FixedSelector) Name() string {
	return s.StrategyName
}

// Select returns the fixed candidates regardless of the snapshot.
func (s *FixedSelector) Select(_ []domain.StockData) ([]domain.Candidate, error) {
	candidates := make([]domain.Candidate, 0, len(s.Codes))
	for i, code := range s.Codes {
		candidates = append(candidates, domain.Candidate{Code: code, Score: float64(len(s.Codes) - i)})
	}
	return candidates, nil
}

// ConstantPrices builds a flat price series over the given days.
func ConstantPrices(days []time.Time, price float64) formulas.Series {
	series := make(formulas.Series, 0, len(days))
	for _, d := range days {
		series = append(series, formulas.Point{Date: d, Value: price})
	}
	return series
}

// TrendingPrices builds a linearly trending price series over the days.
func TrendingPrices(days []time.Time, base, step float64) formulas.Series {
	series := make(formulas.Series, 0, len(days))
	for i, d := range days {
		series = append(series, formulas.Point{Date: d, Value: base + step*float64(i)})
	}
	return series
}

// Weekdays returns consecutive weekdays starting at the given date.
func Weekdays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := start
	for len(days) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}
