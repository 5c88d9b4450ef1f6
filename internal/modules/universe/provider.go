package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// Provider joins securities, fundamentals and prices into the
// point-in-time snapshots the simulator consumes.
type Provider struct {
	securities *SecurityRepository
	financials *FinancialRepository
	prices     *PriceRepository
	log        zerolog.Logger
}

var _ domain.DataProvider = (*Provider)(nil)

func NewProvider(db *sql.DB, log zerolog.Logger) *Provider {
	return &Provider{
		securities: NewSecurityRepository(db, log),
		financials: NewFinancialRepository(db, log),
		prices:     NewPriceRepository(db, log),
		log:        log.With().Str("service", "universe").Logger(),
	}
}

// PriceRepository exposes the underlying price store for data loading.
func (p *Provider) PriceRepository() *PriceRepository { return p.prices }

// TradingDays returns the trading calendar covered by stored prices.
func (p *Provider) TradingDays(start, end time.Time) ([]time.Time, error) {
	return p.prices.TradingDays(start, end)
}

// Prices returns the close series for a code in the range.
func (p *Provider) Prices(code string, start, end time.Time) (formulas.Series, error) {
	return p.prices.Series(code, start, end)
}

// LatestClose returns the most recent close at or before the date.
func (p *Provider) LatestClose(code string, date time.Time) (float64, bool, error) {
	return p.prices.LatestClose(code, date)
}

// UniverseSnapshot builds the tradable universe as of a date: every
// security with a recent close, carrying the fundamentals of the last
// published fiscal year and momentum over trailing price history.
// Securities without a quote are dropped; missing fundamentals or
// momentum leave the corresponding fields nil.
func (p *Provider) UniverseSnapshot(date time.Time) ([]domain.StockData, error) {
	securities, err := p.securities.GetAll()
	if err != nil {
		return nil, fmt.Errorf("loading securities: %w", err)
	}

	year := fiscalYear(date)
	fundamentals, err := p.financials.GetForYear(year)
	if err != nil {
		return nil, fmt.Errorf("loading financials for %d: %w", year, err)
	}

	snapshot := make([]domain.StockData, 0, len(securities))
	skipped := 0
	for _, sec := range securities {
		close, ok, err := p.prices.LatestClose(sec.Code, date)
		if err != nil {
			return nil, fmt.Errorf("quoting %s: %w", sec.Code, err)
		}
		if !ok || close <= 0 {
			skipped++
			continue
		}

		stock := domain.StockData{
			Code:      sec.Code,
			Name:      sec.Name,
			Sector:    sec.Sector,
			Status:    sec.Status,
			MarketCap: sec.MarketCap,
			Close:     close,
		}
		if f, ok := fundamentals[sec.Code]; ok {
			stock.PER = f.PER
			stock.PBR = f.PBR
			stock.PSR = f.PSR
			stock.PCR = f.PCR
			stock.EPS = f.EPS
			stock.ROE = f.ROE
			stock.GPA = f.GPA
			stock.CFORatio = f.CFORatio
			stock.EBIT = f.EBIT
			stock.InvestedCapital = f.InvestedCapital
			stock.NetDebt = f.NetDebt
		}

		history, err := p.prices.Series(sec.Code, momentumWindowStart(date), date)
		if err != nil {
			return nil, fmt.Errorf("loading momentum history for %s: %w", sec.Code, err)
		}
		momentum := ComputeMomentum(history)
		stock.Momentum3M = momentum.M3
		stock.Momentum6M = momentum.M6
		stock.Momentum12M = momentum.M12

		snapshot = append(snapshot, stock)
	}

	p.log.Debug().
		Time("date", date).
		Int("fiscal_year", year).
		Int("securities", len(securities)).
		Int("tradable", len(snapshot)).
		Int("unquoted", skipped).
		Msg("Universe snapshot built")
	return snapshot, nil
}

// fiscalYear returns the last fiscal year whose annual report is
// published as of the date. Annual reports land by the end of March,
// so before April the prior year's statements are still the freshest
// available.
func fiscalYear(date time.Time) int {
	if date.Month() >= time.April {
		return date.Year() - 1
	}
	return date.Year() - 2
}
