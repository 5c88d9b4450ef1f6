package domain

import (
	"time"

	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// StockData is one row of the tradable-universe snapshot handed to a
// StockSelector: security master data joined with the latest applicable
// fundamentals and trailing momentum features. Optional fields are
// pointers; a nil factor means the value was unavailable for that
// security and selectors must skip it rather than treat it as zero.
type StockData struct {
	Code      string
	Name      string
	Sector    string
	Status    string
	MarketCap float64
	Close     float64

	// Value factors
	PER *float64
	PBR *float64
	PSR *float64
	PCR *float64
	EPS *float64

	// Quality factors
	ROE             *float64
	GPA             *float64
	CFORatio        *float64
	EBIT            *float64
	InvestedCapital *float64
	NetDebt         *float64

	// Momentum features (trailing simple returns)
	Momentum3M  *float64
	Momentum6M  *float64
	Momentum12M *float64
}

// Candidate is one selected security, in selection order.
type Candidate struct {
	Code  string
	Score float64
}

// StockSelector picks an ordered list of candidate securities from a
// universe snapshot. Implementations are pluggable black boxes as far
// as the simulator is concerned; weights are not consumed, allocation
// is always equal-weight.
type StockSelector interface {
	// Name returns the strategy identifier used in results and logs.
	Name() string

	// Select returns the ordered candidates for one rebalance date.
	// An empty result is valid and leaves the portfolio in cash.
	Select(snapshot []StockData) ([]Candidate, error)
}

// DataProvider supplies market data to the simulator. Implementations
// may batch-fetch before the run; the simulator itself performs no
// retrying or concurrent I/O.
type DataProvider interface {
	// TradingDays returns the ordered trading-day calendar inside the
	// range, inclusive. An empty result is fatal for a backtest run.
	TradingDays(start, end time.Time) ([]time.Time, error)

	// UniverseSnapshot returns the tradable universe as of the given
	// date. May be empty, in which case the rebalance is a no-op.
	// Securities with insufficient price history for the momentum
	// features are excluded here, not by the simulator.
	UniverseSnapshot(date time.Time) ([]StockData, error)

	// Prices returns the ordered close series for one security. An
	// empty series means the code is skipped wherever prices are needed.
	Prices(code string, start, end time.Time) (formulas.Series, error)

	// LatestClose returns the most recent close at or before the given
	// date, looking back over a short window. ok is false when no price
	// is available.
	LatestClose(code string, date time.Time) (float64, bool, error)
}
