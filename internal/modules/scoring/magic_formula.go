package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// NewMagicFormula builds Greenblatt's magic formula selector: rank by
// earnings yield and return on capital, both higher-is-better, and
// combine the standardized ranks.
func NewMagicFormula(filters Filters, log zerolog.Logger) domain.StockSelector {
	return newSelector("magic_formula", filters, magicFormulaScore, log)
}

func magicFormulaScore(stocks []domain.StockData) []float64 {
	n := len(stocks)
	ey := make([]float64, n)
	roc := make([]float64, n)
	for i, s := range stocks {
		ey[i] = earningsYield(s)
		roc[i] = returnOnCapital(s)
	}

	ey = Winsorize(ey, winsorizeLower, winsorizeUpper)
	roc = Winsorize(roc, winsorizeLower, winsorizeUpper)

	// Loss-makers and capital-destroyers are unscorable rather than
	// merely last.
	for i := range ey {
		if ey[i] < 0 {
			ey[i] = math.NaN()
		}
		if roc[i] < 0 {
			roc[i] = math.NaN()
		}
	}

	eyScore := ZScoreRank(ey, false)
	rocScore := ZScoreRank(roc, false)

	out := make([]float64, n)
	for i := range out {
		out[i] = eyScore[i] + rocScore[i]
	}
	return out
}

// earningsYield is EBIT over enterprise value when the balance-sheet
// inputs exist, falling back to EPS over price.
func earningsYield(s domain.StockData) float64 {
	if s.EBIT != nil && s.NetDebt != nil && s.MarketCap > 0 {
		if ev := s.MarketCap + *s.NetDebt; ev != 0 {
			return *s.EBIT / ev
		}
	}
	if s.EPS != nil && s.Close > 0 {
		return *s.EPS / s.Close
	}
	return math.NaN()
}

// returnOnCapital is EBIT over invested capital, falling back to ROE.
func returnOnCapital(s domain.StockData) float64 {
	if s.EBIT != nil && s.InvestedCapital != nil && *s.InvestedCapital != 0 {
		return *s.EBIT / *s.InvestedCapital
	}
	return factor(s.ROE)
}
