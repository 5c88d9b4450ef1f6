package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// FactorWeights splits the multifactor score across the three factor
// groups.
type FactorWeights struct {
	Quality  float64
	Value    float64
	Momentum float64
}

// DefaultFactorWeights is the standard near-equal split.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{Quality: 0.333, Value: 0.333, Momentum: 0.334}
}

// NewMultifactor builds the blended quality, value and momentum
// selector. Each group combines its factors into one standardized
// score; the final score is the weighted sum of the group scores. A
// stock missing a whole group is unscorable.
func NewMultifactor(filters Filters, weights FactorWeights, log zerolog.Logger) domain.StockSelector {
	score := func(stocks []domain.StockData) []float64 {
		return multifactorScore(stocks, weights)
	}
	return newSelector("multifactor", filters, score, log)
}

func multifactorScore(stocks []domain.StockData, weights FactorWeights) []float64 {
	quality := qualityScore(stocks)
	value := valueScore(stocks)
	momentum := momentumScore(stocks)

	out := make([]float64, len(stocks))
	for i := range out {
		out[i] = quality[i]*weights.Quality + value[i]*weights.Value + momentum[i]*weights.Momentum
	}
	return out
}

// qualityScore combines ROE, GPA and the operating cash flow ratio,
// all higher-is-better.
func qualityScore(stocks []domain.StockData) []float64 {
	factors := extract(stocks,
		func(s domain.StockData) *float64 { return s.ROE },
		func(s domain.StockData) *float64 { return s.GPA },
		func(s domain.StockData) *float64 { return s.CFORatio },
	)
	winsorizeAll(factors)
	return CombineFactors(factors, []bool{false, false, false}, nil)
}

// valueScore combines PER, PBR, PSR and PCR, all lower-is-better.
// Non-positive multiples mean losses or negative book and are
// unscorable.
func valueScore(stocks []domain.StockData) []float64 {
	factors := extract(stocks,
		func(s domain.StockData) *float64 { return s.PER },
		func(s domain.StockData) *float64 { return s.PBR },
		func(s domain.StockData) *float64 { return s.PSR },
		func(s domain.StockData) *float64 { return s.PCR },
	)
	winsorizeAll(factors)
	for _, f := range factors {
		for i, v := range f {
			if v <= 0 {
				f[i] = math.NaN()
			}
		}
	}
	return CombineFactors(factors, []bool{true, true, true, true}, nil)
}

// momentumScore combines the three lookback returns, higher-is-better.
func momentumScore(stocks []domain.StockData) []float64 {
	factors := extract(stocks,
		func(s domain.StockData) *float64 { return s.Momentum3M },
		func(s domain.StockData) *float64 { return s.Momentum6M },
		func(s domain.StockData) *float64 { return s.Momentum12M },
	)
	winsorizeAll(factors)
	return CombineFactors(factors, []bool{false, false, false}, nil)
}

func extract(stocks []domain.StockData, getters ...func(domain.StockData) *float64) [][]float64 {
	factors := make([][]float64, len(getters))
	for f, get := range getters {
		factors[f] = make([]float64, len(stocks))
		for i, s := range stocks {
			factors[f][i] = factor(get(s))
		}
	}
	return factors
}

func winsorizeAll(factors [][]float64) {
	for f := range factors {
		factors[f] = Winsorize(factors[f], winsorizeLower, winsorizeUpper)
	}
}
