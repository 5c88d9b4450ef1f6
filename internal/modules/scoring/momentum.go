package scoring

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// NewMomentum builds a pure price momentum selector over the three
// standard lookbacks, equally weighted.
func NewMomentum(filters Filters, log zerolog.Logger) domain.StockSelector {
	score := func(stocks []domain.StockData) []float64 {
		return momentumScore(stocks)
	}
	return newSelector("momentum", filters, score, log)
}

// ForName returns the selector registered under the strategy name.
func ForName(name string, filters Filters, log zerolog.Logger) (domain.StockSelector, error) {
	switch name {
	case "magic_formula":
		return NewMagicFormula(filters, log), nil
	case "multifactor":
		return NewMultifactor(filters, DefaultFactorWeights(), log), nil
	case "momentum":
		return NewMomentum(filters, log), nil
	case "sector_neutral":
		return NewSectorNeutral(filters, log), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", name, domain.ErrInvalidConfig)
	}
}
