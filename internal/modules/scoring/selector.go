package scoring

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// Filters narrow the universe before any scoring happens. Securities
// failing a filter never receive a score.
type Filters struct {
	TopN              int
	MinMarketCap      float64
	ExcludeFinancials bool
}

// DefaultFilters matches the standard strategy configuration: thirty
// names, no market-cap floor, financial sector excluded.
func DefaultFilters() Filters {
	return Filters{TopN: 30, ExcludeFinancials: true}
}

// scoreFunc computes one score per stock, NaN meaning unscorable.
type scoreFunc func(stocks []domain.StockData) []float64

// selector is the shared selection pipeline: filter, score, drop
// unscorable names, order best first, cut to top N.
type selector struct {
	name    string
	filters Filters
	score   scoreFunc
	log     zerolog.Logger
}

var _ domain.StockSelector = (*selector)(nil)

func newSelector(name string, filters Filters, score scoreFunc, log zerolog.Logger) *selector {
	return &selector{
		name:    name,
		filters: filters,
		score:   score,
		log:     log.With().Str("strategy", name).Logger(),
	}
}

func (s *selector) Name() string { return s.name }

// Select scores the filtered universe and returns the top candidates
// ordered by descending score, ties broken by code for determinism.
func (s *selector) Select(universe []domain.StockData) ([]domain.Candidate, error) {
	stocks := applyFilters(universe, s.filters)
	if len(stocks) == 0 {
		s.log.Warn().Int("universe", len(universe)).Msg("No stocks pass filters")
		return nil, nil
	}

	scores := s.score(stocks)

	candidates := make([]domain.Candidate, 0, len(stocks))
	for i, stock := range stocks {
		if math.IsNaN(scores[i]) {
			continue
		}
		candidates = append(candidates, domain.Candidate{Code: stock.Code, Score: scores[i]})
	}

	sortCandidates(candidates)

	if s.filters.TopN > 0 && len(candidates) > s.filters.TopN {
		candidates = candidates[:s.filters.TopN]
	}

	s.log.Debug().
		Int("universe", len(universe)).
		Int("filtered", len(stocks)).
		Int("selected", len(candidates)).
		Msg("Selection complete")
	return candidates, nil
}

func applyFilters(universe []domain.StockData, f Filters) []domain.StockData {
	out := make([]domain.StockData, 0, len(universe))
	for _, stock := range universe {
		if stock.Status != "normal" {
			continue
		}
		if f.MinMarketCap > 0 && stock.MarketCap < f.MinMarketCap {
			continue
		}
		if f.ExcludeFinancials && isFinancialSector(stock.Sector) {
			continue
		}
		out = append(out, stock)
	}
	return out
}

var financialSectorTerms = []string{"financ", "insurance", "bank", "securities"}

func isFinancialSector(sector string) bool {
	lower := strings.ToLower(sector)
	for _, term := range financialSectorTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// factor reads an optional factor value, NaN when absent.
func factor(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
