package scoring

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// sectorNeutral selects by relative strength inside each sector
// instead of across the whole universe, which keeps a single hot
// sector from dominating the book. Sector quotas are proportional to
// sector size by default, or fixed via StocksPerSector.
type sectorNeutral struct {
	filters         Filters
	stocksPerSector int
	factor          func(domain.StockData) *float64
	log             zerolog.Logger
}

var _ domain.StockSelector = (*sectorNeutral)(nil)

// NewSectorNeutral builds the sector-neutral momentum selector:
// twelve-month momentum standardized within each sector, top names
// allocated per sector in proportion to sector size.
func NewSectorNeutral(filters Filters, log zerolog.Logger) domain.StockSelector {
	return &sectorNeutral{
		filters: filters,
		factor:  func(s domain.StockData) *float64 { return s.Momentum12M },
		log:     log.With().Str("strategy", "sector_neutral").Logger(),
	}
}

func (s *sectorNeutral) Name() string { return "sector_neutral" }

// Select scores the filtered universe sector by sector and fills each
// sector's quota with its strongest names. The combined list comes
// back ordered by sector-neutral score, ties broken by code.
func (s *sectorNeutral) Select(universe []domain.StockData) ([]domain.Candidate, error) {
	stocks := applyFilters(universe, s.filters)
	if len(stocks) == 0 {
		s.log.Warn().Int("universe", len(universe)).Msg("No stocks pass filters")
		return nil, nil
	}

	values := make([]float64, len(stocks))
	sectors := make([]string, len(stocks))
	for i, stock := range stocks {
		values[i] = factor(s.factor(stock))
		sectors[i] = stock.Sector
	}
	values = Winsorize(values, winsorizeLower, winsorizeUpper)
	scores := SectorZScoreRank(values, sectors, false)

	// Scorable entries grouped by sector, best first within each.
	bySector := make(map[string][]domain.Candidate)
	for i, stock := range stocks {
		if math.IsNaN(scores[i]) {
			continue
		}
		bySector[stock.Sector] = append(bySector[stock.Sector], domain.Candidate{Code: stock.Code, Score: scores[i]})
	}
	if len(bySector) == 0 {
		return nil, nil
	}
	for _, group := range bySector {
		sortCandidates(group)
	}

	quotas := s.sectorQuotas(bySector)

	var candidates []domain.Candidate
	for sector, quota := range quotas {
		group := bySector[sector]
		if quota > len(group) {
			quota = len(group)
		}
		candidates = append(candidates, group[:quota]...)
	}
	sortCandidates(candidates)

	s.log.Debug().
		Int("universe", len(universe)).
		Int("filtered", len(stocks)).
		Int("sectors", len(bySector)).
		Int("selected", len(candidates)).
		Msg("Selection complete")
	return candidates, nil
}

// sectorQuotas splits the target count across sectors: fixed per
// sector when configured, otherwise proportional to sector size with
// the rounding remainder absorbed by the largest sector.
func (s *sectorNeutral) sectorQuotas(bySector map[string][]domain.Candidate) map[string]int {
	quotas := make(map[string]int, len(bySector))
	if s.stocksPerSector > 0 {
		for sector := range bySector {
			quotas[sector] = s.stocksPerSector
		}
		return quotas
	}

	total := 0
	names := make([]string, 0, len(bySector))
	for sector, group := range bySector {
		total += len(group)
		names = append(names, sector)
	}
	// Largest sector first, name as a deterministic tie-break.
	sort.Slice(names, func(i, j int) bool {
		if len(bySector[names[i]]) != len(bySector[names[j]]) {
			return len(bySector[names[i]]) > len(bySector[names[j]])
		}
		return names[i] < names[j]
	})

	topN := s.filters.TopN
	if topN <= 0 || topN > total {
		topN = total
	}
	allocated := 0
	for _, sector := range names {
		q := int(math.Round(float64(len(bySector[sector])) / float64(total) * float64(topN)))
		quotas[sector] = q
		allocated += q
	}
	quotas[names[0]] += topN - allocated
	if quotas[names[0]] < 0 {
		quotas[names[0]] = 0
	}
	return quotas
}

func sortCandidates(candidates []domain.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Code < candidates[j].Code
	})
}
