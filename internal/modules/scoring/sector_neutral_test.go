package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/domain"
	testutil "github.com/quantfolio/quantfolio/internal/testing"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

func sectorStock(code, sector string, momentum float64) domain.StockData {
	return stock(code, func(s *domain.StockData) {
		s.Sector = sector
		s.Momentum12M = testutil.F(momentum)
	})
}

func TestSectorNeutral_Select(t *testing.T) {
	// A plain momentum top three would be all Technology. The sector
	// quotas keep room for the best Consumer name.
	universe := []domain.StockData{
		sectorStock("T1", "Technology", 0.90),
		sectorStock("T2", "Technology", 0.80),
		sectorStock("T3", "Technology", 0.70),
		sectorStock("T4", "Technology", 0.60),
		sectorStock("C1", "Consumer", 0.10),
		sectorStock("C2", "Consumer", 0.05),
	}

	sel := NewSectorNeutral(Filters{TopN: 3}, logger.Nop())
	assert.Equal(t, "sector_neutral", sel.Name())

	candidates, err := sel.Select(universe)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Technology holds four of six names, so it gets two slots and
	// Consumer gets one. The sector winners outrank the runner-up.
	assert.Equal(t, "T1", candidates[0].Code)
	assert.Equal(t, "C1", candidates[1].Code)
	assert.Equal(t, "T2", candidates[2].Code)
}

func TestSectorNeutral_FixedStocksPerSector(t *testing.T) {
	universe := []domain.StockData{
		sectorStock("T1", "Technology", 0.90),
		sectorStock("T2", "Technology", 0.80),
		sectorStock("T3", "Technology", 0.70),
		sectorStock("C1", "Consumer", 0.10),
		sectorStock("C2", "Consumer", 0.05),
	}

	sel := &sectorNeutral{
		filters:         Filters{TopN: 10},
		stocksPerSector: 1,
		factor:          func(s domain.StockData) *float64 { return s.Momentum12M },
		log:             logger.Nop(),
	}

	candidates, err := sel.Select(universe)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "T1", candidates[0].Code)
	assert.Equal(t, "C1", candidates[1].Code)
}

func TestSectorNeutral_MissingFactorIsUnscorable(t *testing.T) {
	universe := []domain.StockData{
		sectorStock("T1", "Technology", 0.30),
		sectorStock("T2", "Technology", 0.20),
		// No twelve-month history.
		stock("T3", func(s *domain.StockData) {}),
	}

	sel := NewSectorNeutral(Filters{TopN: 3}, logger.Nop())
	candidates, err := sel.Select(universe)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "T1", candidates[0].Code)
	assert.Equal(t, "T2", candidates[1].Code)
}

func TestSectorNeutral_Quotas(t *testing.T) {
	group := func(n int) []domain.Candidate { return make([]domain.Candidate, n) }

	t.Run("proportional with remainder to largest sector", func(t *testing.T) {
		s := &sectorNeutral{filters: Filters{TopN: 10}}
		quotas := s.sectorQuotas(map[string][]domain.Candidate{
			"A": group(3), "B": group(3), "C": group(3),
		})
		// Each sector rounds to three; the leftover slot goes to the
		// first sector in the deterministic order.
		assert.Equal(t, map[string]int{"A": 4, "B": 3, "C": 3}, quotas)
	})

	t.Run("top n above universe size selects everything", func(t *testing.T) {
		s := &sectorNeutral{filters: Filters{TopN: 50}}
		quotas := s.sectorQuotas(map[string][]domain.Candidate{
			"A": group(2), "B": group(4),
		})
		assert.Equal(t, map[string]int{"A": 2, "B": 4}, quotas)
	})

	t.Run("fixed count overrides proportional split", func(t *testing.T) {
		s := &sectorNeutral{filters: Filters{TopN: 10}, stocksPerSector: 2}
		quotas := s.sectorQuotas(map[string][]domain.Candidate{
			"A": group(5), "B": group(1),
		})
		assert.Equal(t, map[string]int{"A": 2, "B": 2}, quotas)
	})
}
