package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	nan := math.NaN()

	t.Run("ascending gives smallest rank one", func(t *testing.T) {
		got := Rank([]float64{30, 10, 20}, true)
		assert.Equal(t, []float64{3, 1, 2}, got)
	})

	t.Run("descending gives largest rank one", func(t *testing.T) {
		got := Rank([]float64{30, 10, 20}, false)
		assert.Equal(t, []float64{1, 3, 2}, got)
	})

	t.Run("ties share the lowest rank", func(t *testing.T) {
		got := Rank([]float64{10, 20, 20, 30}, true)
		assert.Equal(t, []float64{1, 2, 2, 4}, got)
	})

	t.Run("nan stays nan and is skipped", func(t *testing.T) {
		got := Rank([]float64{30, nan, 10}, true)
		assert.Equal(t, 2.0, got[0])
		assert.True(t, math.IsNaN(got[1]))
		assert.Equal(t, 1.0, got[2])
	})
}

func TestZScore(t *testing.T) {
	t.Run("standardizes to zero mean", func(t *testing.T) {
		got := ZScore([]float64{1, 2, 3, 4, 5})
		sum := 0.0
		for _, v := range got {
			sum += v
		}
		assert.InDelta(t, 0, sum, 1e-12)
		assert.Negative(t, got[0])
		assert.Positive(t, got[4])
	})

	t.Run("degenerate spread maps to zero", func(t *testing.T) {
		got := ZScore([]float64{5, 5, 5})
		assert.Equal(t, []float64{0, 0, 0}, got)
	})

	t.Run("nan is preserved", func(t *testing.T) {
		got := ZScore([]float64{1, math.NaN(), 3})
		assert.True(t, math.IsNaN(got[1]))
		assert.False(t, math.IsNaN(got[0]))
	})
}

func TestZScoreRank_Direction(t *testing.T) {
	values := []float64{10, 20, 30}

	t.Run("higher is better", func(t *testing.T) {
		got := ZScoreRank(values, false)
		assert.Greater(t, got[2], got[1])
		assert.Greater(t, got[1], got[0])
	})

	t.Run("lower is better", func(t *testing.T) {
		got := ZScoreRank(values, true)
		assert.Greater(t, got[0], got[1])
		assert.Greater(t, got[1], got[2])
	})
}

func TestSectorZScoreRank(t *testing.T) {
	values := []float64{1, 2, 3, 10}
	sectors := []string{"A", "A", "B", "B"}

	got := SectorZScoreRank(values, sectors, false)

	t.Run("better within a sector scores higher", func(t *testing.T) {
		assert.Greater(t, got[1], got[0])
		assert.Greater(t, got[3], got[2])
	})

	t.Run("scores are relative to sector peers", func(t *testing.T) {
		// Each sector standardizes independently, so the winner of a
		// weak sector scores the same as the winner of a strong one.
		assert.InDelta(t, got[1], got[3], 1e-12)
		assert.InDelta(t, got[0], got[2], 1e-12)
	})

	t.Run("nan stays nan inside its sector", func(t *testing.T) {
		got := SectorZScoreRank([]float64{1, math.NaN(), 2}, []string{"A", "A", "A"}, false)
		assert.True(t, math.IsNaN(got[1]))
		assert.Greater(t, got[2], got[0])
	})
}

func TestWinsorize(t *testing.T) {
	values := make([]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		values = append(values, float64(i))
	}
	values[0] = -1e9
	values[100] = 1e9

	got := Winsorize(values, winsorizeLower, winsorizeUpper)

	assert.Greater(t, got[0], -1e9)
	assert.Less(t, got[100], 1e9)
	// Interior values are untouched.
	assert.Equal(t, 50.0, got[50])
}

func TestCombineFactors(t *testing.T) {
	t.Run("equal weights by default", func(t *testing.T) {
		a := []float64{1, 2, 3}
		b := []float64{3, 2, 1}
		got := CombineFactors([][]float64{a, b}, []bool{false, false}, nil)
		require.Len(t, got, 3)
		// Opposite rankings cancel out.
		for _, v := range got {
			assert.InDelta(t, 0, v, 1e-12)
		}
	})

	t.Run("missing factor makes the entry unscorable", func(t *testing.T) {
		a := []float64{1, math.NaN(), 3}
		b := []float64{3, 2, 1}
		got := CombineFactors([][]float64{a, b}, []bool{false, false}, nil)
		assert.True(t, math.IsNaN(got[1]))
		assert.False(t, math.IsNaN(got[0]))
	})

	t.Run("weights shift the blend", func(t *testing.T) {
		a := []float64{1, 2, 3}
		b := []float64{3, 2, 1}
		got := CombineFactors([][]float64{a, b}, []bool{false, false}, []float64{1, 0})
		assert.Greater(t, got[2], got[0])
	})
}
