// Package scoring implements the stock selection strategies: factor
// computation, cross-sectional ranking and the top-N selection
// pipeline behind the domain.StockSelector interface.
package scoring

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Winsorization bounds applied to every factor before ranking.
const (
	winsorizeLower = 0.01
	winsorizeUpper = 0.99
)

// Winsorize clamps values to the empirical quantiles at the given
// percentiles. NaN entries are ignored for the bounds and stay NaN.
func Winsorize(values []float64, lower, upper float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	out := append([]float64(nil), values...)
	if len(finite) == 0 {
		return out
	}
	sort.Float64s(finite)
	lo := stat.Quantile(lower, stat.LinInterp, finite, nil)
	hi := stat.Quantile(upper, stat.LinInterp, finite, nil)

	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			out[i] = lo
		} else if v > hi {
			out[i] = hi
		}
	}
	return out
}

// Rank assigns competition ranks starting at 1. With ascending true the
// smallest value ranks first; ties share the lowest rank of the group.
// NaN entries keep NaN.
func Rank(values []float64, ascending bool) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	sort.Float64s(finite)

	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if ascending {
			// Count of strictly smaller values.
			out[i] = float64(sort.SearchFloat64s(finite, v)) + 1
		} else {
			// Count of strictly larger values.
			upper := sort.Search(len(finite), func(j int) bool { return finite[j] > v })
			out[i] = float64(len(finite)-upper) + 1
		}
	}
	return out
}

// ZScore standardizes the values to zero mean and unit sample standard
// deviation over the non-NaN entries. A degenerate spread maps every
// non-NaN entry to zero.
func ZScore(values []float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	out := make([]float64, len(values))
	if len(finite) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	mean, std := stat.MeanStdDev(finite, nil)
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case std == 0 || math.IsNaN(std):
			out[i] = 0
		default:
			out[i] = (v - mean) / std
		}
	}
	return out
}

// ZScoreRank standardizes the cross-sectional rank of each value so
// that a better value always yields a higher score, regardless of the
// factor's direction.
func ZScoreRank(values []float64, lowerIsBetter bool) []float64 {
	return ZScore(Rank(values, !lowerIsBetter))
}

// SectorZScoreRank standardizes ranks separately within each sector,
// so scores measure relative strength against sector peers instead of
// the whole universe. Entries keep their input positions.
func SectorZScoreRank(values []float64, sectors []string, lowerIsBetter bool) []float64 {
	groups := make(map[string][]int)
	for i := range values {
		groups[sectors[i]] = append(groups[sectors[i]], i)
	}

	out := make([]float64, len(values))
	for _, idx := range groups {
		sub := make([]float64, len(idx))
		for j, i := range idx {
			sub[j] = values[i]
		}
		z := ZScoreRank(sub, lowerIsBetter)
		for j, i := range idx {
			out[i] = z[j]
		}
	}
	return out
}

// CombineFactors blends several factors into one score per entry as
// the weighted sum of standardized ranks. A nil weights slice means
// equal weights. An entry missing any factor gets a NaN score.
func CombineFactors(factors [][]float64, lowerIsBetter []bool, weights []float64) []float64 {
	if len(factors) == 0 {
		return nil
	}
	if weights == nil {
		weights = make([]float64, len(factors))
		for i := range weights {
			weights[i] = 1 / float64(len(factors))
		}
	}

	n := len(factors[0])
	out := make([]float64, n)
	for f := range factors {
		z := ZScoreRank(factors[f], lowerIsBetter[f])
		for i := 0; i < n; i++ {
			out[i] += z[i] * weights[f]
		}
	}
	return out
}
