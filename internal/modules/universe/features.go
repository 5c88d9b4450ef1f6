package universe

import (
	"time"

	"github.com/markcheno/go-talib"

	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// Momentum lookbacks in trading days.
const (
	momentum3MDays  = 63
	momentum6MDays  = 126
	momentum12MDays = 252

	// minMomentumObservations is the minimum history length before any
	// momentum feature is computed. Recently listed securities stay
	// without momentum until they accumulate a month of closes.
	minMomentumObservations = 21

	// momentumWindowCalendarDays is the trailing window of price
	// history loaded per security, wide enough for the 12 month
	// lookback plus market holidays.
	momentumWindowCalendarDays = 400
)

// MomentumFeatures holds rate-of-change returns over the standard
// lookbacks. A nil field means insufficient history for that lookback.
type MomentumFeatures struct {
	M3  *float64
	M6  *float64
	M12 *float64
}

// ComputeMomentum derives momentum features from a close series. The
// series must be in ascending date order.
func ComputeMomentum(closes formulas.Series) MomentumFeatures {
	values := closes.Values()
	if len(values) < minMomentumObservations {
		return MomentumFeatures{}
	}
	return MomentumFeatures{
		M3:  rocAt(values, momentum3MDays),
		M6:  rocAt(values, momentum6MDays),
		M12: rocAt(values, momentum12MDays),
	}
}

// rocAt returns the latest rate of change over the period as a
// fraction, or nil when the series is shorter than the lookback.
func rocAt(values []float64, period int) *float64 {
	if len(values) <= period {
		return nil
	}
	roc := talib.Roc(values, period)
	last := roc[len(roc)-1] / 100
	return &last
}

// momentumWindowStart returns the start of the trailing price window
// used to compute momentum as of a date.
func momentumWindowStart(date time.Time) time.Time {
	return date.AddDate(0, 0, -momentumWindowCalendarDays)
}
