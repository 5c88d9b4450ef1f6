package formulas

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestSeriesPctChange(t *testing.T) {
	s := Series{
		{Date: day(2024, 1, 1), Value: 100},
		{Date: day(2024, 1, 2), Value: 110},
		{Date: day(2024, 1, 3), Value: 99},
	}

	changes := s.PctChange()
	require.Len(t, changes, 2)
	assert.InDelta(t, 0.10, changes[0].Value, 1e-9)
	assert.Equal(t, day(2024, 1, 2), changes[0].Date)
	assert.InDelta(t, -0.10, changes[1].Value, 1e-9)
}

func TestSeriesPctChangeDropsBadObservations(t *testing.T) {
	s := Series{
		{Date: day(2024, 1, 1), Value: 100},
		{Date: day(2024, 1, 2), Value: 0},
		{Date: day(2024, 1, 3), Value: 105},
		{Date: day(2024, 1, 4), Value: math.NaN()},
		{Date: day(2024, 1, 5), Value: 108},
	}

	changes := s.PctChange()
	// 0-base and NaN observations are dropped, never propagated
	require.Len(t, changes, 2)
	for _, p := range changes {
		assert.False(t, math.IsNaN(p.Value))
		assert.False(t, math.IsInf(p.Value, 0))
	}
}

func TestSeriesAlign(t *testing.T) {
	a := Series{
		{Date: day(2024, 1, 1), Value: 1},
		{Date: day(2024, 1, 2), Value: 2},
		{Date: day(2024, 1, 4), Value: 4},
	}
	b := Series{
		{Date: day(2024, 1, 2), Value: 20},
		{Date: day(2024, 1, 3), Value: 30},
		{Date: day(2024, 1, 4), Value: 40},
	}

	av, bv := a.Align(b)
	assert.Equal(t, []float64{2, 4}, av)
	assert.Equal(t, []float64{20, 40}, bv)
}

func TestSeriesResample(t *testing.T) {
	s := Series{
		{Date: day(2024, 1, 10), Value: 1},
		{Date: day(2024, 1, 31), Value: 2},
		{Date: day(2024, 2, 15), Value: 3},
		{Date: day(2024, 2, 28), Value: 4},
		{Date: day(2025, 1, 5), Value: 5},
	}

	monthly := s.MonthlyLast()
	require.Len(t, monthly, 3)
	assert.Equal(t, 2.0, monthly[0].Value)
	assert.Equal(t, 4.0, monthly[1].Value)
	assert.Equal(t, 5.0, monthly[2].Value)

	yearly := s.YearlyLast()
	require.Len(t, yearly, 2)
	assert.Equal(t, 4.0, yearly[0].Value)
	assert.Equal(t, 5.0, yearly[1].Value)
}

func TestSeriesCalendarYears(t *testing.T) {
	s := Series{
		{Date: day(2020, 1, 1), Value: 100},
		{Date: day(2022, 1, 1), Value: 120},
	}
	assert.InDelta(t, 2.0, s.CalendarYears(), 0.01)

	undated := Series{{Value: 1}, {Value: 2}}
	assert.Equal(t, 0.0, undated.CalendarYears())
	assert.False(t, undated.HasDates())
}

func TestSeriesEmpty(t *testing.T) {
	var s Series
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, Point{}, s.First())
	assert.Equal(t, Point{}, s.Last())
	assert.Empty(t, s.PctChange())
	assert.Empty(t, s.MonthlyLast())
}
