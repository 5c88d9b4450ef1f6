package formulas

import (
	"math"
	"time"
)

// Point is a single dated observation in a value series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an ordered sequence of dated observations. Dates are
// expected to be strictly increasing; operations that combine two
// series align them by date (inner join) so gaps in either series are
// dropped rather than silently compared.
type Series []Point

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s)
}

// First returns the first observation, or a zero Point for an empty series.
func (s Series) First() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[0]
}

// Last returns the last observation, or a zero Point for an empty series.
func (s Series) Last() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[len(s)-1]
}

// Values returns the raw values in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// HasDates reports whether the series carries real date semantics.
// A series built from an undated sequence has zero timestamps.
func (s Series) HasDates() bool {
	return len(s) > 0 && !s[0].Date.IsZero()
}

// CalendarYears returns the calendar-day span of the series divided by
// 365. Zero when the series has fewer than two observations or no date
// semantics.
func (s Series) CalendarYears() float64 {
	if len(s) < 2 || !s.HasDates() {
		return 0
	}
	days := s[len(s)-1].Date.Sub(s[0].Date).Hours() / 24
	return days / 365
}

// PctChange returns the period-over-period percentage change series.
// The first observation is dropped (undefined change), and observations
// with a zero or NaN base value are dropped rather than propagated.
// Each change keeps the date of the later observation.
func (s Series) PctChange() Series {
	if len(s) < 2 {
		return Series{}
	}

	out := make(Series, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Value
		cur := s[i].Value
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		out = append(out, Point{Date: s[i].Date, Value: (cur - prev) / prev})
	}
	return out
}

// Align inner-joins two series on date and returns the paired values.
// Both inputs must be date-ordered. Observations present in only one
// series are dropped.
func (s Series) Align(other Series) ([]float64, []float64) {
	a := make([]float64, 0, len(s))
	b := make([]float64, 0, len(other))

	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i].Date.Before(other[j].Date):
			i++
		case other[j].Date.Before(s[i].Date):
			j++
		default:
			a = append(a, s[i].Value)
			b = append(b, other[j].Value)
			i++
			j++
		}
	}
	return a, b
}

// MonthlyLast resamples the series to one observation per calendar
// month, keeping the last observation in each month.
func (s Series) MonthlyLast() Series {
	return s.resampleLast(func(t time.Time) [2]int {
		return [2]int{t.Year(), int(t.Month())}
	})
}

// YearlyLast resamples the series to one observation per calendar year,
// keeping the last observation in each year.
func (s Series) YearlyLast() Series {
	return s.resampleLast(func(t time.Time) [2]int {
		return [2]int{t.Year(), 0}
	})
}

func (s Series) resampleLast(bucket func(time.Time) [2]int) Series {
	if len(s) == 0 {
		return Series{}
	}

	out := make(Series, 0)
	current := bucket(s[0].Date)
	last := s[0]

	for _, p := range s[1:] {
		key := bucket(p.Date)
		if key != current {
			out = append(out, last)
			current = key
		}
		last = p
	}
	out = append(out, last)
	return out
}
