package formulas

import (
	"math"
)

// TotalReturn calculates the simple return between an initial and final
// value. Returns 0 when the initial value is non-positive.
func TotalReturn(initialValue, finalValue float64) float64 {
	if initialValue <= 0 {
		return 0
	}
	return (finalValue - initialValue) / initialValue
}

// CAGR calculates the compound annual growth rate over the given number
// of years.
//
//	CAGR = (final/initial)^(1/years) - 1
//
// Returns 0 when the initial value or the period is non-positive, and
// -1 when the final value is non-positive (total loss).
func CAGR(initialValue, finalValue, years float64) float64 {
	if initialValue <= 0 || years <= 0 {
		return 0
	}
	if finalValue <= 0 {
		return -1
	}
	return math.Pow(finalValue/initialValue, 1/years) - 1
}

// Volatility calculates the standard deviation of periodic returns,
// annualized by sqrt(periodsPerYear) when requested. Returns 0 with
// fewer than two observations.
func Volatility(returns []float64, annualize bool, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	vol := StdDev(returns)
	if annualize {
		vol *= math.Sqrt(float64(periodsPerYear))
	}
	return vol
}

// SharpeRatio calculates the annualized Sharpe ratio from periodic
// returns and an annual risk-free rate.
//
//	Sharpe = mean(excess) / std(excess) × sqrt(periodsPerYear)
//
// Returns 0 with fewer than two observations or zero excess-return
// variance.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := excessReturns(returns, riskFreeRate, periodsPerYear)
	sd := StdDev(excess)
	if sd == 0 {
		return 0
	}

	return Mean(excess) / sd * math.Sqrt(float64(periodsPerYear))
}

// SortinoRatio calculates the annualized Sortino ratio, which penalizes
// only downside volatility. When there are no negative excess returns
// (or their deviation is zero) the ratio is +Inf for a positive mean
// excess return and 0 otherwise.
func SortinoRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := excessReturns(returns, riskFreeRate, periodsPerYear)

	downside := make([]float64, 0, len(excess))
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	downsideStd := StdDev(downside)
	if len(downside) == 0 || downsideStd == 0 {
		if Mean(excess) > 0 {
			return math.Inf(1)
		}
		return 0
	}

	return Mean(excess) / downsideStd * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown calculates the maximum peak-to-trough decline of a value
// series, as a positive fraction (0.3 = 30% below the peak). Returns 0
// with fewer than two observations.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	worst := 0.0
	for _, dd := range Drawdowns(values) {
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// Drawdowns calculates the full running-max drawdown series. Each entry
// is (value - runningMax) / runningMax, so entries are zero at new highs
// and negative below them.
func Drawdowns(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak
		}
	}
	return out
}

// CalmarRatio calculates CAGR divided by maximum drawdown. When the
// drawdown is zero the ratio is +Inf for a positive CAGR and 0
// otherwise.
func CalmarRatio(cagr, mdd float64) float64 {
	if mdd == 0 {
		if cagr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return cagr / mdd
}

// WinRate calculates the share of strictly positive returns. Returns 0
// on empty input.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// ProfitLossRatio calculates the mean profit divided by the absolute
// mean loss. +Inf when there are profits but no losses, 0 when there
// are neither.
func ProfitLossRatio(returns []float64) float64 {
	var profits, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			profits = append(profits, r)
		case r < 0:
			losses = append(losses, r)
		}
	}

	if len(losses) == 0 || Mean(losses) == 0 {
		if len(profits) > 0 {
			return math.Inf(1)
		}
		return 0
	}

	return Mean(profits) / math.Abs(Mean(losses))
}

// Beta calculates the portfolio beta against a benchmark from aligned
// return series. Returns the neutral sentinel 1 with fewer than two
// aligned observations or zero benchmark variance.
func Beta(portReturns, benchReturns []float64) float64 {
	if len(portReturns) < 2 || len(portReturns) != len(benchReturns) {
		return 1
	}

	variance := Variance(benchReturns)
	if variance == 0 {
		return 1
	}

	return Covariance(portReturns, benchReturns) / variance
}

// Alpha calculates the annualized Jensen's alpha against a benchmark
// from aligned return series.
//
//	alpha = (mean(port) - (rf + beta × (mean(bench) - rf))) × periodsPerYear
func Alpha(portReturns, benchReturns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(portReturns) < 2 || len(portReturns) != len(benchReturns) {
		return 0
	}

	periodicRF := riskFreeRate / float64(periodsPerYear)
	beta := Beta(portReturns, benchReturns)

	expected := periodicRF + beta*(Mean(benchReturns)-periodicRF)
	return (Mean(portReturns) - expected) * float64(periodsPerYear)
}

// InformationRatio calculates the annualized information ratio (active
// return over tracking error) from aligned return series. Returns 0
// with fewer than two aligned observations or zero tracking error.
func InformationRatio(portReturns, benchReturns []float64, periodsPerYear int) float64 {
	if len(portReturns) < 2 || len(portReturns) != len(benchReturns) {
		return 0
	}

	active := make([]float64, len(portReturns))
	for i := range portReturns {
		active[i] = portReturns[i] - benchReturns[i]
	}

	sd := StdDev(active)
	if sd == 0 {
		return 0
	}

	return Mean(active) / sd * math.Sqrt(float64(periodsPerYear))
}

// CalculateAll computes the full metric set for a portfolio value
// series. Benchmark-relative entries (beta, alpha, information_ratio,
// benchmark_return, excess_return) are included only when a benchmark
// value series is supplied.
//
// The investment horizon in years is the calendar-day span of the
// series divided by 365; a series without date semantics falls back to
// observation count divided by periodsPerYear.
func CalculateAll(values Series, benchmark Series, riskFreeRate float64, periodsPerYear int) map[string]float64 {
	returns := values.PctChange()
	returnValues := returns.Values()

	years := values.CalendarYears()
	if years == 0 && !values.HasDates() {
		years = float64(values.Len()) / float64(periodsPerYear)
	}

	initial := values.First().Value
	final := values.Last().Value

	metrics := map[string]float64{
		"initial_value":     initial,
		"final_value":       final,
		"total_return":      TotalReturn(initial, final),
		"cagr":              CAGR(initial, final, years),
		"volatility":        Volatility(returnValues, true, periodsPerYear),
		"sharpe_ratio":      SharpeRatio(returnValues, riskFreeRate, periodsPerYear),
		"sortino_ratio":     SortinoRatio(returnValues, riskFreeRate, periodsPerYear),
		"mdd":               MaxDrawdown(values.Values()),
		"win_rate":          WinRate(returnValues),
		"profit_loss_ratio": ProfitLossRatio(returnValues),
		"years":             years,
	}
	metrics["calmar_ratio"] = CalmarRatio(metrics["cagr"], metrics["mdd"])

	if benchmark.Len() > 0 {
		benchReturns := benchmark.PctChange()
		port, bench := returns.Align(benchReturns)

		metrics["beta"] = Beta(port, bench)
		metrics["alpha"] = Alpha(port, bench, riskFreeRate, periodsPerYear)
		metrics["information_ratio"] = InformationRatio(port, bench, periodsPerYear)
		metrics["benchmark_return"] = TotalReturn(benchmark.First().Value, benchmark.Last().Value)
		metrics["excess_return"] = metrics["total_return"] - metrics["benchmark_return"]
	}

	return metrics
}

// excessReturns subtracts the periodic risk-free rate from each return.
func excessReturns(returns []float64, riskFreeRate float64, periodsPerYear int) []float64 {
	periodicRF := riskFreeRate / float64(periodsPerYear)
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - periodicRF
	}
	return out
}
