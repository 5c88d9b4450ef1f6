// Package report assembles simulation output into an immutable
// BacktestResult and provides derived, recomputable views over it.
package report

import (
	"time"

	"github.com/quantfolio/quantfolio/internal/domain"
	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// BacktestResult is the immutable aggregate produced by one simulation
// run. It is created exactly once, at the end of the run, from the
// accumulated snapshot and trade logs plus the computed metrics.
type BacktestResult struct {
	RunID          string    `json:"run_id"`
	StrategyName   string    `json:"strategy_name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialCapital float64   `json:"initial_capital"`
	FinalValue     float64   `json:"final_value"`

	TotalReturn  float64 `json:"total_return"`
	CAGR         float64 `json:"cagr"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	MDD          float64 `json:"mdd"`
	Volatility   float64 `json:"volatility"`
	WinRate      float64 `json:"win_rate"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	PortfolioHistory []domain.PortfolioSnapshot `json:"portfolio_history"`
	TradeHistory     []domain.TradeRecord       `json:"trade_history"`
	Metrics          map[string]float64         `json:"metrics"`
}

// AssembleInput carries everything the assembler needs from one run.
type AssembleInput struct {
	RunID          string
	StrategyName   string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64

	Snapshots []domain.PortfolioSnapshot
	Trades    []domain.TradeRecord
	Benchmark formulas.Series

	RiskFreeRate       float64
	TradingDaysPerYear int
}

// Assemble freezes the simulation logs and metric output into a
// BacktestResult. The logs are stored as-is; headline metrics are
// lifted out of the metrics map for direct access.
func Assemble(in AssembleInput) *BacktestResult {
	values := valueSeries(in.Snapshots)
	metrics := formulas.CalculateAll(values, in.Benchmark, in.RiskFreeRate, in.TradingDaysPerYear)

	return &BacktestResult{
		RunID:          in.RunID,
		StrategyName:   in.StrategyName,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		InitialCapital: in.InitialCapital,
		FinalValue:     metrics["final_value"],

		TotalReturn:  metrics["total_return"],
		CAGR:         metrics["cagr"],
		SharpeRatio:  metrics["sharpe_ratio"],
		SortinoRatio: metrics["sortino_ratio"],
		MDD:          metrics["mdd"],
		Volatility:   metrics["volatility"],
		WinRate:      metrics["win_rate"],
		CalmarRatio:  metrics["calmar_ratio"],

		PortfolioHistory: in.Snapshots,
		TradeHistory:     in.Trades,
		Metrics:          metrics,
	}
}

// ValueSeries returns the stored total-value series as an ordered
// (date, value) sequence.
func (r *BacktestResult) ValueSeries() formulas.Series {
	return valueSeries(r.PortfolioHistory)
}

// MonthlyReturns resamples the stored value series to one observation
// per month (last trading day) and returns the month-over-month
// percentage changes, first observation dropped.
func (r *BacktestResult) MonthlyReturns() formulas.Series {
	return r.ValueSeries().MonthlyLast().PctChange()
}

// YearlyReturns resamples the stored value series to one observation
// per year (last trading day) and returns the year-over-year percentage
// changes, first observation dropped.
func (r *BacktestResult) YearlyReturns() formulas.Series {
	return r.ValueSeries().YearlyLast().PctChange()
}

// DrawdownSeries recomputes the running-max drawdown series from the
// stored value series. Given identical input this reproduces the series
// consumed by the MDD metric at assembly time.
func (r *BacktestResult) DrawdownSeries() formulas.Series {
	values := r.ValueSeries()
	drawdowns := formulas.Drawdowns(values.Values())

	out := make(formulas.Series, len(values))
	for i, p := range values {
		out[i] = formulas.Point{Date: p.Date, Value: drawdowns[i]}
	}
	return out
}

// ToMap flattens the result into a single map for structured report
// consumers. Only fields already present on the result are exposed;
// nothing is recomputed from simulation state.
func (r *BacktestResult) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"run_id":          r.RunID,
		"strategy_name":   r.StrategyName,
		"start_date":      r.StartDate.Format("2006-01-02"),
		"end_date":        r.EndDate.Format("2006-01-02"),
		"initial_capital": r.InitialCapital,
		"final_value":     r.FinalValue,
		"total_return":    r.TotalReturn,
		"cagr":            r.CAGR,
		"sharpe_ratio":    r.SharpeRatio,
		"sortino_ratio":   r.SortinoRatio,
		"mdd":             r.MDD,
		"volatility":      r.Volatility,
		"win_rate":        r.WinRate,
		"calmar_ratio":    r.CalmarRatio,
	}
	for k, v := range r.Metrics {
		out[k] = v
	}
	return out
}

func valueSeries(snapshots []domain.PortfolioSnapshot) formulas.Series {
	series := make(formulas.Series, len(snapshots))
	for i, s := range snapshots {
		series[i] = formulas.Point{Date: s.Date, Value: s.TotalValue}
	}
	return series
}
