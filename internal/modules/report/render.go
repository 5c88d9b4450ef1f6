package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// Summary renders the headline metrics as a fixed-width text block
// suitable for terminal output.
func (r *BacktestResult) Summary() string {
	var b strings.Builder

	line := strings.Repeat("=", 52)
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, " Backtest Result: %s\n", r.StrategyName)
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, " Period          %s ~ %s\n", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, " Initial Capital %18.0f\n", r.InitialCapital)
	fmt.Fprintf(&b, " Final Value     %18.0f\n", r.FinalValue)
	fmt.Fprintln(&b, strings.Repeat("-", 52))
	fmt.Fprintf(&b, " Total Return    %17.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(&b, " CAGR            %17.2f%%\n", r.CAGR*100)
	fmt.Fprintf(&b, " Volatility      %17.2f%%\n", r.Volatility*100)
	fmt.Fprintf(&b, " Sharpe Ratio    %18.2f\n", r.SharpeRatio)
	fmt.Fprintf(&b, " Sortino Ratio   %18s\n", formatRatio(r.SortinoRatio))
	fmt.Fprintf(&b, " Max Drawdown    %17.2f%%\n", r.MDD*100)
	fmt.Fprintf(&b, " Calmar Ratio    %18s\n", formatRatio(r.CalmarRatio))
	fmt.Fprintf(&b, " Win Rate        %17.2f%%\n", r.WinRate*100)
	if benchReturn, ok := r.Metrics["benchmark_return"]; ok {
		fmt.Fprintln(&b, strings.Repeat("-", 52))
		fmt.Fprintf(&b, " Benchmark Return%17.2f%%\n", benchReturn*100)
		fmt.Fprintf(&b, " Excess Return   %17.2f%%\n", r.Metrics["excess_return"]*100)
		fmt.Fprintf(&b, " Beta            %18.2f\n", r.Metrics["beta"])
		fmt.Fprintf(&b, " Alpha           %18.2f\n", r.Metrics["alpha"])
	}
	fmt.Fprintf(&b, " Trades          %18d\n", len(r.TradeHistory))
	fmt.Fprintln(&b, line)

	return b.String()
}

// JSON marshals the flattened result map with stable formatting.
// Non-finite ratios are emitted as nulls since JSON has no encoding
// for infinity.
func (r *BacktestResult) JSON() ([]byte, error) {
	m := r.ToMap()
	for k, v := range m {
		if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
			m[k] = nil
		}
	}
	return json.MarshalIndent(m, "", "  ")
}

// Compare renders a side-by-side table of headline metrics for several
// results, one column of numbers per strategy, in input order.
func Compare(results []*BacktestResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "Strategy")
	for _, r := range results {
		fmt.Fprintf(w, "\t%s", r.StrategyName)
	}
	fmt.Fprintln(w)

	rows := []struct {
		label string
		value func(*BacktestResult) string
	}{
		{"Total Return", func(r *BacktestResult) string { return fmt.Sprintf("%.2f%%", r.TotalReturn*100) }},
		{"CAGR", func(r *BacktestResult) string { return fmt.Sprintf("%.2f%%", r.CAGR*100) }},
		{"Volatility", func(r *BacktestResult) string { return fmt.Sprintf("%.2f%%", r.Volatility*100) }},
		{"Sharpe", func(r *BacktestResult) string { return fmt.Sprintf("%.2f", r.SharpeRatio) }},
		{"MDD", func(r *BacktestResult) string { return fmt.Sprintf("%.2f%%", r.MDD*100) }},
		{"Win Rate", func(r *BacktestResult) string { return fmt.Sprintf("%.2f%%", r.WinRate*100) }},
		{"Final Value", func(r *BacktestResult) string { return fmt.Sprintf("%.0f", r.FinalValue) }},
	}
	for _, row := range rows {
		fmt.Fprint(w, row.label)
		for _, r := range results {
			fmt.Fprintf(w, "\t%s", row.value(r))
		}
		fmt.Fprintln(w)
	}

	w.Flush()
	return b.String()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
