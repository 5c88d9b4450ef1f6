package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantfolio/quantfolio/internal/domain"
)

// Repository persists backtest results. Headline metrics land in plain
// columns for querying; the full metrics map is stored as JSON and the
// snapshot and trade logs as msgpack blobs.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "results").Logger(),
	}
}

// Save writes one result row keyed by run ID. Saving the same run ID
// twice replaces the previous row.
func (r *Repository) Save(ctx context.Context, result *BacktestResult) error {
	history, err := msgpack.Marshal(result.PortfolioHistory)
	if err != nil {
		return fmt.Errorf("encoding portfolio history: %w", err)
	}
	trades, err := msgpack.Marshal(result.TradeHistory)
	if err != nil {
		return fmt.Errorf("encoding trade history: %w", err)
	}
	metrics, err := json.Marshal(finiteMetrics(result.Metrics))
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results (
			run_id, strategy, start_date, end_date,
			initial_capital, final_value, total_return, cagr,
			sharpe_ratio, mdd, metrics_json, history_blob, trades_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.StrategyName,
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
		result.InitialCapital,
		result.FinalValue,
		result.TotalReturn,
		result.CAGR,
		result.SharpeRatio,
		result.MDD,
		string(metrics),
		history,
		trades,
	)
	if err != nil {
		return fmt.Errorf("saving result %s: %w", result.RunID, err)
	}

	r.log.Info().
		Str("run_id", result.RunID).
		Str("strategy", result.StrategyName).
		Int("snapshots", len(result.PortfolioHistory)).
		Int("trades", len(result.TradeHistory)).
		Msg("Result saved")
	return nil
}

// Get loads a single result by run ID, decoding the stored logs.
func (r *Repository) Get(ctx context.Context, runID string) (*BacktestResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, strategy, start_date, end_date,
		       initial_capital, final_value, total_return, cagr,
		       sharpe_ratio, mdd, metrics_json, history_blob, trades_blob
		FROM results WHERE run_id = ?`, runID)

	var (
		result               BacktestResult
		startDate, endDate   string
		metricsJSON          string
		historyRaw, tradeRaw []byte
	)
	err := row.Scan(
		&result.RunID, &result.StrategyName, &startDate, &endDate,
		&result.InitialCapital, &result.FinalValue, &result.TotalReturn, &result.CAGR,
		&result.SharpeRatio, &result.MDD, &metricsJSON, &historyRaw, &tradeRaw,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("result %s: %w", runID, domain.ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", runID, err)
	}

	if result.StartDate, err = time.Parse("2006-01-02", startDate); err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	if result.EndDate, err = time.Parse("2006-01-02", endDate); err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	if err := json.Unmarshal([]byte(metricsJSON), &result.Metrics); err != nil {
		return nil, fmt.Errorf("decoding metrics: %w", err)
	}
	if err := msgpack.Unmarshal(historyRaw, &result.PortfolioHistory); err != nil {
		return nil, fmt.Errorf("decoding portfolio history: %w", err)
	}
	if err := msgpack.Unmarshal(tradeRaw, &result.TradeHistory); err != nil {
		return nil, fmt.Errorf("decoding trade history: %w", err)
	}

	result.SortinoRatio = result.Metrics["sortino_ratio"]
	result.Volatility = result.Metrics["volatility"]
	result.WinRate = result.Metrics["win_rate"]
	result.CalmarRatio = result.Metrics["calmar_ratio"]
	return &result, nil
}

// ListSummary holds one row of the saved-results listing.
type ListSummary struct {
	RunID       string
	Strategy    string
	StartDate   string
	EndDate     string
	TotalReturn float64
	CAGR        float64
	MDD         float64
	CreatedAt   string
}

// List returns saved result summaries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]ListSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, strategy, start_date, end_date,
		       total_return, cagr, mdd, created_at
		FROM results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var out []ListSummary
	for rows.Next() {
		var s ListSummary
		if err := rows.Scan(&s.RunID, &s.Strategy, &s.StartDate, &s.EndDate,
			&s.TotalReturn, &s.CAGR, &s.MDD, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// finiteMetrics replaces non-finite ratio values with nulls so the map
// survives JSON encoding. Infinities are a legal metric output when a
// run has no drawdown or no downside deviation.
func finiteMetrics(metrics map[string]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(metrics))
	for k, v := range metrics {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}
