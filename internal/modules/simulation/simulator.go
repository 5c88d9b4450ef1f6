package simulation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/domain"
	"github.com/quantfolio/quantfolio/internal/modules/report"
	"github.com/quantfolio/quantfolio/pkg/formulas"
)

// Period is the rebalancing cadence of a simulation.
type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ParsePeriod validates a period string from configuration or flags.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("rebalance period %q: %w", s, domain.ErrInvalidConfig)
	}
}

// State tracks the lifecycle of a simulator. A simulator runs exactly
// once; construct a new one for each run.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Options configures one simulation run.
type Options struct {
	StartDate       time.Time
	EndDate         time.Time
	InitialCapital  float64
	RebalancePeriod Period
	Slippage        float64
	Commission      float64
	CashBuffer      float64
	BenchmarkCode   string

	RiskFreeRate       float64
	TradingDaysPerYear int
}

func (o Options) Validate() error {
	if o.StartDate.IsZero() || o.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required: %w", domain.ErrInvalidConfig)
	}
	if o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("end date before start date: %w", domain.ErrInvalidConfig)
	}
	if o.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive: %w", domain.ErrInvalidConfig)
	}
	if _, err := ParsePeriod(string(o.RebalancePeriod)); err != nil {
		return err
	}
	if o.Slippage < 0 || o.Commission < 0 {
		return fmt.Errorf("slippage and commission must be non-negative: %w", domain.ErrInvalidConfig)
	}
	if o.CashBuffer < 0 || o.CashBuffer >= 1 {
		return fmt.Errorf("cash buffer must be in [0, 1): %w", domain.ErrInvalidConfig)
	}
	if o.TradingDaysPerYear <= 0 {
		return fmt.Errorf("trading days per year must be positive: %w", domain.ErrInvalidConfig)
	}
	return nil
}

// Simulator executes one backtest: walk the trading calendar, rebalance
// on period boundaries, mark the portfolio to market daily and record
// one snapshot per trading day.
type Simulator struct {
	opts      Options
	selector  domain.StockSelector
	provider  domain.DataProvider
	execution ExecutionModel

	portfolio *domain.Portfolio
	snapshots []domain.PortfolioSnapshot
	trades    []domain.TradeRecord
	state     State
	runID     string

	log zerolog.Logger
}

func New(selector domain.StockSelector, provider domain.DataProvider, opts Options, log zerolog.Logger) (*Simulator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		opts:      opts,
		selector:  selector,
		provider:  provider,
		execution: ExecutionModel{Slippage: opts.Slippage, Commission: opts.Commission},
		portfolio: domain.NewPortfolio(opts.InitialCapital),
		state:     StateNotStarted,
		runID:     uuid.NewString(),
		log:       log.With().Str("service", "simulation").Logger(),
	}, nil
}

func (s *Simulator) State() State { return s.state }
func (s *Simulator) RunID() string { return s.runID }

// Run executes the simulation and assembles the result. It is an error
// to call Run more than once on the same simulator.
func (s *Simulator) Run() (*report.BacktestResult, error) {
	if s.state != StateNotStarted {
		return nil, fmt.Errorf("simulator already ran (state %s)", s.state)
	}
	s.state = StateRunning

	days, err := s.provider.TradingDays(s.opts.StartDate, s.opts.EndDate)
	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("loading trading calendar: %w", err)
	}
	if len(days) == 0 {
		s.state = StateFailed
		return nil, fmt.Errorf("no trading days between %s and %s: %w",
			s.opts.StartDate.Format("2006-01-02"), s.opts.EndDate.Format("2006-01-02"),
			domain.ErrDataUnavailable)
	}

	rebalance := rebalanceDays(days, s.opts.RebalancePeriod, s.opts.EndDate)
	s.log.Info().
		Str("run_id", s.runID).
		Str("strategy", s.selector.Name()).
		Int("trading_days", len(days)).
		Int("rebalances", len(rebalance)).
		Msg("Starting backtest")

	for _, day := range days {
		if rebalance[day] {
			if err := s.rebalance(day); err != nil {
				s.state = StateFailed
				return nil, fmt.Errorf("rebalancing on %s: %w", day.Format("2006-01-02"), err)
			}
		}
		s.markToMarket(day)
		s.snapshots = append(s.snapshots, s.portfolio.Snapshot(day))
	}

	var benchmark formulas.Series
	if s.opts.BenchmarkCode != "" {
		benchmark, err = s.provider.Prices(s.opts.BenchmarkCode, s.opts.StartDate, s.opts.EndDate)
		if err != nil {
			s.log.Warn().Err(err).
				Str("benchmark", s.opts.BenchmarkCode).
				Msg("Benchmark series unavailable, skipping relative metrics")
			benchmark = nil
		}
	}

	s.state = StateCompleted
	result := report.Assemble(report.AssembleInput{
		RunID:              s.runID,
		StrategyName:       s.selector.Name(),
		StartDate:          days[0],
		EndDate:            days[len(days)-1],
		InitialCapital:     s.opts.InitialCapital,
		Snapshots:          s.snapshots,
		Trades:             s.trades,
		Benchmark:          benchmark,
		RiskFreeRate:       s.opts.RiskFreeRate,
		TradingDaysPerYear: s.opts.TradingDaysPerYear,
	})

	s.log.Info().
		Str("run_id", s.runID).
		Float64("final_value", result.FinalValue).
		Float64("total_return", result.TotalReturn).
		Int("trades", len(s.trades)).
		Msg("Backtest completed")
	return result, nil
}

// rebalance liquidates the whole book and rebuilds it equal-weight
// from the selector's current picks. An empty universe snapshot makes
// the rebalance a no-op; an empty candidate list still liquidates and
// parks the proceeds in cash until the next rebalance.
func (s *Simulator) rebalance(date time.Time) error {
	universe, err := s.provider.UniverseSnapshot(date)
	if err != nil {
		return fmt.Errorf("fetching universe: %w", err)
	}
	if len(universe) == 0 {
		s.log.Warn().Time("date", date).Msg("Empty universe snapshot, holding current book")
		return nil
	}

	candidates, err := s.selector.Select(universe)
	if err != nil {
		return fmt.Errorf("selecting candidates: %w", err)
	}

	s.liquidate(date)

	if len(candidates) == 0 {
		s.log.Warn().Time("date", date).Msg("Selector returned no candidates, staying in cash")
		return nil
	}

	investable := s.portfolio.Cash * (1 - s.opts.CashBuffer)
	allocation := investable / float64(len(candidates))

	bought := 0
	for _, c := range candidates {
		quote, ok := s.quote(c.Code, date)
		if !ok {
			s.log.Debug().Str("code", c.Code).Time("date", date).Msg("No price for candidate, skipping")
			continue
		}
		trade, cash := s.execution.Buy(date, c.Code, allocation, s.portfolio.Cash, quote)
		if trade == nil {
			continue
		}
		s.portfolio.Cash = cash
		s.portfolio.Positions[c.Code] = &domain.Position{
			Code:         c.Code,
			Shares:       trade.Shares,
			AvgPrice:     trade.Price,
			CurrentPrice: quote,
		}
		s.trades = append(s.trades, *trade)
		bought++
	}

	s.log.Info().
		Time("date", date).
		Int("candidates", len(candidates)).
		Int("positions", bought).
		Float64("cash", s.portfolio.Cash).
		Msg("Rebalanced")
	return nil
}

// liquidate sells every held position. A position whose price cannot
// be quoted is kept and logged rather than written off.
func (s *Simulator) liquidate(date time.Time) {
	codes := make([]string, 0, len(s.portfolio.Positions))
	for code := range s.portfolio.Positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		pos := s.portfolio.Positions[code]
		quote, ok := s.quote(code, date)
		if !ok {
			s.log.Warn().Str("code", code).Time("date", date).Msg("No price for held position, keeping it")
			continue
		}
		trade, credit := s.execution.Sell(date, code, pos.Shares, quote)
		if trade == nil {
			continue
		}
		s.portfolio.Cash += credit
		delete(s.portfolio.Positions, code)
		s.trades = append(s.trades, *trade)
	}
}

// markToMarket refreshes held positions with the latest close. A
// missing quote keeps the previous mark.
func (s *Simulator) markToMarket(date time.Time) {
	if len(s.portfolio.Positions) == 0 {
		return
	}
	prices := make(map[string]float64, len(s.portfolio.Positions))
	for code := range s.portfolio.Positions {
		if quote, ok := s.quote(code, date); ok {
			prices[code] = quote
		}
	}
	s.portfolio.UpdatePrices(prices)
}

func (s *Simulator) quote(code string, date time.Time) (float64, bool) {
	price, ok, err := s.provider.LatestClose(code, date)
	if err != nil {
		s.log.Debug().Err(err).Str("code", code).Msg("Price lookup failed")
		return 0, false
	}
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

// rebalanceDays marks the last trading day of each calendar bucket in
// the simulated range. Anchoring to trading days rather than calendar
// month ends guarantees every completed period actually rebalances.
// The final trading day is marked only when the requested range covers
// its bucket through the calendar period end; a run ending mid-bucket
// does not churn the whole book on its last day.
func rebalanceDays(days []time.Time, period Period, end time.Time) map[time.Time]bool {
	bucket := func(t time.Time) [2]int {
		switch period {
		case PeriodMonthly:
			return [2]int{t.Year(), int(t.Month())}
		case PeriodQuarterly:
			return [2]int{t.Year(), (int(t.Month()) - 1) / 3}
		default:
			return [2]int{t.Year(), 0}
		}
	}

	marks := make(map[time.Time]bool)
	for i, day := range days {
		if i < len(days)-1 {
			if bucket(day) != bucket(days[i+1]) {
				marks[day] = true
			}
			continue
		}
		if bucket(day) != bucket(end.AddDate(0, 0, 1)) {
			marks[day] = true
		}
	}
	return marks
}
