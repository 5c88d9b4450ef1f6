// Package main is the entry point for the quantfolio backtest runner.
// It wires the universe data provider, a selection strategy and the
// simulator, runs one backtest and renders the result to the terminal,
// optionally persisting it for later comparison.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/database"
	"github.com/quantfolio/quantfolio/internal/modules/report"
	"github.com/quantfolio/quantfolio/internal/modules/scoring"
	"github.com/quantfolio/quantfolio/internal/modules/simulation"
	"github.com/quantfolio/quantfolio/internal/modules/universe"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	var (
		strategy  = flag.String("strategy", "magic_formula", "selection strategy: magic_formula, multifactor, momentum, sector_neutral")
		start     = flag.String("start", "", "backtest start date (YYYY-MM-DD, required)")
		end       = flag.String("end", "", "backtest end date (YYYY-MM-DD, required)")
		capital   = flag.Float64("capital", cfg.InitialCapital, "initial capital")
		period    = flag.String("period", cfg.RebalancePeriod, "rebalance period: monthly, quarterly, yearly")
		benchmark = flag.String("benchmark", "", "benchmark code for relative metrics")
		topN      = flag.Int("top", cfg.TopN, "number of names to hold")
		dbPath    = flag.String("db", cfg.DBPath, "path to the market database")
		save      = flag.Bool("save", false, "persist the result")
		asJSON    = flag.Bool("json", false, "print the result as JSON instead of a summary")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})

	if *start == "" || *end == "" {
		return fmt.Errorf("-start and -end are required")
	}
	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("parsing -start: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", *end)
	if err != nil {
		return fmt.Errorf("parsing -end: %w", err)
	}
	rebalancePeriod, err := simulation.ParsePeriod(*period)
	if err != nil {
		return err
	}

	db, err := database.New(database.Config{Path: *dbPath})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	result, err := runBacktest(backtestParams{
		strategy:  *strategy,
		startDate: startDate,
		endDate:   endDate,
		capital:   *capital,
		period:    rebalancePeriod,
		benchmark: *benchmark,
		topN:      *topN,
	}, cfg, db, log)
	if err != nil {
		return err
	}

	if *save {
		repo := report.NewRepository(db.Conn(), log)
		if err := repo.Save(context.Background(), result); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
	}

	if *asJSON {
		out, err := result.JSON()
		if err != nil {
			return fmt.Errorf("rendering result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(result.Summary())
	return nil
}

type backtestParams struct {
	strategy  string
	startDate time.Time
	endDate   time.Time
	capital   float64
	period    simulation.Period
	benchmark string
	topN      int
}

func runBacktest(p backtestParams, cfg *config.Config, db *database.DB, log zerolog.Logger) (*report.BacktestResult, error) {
	filters := scoring.DefaultFilters()
	filters.TopN = p.topN

	selector, err := scoring.ForName(p.strategy, filters, log)
	if err != nil {
		return nil, err
	}
	provider := universe.NewProvider(db.Conn(), log)

	sim, err := simulation.New(selector, provider, simulation.Options{
		StartDate:          p.startDate,
		EndDate:            p.endDate,
		InitialCapital:     p.capital,
		RebalancePeriod:    p.period,
		Slippage:           cfg.Slippage,
		Commission:         cfg.Commission,
		CashBuffer:         cfg.CashBuffer,
		BenchmarkCode:      p.benchmark,
		RiskFreeRate:       cfg.RiskFreeRate,
		TradingDaysPerYear: cfg.TradingDaysPerYear,
	}, log)
	if err != nil {
		return nil, err
	}
	return sim.Run()
}
