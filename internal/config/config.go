// Package config provides configuration management functionality.
//
// All tuning values are explicit configuration passed into the engine at
// construction; there is no ambient global state, so multiple runs with
// different configurations can coexist safely.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the backtest engine. The cash buffer and floor-rounded
// share counts are fixed tuning values carried over from the original
// strategy research; they are configurable rather than re-derived.
const (
	DefaultInitialCapital     = 100_000_000.0
	DefaultRebalancePeriod    = "quarterly"
	DefaultSlippage           = 0.001
	DefaultCommission         = 0.00015
	DefaultRiskFreeRate       = 0.03
	DefaultTradingDaysPerYear = 252
	DefaultCashBuffer         = 0.01
	DefaultTopN               = 30
)

// Config holds application configuration
type Config struct {
	DBPath   string // SQLite database with prices/securities/financials
	LogLevel string
	DevMode  bool

	InitialCapital     float64
	RebalancePeriod    string
	Slippage           float64
	Commission         float64
	RiskFreeRate       float64
	TradingDaysPerYear int
	CashBuffer         float64
	TopN               int
}

// Load reads configuration from environment variables. A .env file in
// the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPath := getEnv("QUANT_DB_PATH", "data/quant.db")
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	cfg := &Config{
		DBPath:             absPath,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		InitialCapital:     getEnvAsFloat("INITIAL_CAPITAL", DefaultInitialCapital),
		RebalancePeriod:    getEnv("REBALANCE_PERIOD", DefaultRebalancePeriod),
		Slippage:           getEnvAsFloat("SLIPPAGE", DefaultSlippage),
		Commission:         getEnvAsFloat("COMMISSION", DefaultCommission),
		RiskFreeRate:       getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		TradingDaysPerYear: getEnvAsInt("TRADING_DAYS_PER_YEAR", DefaultTradingDaysPerYear),
		CashBuffer:         getEnvAsFloat("CASH_BUFFER", DefaultCashBuffer),
		TopN:               getEnvAsInt("TOP_N", DefaultTopN),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the process-level configuration values.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %f", c.InitialCapital)
	}
	if c.Slippage < 0 || c.Commission < 0 {
		return fmt.Errorf("slippage and commission must be non-negative")
	}
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("trading days per year must be positive, got %d", c.TradingDaysPerYear)
	}
	if c.CashBuffer < 0 || c.CashBuffer >= 1 {
		return fmt.Errorf("cash buffer must be in [0, 1), got %f", c.CashBuffer)
	}
	return nil
}

// getEnv retrieves an environment variable value, returning a fallback
// if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
