package domain

import "errors"

// ErrDataUnavailable indicates the data provider returned no trading
// days for the requested range. Fatal: the run aborts immediately.
var ErrDataUnavailable = errors.New("no trading days available for requested range")

// ErrInvalidConfig indicates an invalid backtest configuration (bad
// date range, non-positive capital, unknown rebalance period). Raised
// at construction, before any data access.
var ErrInvalidConfig = errors.New("invalid backtest configuration")

// Missing prices and unaffordable buys are deliberately not errors:
// they are per-symbol skips, logged and recovered locally without
// aborting the run.
