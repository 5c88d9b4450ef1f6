// Package database provides database connection and initialization
// functionality for the market-data store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection holding prices, securities,
// financials and saved backtest results.
type DB struct {
	conn *sql.DB
	path string
}

// Config holds database configuration
type Config struct {
	Path string
}

// New creates a new database connection with WAL mode and sane pragmas
// for a read-mostly workload.
func New(cfg Config) (*DB, error) {
	if !strings.HasPrefix(cfg.Path, "file:") {
		// file: URIs (in-memory databases in tests) skip path resolution
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, path: cfg.Path}, nil
}

func buildConnectionString(path string) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(NORMAL)"
	connStr += "&_pragma=temp_store(MEMORY)"
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=cache_size(-64000)"
	return connStr
}

// Conn returns the underlying sql.DB connection, used by repositories
// to execute queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate applies the schema. Statements are idempotent so Migrate is
// safe to run on every startup.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS securities (
    code        TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    market      TEXT NOT NULL DEFAULT '',
    sector      TEXT NOT NULL DEFAULT '',
    market_cap  REAL NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'normal'
);

CREATE TABLE IF NOT EXISTS financials (
    code             TEXT NOT NULL,
    year             INTEGER NOT NULL,
    per              REAL,
    pbr              REAL,
    psr              REAL,
    pcr              REAL,
    eps              REAL,
    roe              REAL,
    gpa              REAL,
    cfo_ratio        REAL,
    ebit             REAL,
    invested_capital REAL,
    net_debt         REAL,
    PRIMARY KEY (code, year)
);

CREATE TABLE IF NOT EXISTS prices (
    code   TEXT NOT NULL,
    date   TEXT NOT NULL,
    open   REAL NOT NULL DEFAULT 0,
    high   REAL NOT NULL DEFAULT 0,
    low    REAL NOT NULL DEFAULT 0,
    close  REAL NOT NULL,
    volume INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (code, date)
);

CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date);

CREATE TABLE IF NOT EXISTS results (
    run_id        TEXT PRIMARY KEY,
    strategy      TEXT NOT NULL,
    start_date    TEXT NOT NULL,
    end_date      TEXT NOT NULL,
    initial_capital REAL NOT NULL,
    final_value   REAL NOT NULL,
    total_return  REAL NOT NULL,
    cagr          REAL NOT NULL,
    sharpe_ratio  REAL NOT NULL,
    mdd           REAL NOT NULL,
    metrics_json  TEXT NOT NULL,
    history_blob  BLOB NOT NULL,
    trades_blob   BLOB NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);
`
