package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/pkg/formulas"
)

const dateLayout = "2006-01-02"

// latestCloseLookbackDays bounds how far back a stale quote may be.
// A security without a close inside this window is treated as having
// no price at all.
const latestCloseLookbackDays = 10

// PriceRepository handles prices table access.
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("repo", "price").Logger(),
	}
}

// TradingDays returns all distinct price dates in the range, ascending.
// Any date with at least one close counts as a trading day.
func (r *PriceRepository) TradingDays(start, end time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT date FROM prices
		WHERE date >= ? AND date <= ?
		ORDER BY date`,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query trading days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan trading day: %w", err)
		}
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trading day %q: %w", raw, err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// Series returns the close series for a code in the range, ascending.
func (r *PriceRepository) Series(code string, start, end time.Time) (formulas.Series, error) {
	rows, err := r.db.Query(`
		SELECT date, close FROM prices
		WHERE code = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		code, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query price series for %s: %w", code, err)
	}
	defer rows.Close()

	var series formulas.Series
	for rows.Next() {
		var (
			raw   string
			close float64
		)
		if err := rows.Scan(&raw, &close); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price date %q: %w", raw, err)
		}
		series = append(series, formulas.Point{Date: date, Value: close})
	}
	return series, rows.Err()
}

// LatestClose returns the most recent close at or before the date,
// looking back at most latestCloseLookbackDays calendar days. The
// second return reports whether a quote was found.
func (r *PriceRepository) LatestClose(code string, date time.Time) (float64, bool, error) {
	cutoff := date.AddDate(0, 0, -latestCloseLookbackDays)

	var close float64
	err := r.db.QueryRow(`
		SELECT close FROM prices
		WHERE code = ? AND date <= ? AND date >= ?
		ORDER BY date DESC LIMIT 1`,
		code, date.Format(dateLayout), cutoff.Format(dateLayout)).Scan(&close)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query latest close for %s: %w", code, err)
	}
	return close, true, nil
}

// Upsert inserts or replaces one daily bar.
func (r *PriceRepository) Upsert(p DailyPrice) error {
	_, err := r.db.Exec(`
		INSERT INTO prices (code, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume`,
		p.Code, p.Date.Format(dateLayout), p.Open, p.High, p.Low, p.Close, p.Volume)
	if err != nil {
		return fmt.Errorf("failed to upsert price %s/%s: %w", p.Code, p.Date.Format(dateLayout), err)
	}
	return nil
}

// UpsertBatch writes a slice of bars inside one transaction.
func (r *PriceRepository) UpsertBatch(prices []DailyPrice) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO prices (code, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare price batch: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(p.Code, p.Date.Format(dateLayout), p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("failed to insert price %s/%s: %w", p.Code, p.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}
