package universe

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// SecurityRepository handles securities table access.
type SecurityRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// securitiesColumns avoids SELECT * so schema additions cannot break
// scan order.
const securitiesColumns = `code, name, market, sector, market_cap, status`

func NewSecurityRepository(db *sql.DB, log zerolog.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:  db,
		log: log.With().Str("repo", "security").Logger(),
	}
}

// GetByCode returns a security by code, or nil when not found.
func (r *SecurityRepository) GetByCode(code string) (*Security, error) {
	query := "SELECT " + securitiesColumns + " FROM securities WHERE code = ?"

	rows, err := r.db.Query(query, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to query security by code: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	security, err := scanSecurity(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan security: %w", err)
	}
	return &security, nil
}

// GetAll returns every security, ordered by code.
func (r *SecurityRepository) GetAll() ([]Security, error) {
	query := "SELECT " + securitiesColumns + " FROM securities ORDER BY code"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	var out []Security
	for rows.Next() {
		security, err := scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		out = append(out, security)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a security row.
func (r *SecurityRepository) Upsert(s Security) error {
	_, err := r.db.Exec(`
		INSERT INTO securities (`+securitiesColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			market = excluded.market,
			sector = excluded.sector,
			market_cap = excluded.market_cap,
			status = excluded.status`,
		s.Code, s.Name, s.Market, s.Sector, s.MarketCap, s.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", s.Code, err)
	}
	return nil
}

func scanSecurity(rows *sql.Rows) (Security, error) {
	var s Security
	err := rows.Scan(&s.Code, &s.Name, &s.Market, &s.Sector, &s.MarketCap, &s.Status)
	return s, err
}
