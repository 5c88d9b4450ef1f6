package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// FinancialRepository handles financials table access.
type FinancialRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

const financialsColumns = `code, year, per, pbr, psr, pcr, eps, roe, gpa,
cfo_ratio, ebit, invested_capital, net_debt`

func NewFinancialRepository(db *sql.DB, log zerolog.Logger) *FinancialRepository {
	return &FinancialRepository{
		db:  db,
		log: log.With().Str("repo", "financial").Logger(),
	}
}

// GetForYear returns all fundamentals for one fiscal year, keyed by
// security code.
func (r *FinancialRepository) GetForYear(year int) (map[string]Financials, error) {
	query := "SELECT " + financialsColumns + " FROM financials WHERE year = ?"

	rows, err := r.db.Query(query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query financials for %d: %w", year, err)
	}
	defer rows.Close()

	out := make(map[string]Financials)
	for rows.Next() {
		f, err := scanFinancials(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financials: %w", err)
		}
		out[f.Code] = f
	}
	return out, rows.Err()
}

// Upsert inserts or replaces one fiscal-year row.
func (r *FinancialRepository) Upsert(f Financials) error {
	_, err := r.db.Exec(`
		INSERT INTO financials (`+financialsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, year) DO UPDATE SET
			per = excluded.per,
			pbr = excluded.pbr,
			psr = excluded.psr,
			pcr = excluded.pcr,
			eps = excluded.eps,
			roe = excluded.roe,
			gpa = excluded.gpa,
			cfo_ratio = excluded.cfo_ratio,
			ebit = excluded.ebit,
			invested_capital = excluded.invested_capital,
			net_debt = excluded.net_debt`,
		f.Code, f.Year, f.PER, f.PBR, f.PSR, f.PCR, f.EPS, f.ROE, f.GPA,
		f.CFORatio, f.EBIT, f.InvestedCapital, f.NetDebt)
	if err != nil {
		return fmt.Errorf("failed to upsert financials %s/%d: %w", f.Code, f.Year, err)
	}
	return nil
}

func scanFinancials(rows *sql.Rows) (Financials, error) {
	var f Financials
	err := rows.Scan(&f.Code, &f.Year, &f.PER, &f.PBR, &f.PSR, &f.PCR, &f.EPS,
		&f.ROE, &f.GPA, &f.CFORatio, &f.EBIT, &f.InvestedCapital, &f.NetDebt)
	return f, err
}
