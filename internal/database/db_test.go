package database

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3" // fast in-memory driver for schema tests
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.db")

	db, err := New(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	// Migrate is idempotent.
	require.NoError(t, db.Migrate())

	_, err = db.Conn().Exec(
		`INSERT INTO securities (code, name, market, sector, market_cap, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"005930", "Samsung Electronics", "KOSPI", "Technology", 4e14, "normal")
	require.NoError(t, err)

	var name string
	require.NoError(t, db.Conn().QueryRow(
		`SELECT name FROM securities WHERE code = ?`, "005930").Scan(&name))
	assert.Equal(t, "Samsung Electronics", name)
	assert.Equal(t, path, db.Path())
}

func TestBuildConnectionString(t *testing.T) {
	conn := buildConnectionString("/tmp/market.db")
	assert.True(t, strings.HasPrefix(conn, "/tmp/market.db?"))
	assert.Contains(t, conn, "journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(NORMAL)")
	assert.Contains(t, conn, "foreign_keys(1)")
}

// The schema must also load under the cgo sqlite driver, so the
// database stays readable by tooling built on either driver.
func TestSchemaPortability(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(schema)
	require.NoError(t, err)

	_, err = conn.Exec(
		`INSERT INTO prices (code, date, open, high, low, close, volume)
		 VALUES ('005930', '2023-01-02', 1000, 1010, 990, 1005, 100000)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM prices`).Scan(&count))
	assert.Equal(t, 1, count)
}
