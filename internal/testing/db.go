// Package testing provides testing utilities and helpers shared across
// the backtest engine's packages.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/quantfolio/quantfolio/internal/database"
)

// NewTestDB creates a temporary SQLite database for testing with the
// schema applied. Returns the database instance and an idempotent
// cleanup function that closes the connection and removes the file.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_quant_*.db")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{Path: tmpPath})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		_ = db.Close()
		_ = os.Remove(tmpPath)
		// WAL sidecar files
		_ = os.Remove(fmt.Sprintf("%s-wal", tmpPath))
		_ = os.Remove(fmt.Sprintf("%s-shm", tmpPath))
	}

	return db, cleanup
}
