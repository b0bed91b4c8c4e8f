package testutil

import (
	"testing"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
)

// SetupTestDB creates an in-memory SQLite database migrated with the
// production migrations. The database is automatically cleaned up when the
// test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created and fund_state seeded
//	}
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	database.SilenceMigrations()

	// In-memory database (destroyed when connection closes)
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CleanDatabase removes all snapshots and requests and resets the freeze flag.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *database.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	statements := []string{
		"DELETE FROM position_snapshot",
		"DELETE FROM nav_snapshot",
		"DELETE FROM capital_request",
		"UPDATE fund_state SET frozen = 0",
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to clean database (%s): %v", stmt, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "capital_request")
//	assert.Equal(t, 2, count)
func CountRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()

	var count int
	//nolint:gosec // G202: table names come from test code only
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "capital_request", 0)
func AssertRowCount(t *testing.T, db *database.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
