package testutil

import (
	"testing"

	"savehaven/internal/database"
	"savehaven/internal/haven"
)

// NewTestDatabase creates a new in-memory SQLite catalogue with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T, clock haven.Clock) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, ":memory:", clock)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
