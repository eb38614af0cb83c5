package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"games", "platforms", "locations", "saves", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if !errors.Is(err, ErrNoVersion) {
		t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoVersion", err)
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if latest != 2 {
		t.Errorf("LatestVersion() = %d, want 2", latest)
	}

	db := openTestDB(t)
	defer db.Close()
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	version, dirty, err := CurrentVersion(db)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if dirty {
		t.Error("CurrentVersion() reported dirty database")
	}
	if version != latest {
		t.Errorf("CurrentVersion() = %d, want %d", version, latest)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// A save pointing at a game and location that do not exist must be rejected
	_, err := db.Exec(`
		INSERT INTO saves (game_id, location_id, metadata, created_at)
		VALUES (42, 7, 'orphan', datetime('now'))
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_Games(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Release date is optional
	_, err := db.Exec("INSERT INTO games (title, publisher) VALUES ('Doom', 'id Software')")
	if err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	var publisher string
	var released sql.NullTime
	err = db.QueryRow("SELECT publisher, release_date FROM games WHERE title = 'Doom'").Scan(&publisher, &released)
	if err != nil {
		t.Fatalf("Failed to retrieve game: %v", err)
	}
	if publisher != "id Software" {
		t.Errorf("publisher = %q, want %q", publisher, "id Software")
	}
	if released.Valid {
		t.Errorf("release_date = %v, want NULL", released.Time)
	}
}

func TestSchema_GameTitleUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO games (title) VALUES ('Celeste')")
	if err != nil {
		t.Fatalf("Failed to insert first game: %v", err)
	}

	_, err = db.Exec("INSERT INTO games (title) VALUES ('Celeste')")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate title, but insert succeeded")
	}
}

func TestSchema_PlatformNameUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO platforms (platform_name) VALUES ('PC')"); err != nil {
		t.Fatalf("Failed to insert first platform: %v", err)
	}
	if _, err := db.Exec("INSERT INTO platforms (platform_name) VALUES ('PC')"); err == nil {
		t.Error("Expected unique constraint violation for duplicate platform, but insert succeeded")
	}
}

func TestSchema_OperationDefaults(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO operations (started_at, operation) VALUES (datetime('now'), 'add')"); err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}

	var status string
	if err := db.QueryRow("SELECT status FROM operations WHERE operation = 'add'").Scan(&status); err != nil {
		t.Fatalf("Failed to retrieve operation: %v", err)
	}
	if status != "running" {
		t.Errorf("status = %q, want %q", status, "running")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
