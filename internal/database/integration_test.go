package database

import (
	"path/filepath"
	"testing"
)

// TestDatabaseIntegration exercises the full open-and-migrate lifecycle
// against a throwaway SQLite database.
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "integration.db")

	db, err := Open(Options{Type: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Migrations must have created the schema
	tables := []string{"users", "languages", "lessons", "words", "directories", "enrollments", "word_mastery", "migrations"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running migrations again must be a no-op
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "insert.db")

	db, err := Open(Options{Type: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	id, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"test@example.com", "hash", "Test User",
	)
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("ExecReturningID returned %d, want a positive id", id)
	}

	second, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"other@example.com", "hash", "Other User",
	)
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if second <= id {
		t.Errorf("second insert id = %d, want greater than %d", second, id)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "fk.db")

	db, err := Open(Options{Type: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// The sqlite dialect must turn foreign key enforcement on
	_, err = db.Exec("INSERT INTO words (lesson_id, prompt, translation, usage_text, hint) VALUES (?, ?, ?, '', '')", 9999, "a", "b")
	if err == nil {
		t.Error("insert with dangling lesson_id should fail")
	}
}
