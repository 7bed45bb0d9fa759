package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS studioKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite database with the studioKV
// table. It is closed when the test ends.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create studioKV table: %v", err)
	}

	return db
}

// CreateTestDB creates an in-memory database holding entries
func CreateTestDB(t *testing.T, entries map[string]string) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	for key, value := range entries {
		InsertEntry(t, db, key, value)
	}
	return db
}

// InsertEntry inserts or replaces a key in the studioKV table
func InsertEntry(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT OR REPLACE INTO studioKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}

// ReadEntry returns the stored value for key, failing the test if absent
func ReadEntry(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	var value string
	if err := db.QueryRow("SELECT value FROM studioKV WHERE key = ?", key).Scan(&value); err != nil {
		t.Fatalf("Failed to read %s: %v", key, err)
	}
	return value
}
