// ABOUTME: Tests for SQLite store initialization and schema migrations.
// ABOUTME: Verifies database setup, table creation and idempotent reopening.

package store

import (
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "adminkit.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	// Verify tables exist
	tables := []string{"schema_migrations", "request_logs", "records", "record_counters"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "adminkit.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.CreateRecord("products", "1", map[string]any{"name": "Widget"}); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	var applied int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != CurrentSchemaVersion {
		t.Errorf("applied migrations = %d, want %d", applied, CurrentSchemaVersion)
	}

	rec, err := s.GetRecord("products", "1")
	if err != nil {
		t.Fatalf("GetRecord() after reopen error = %v", err)
	}
	if rec["name"] != "Widget" {
		t.Errorf("record name = %v, want Widget", rec["name"])
	}
}

func TestNewStore_MemoryDatabaseSharesSchema(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	// A second query on the pool must see the tables created by migrate.
	for i := 0; i < 3; i++ {
		if _, _, err := s.ListRecords("products", RecordQuery{}); err != nil {
			t.Fatalf("ListRecords() on :memory: error = %v", err)
		}
	}
}
