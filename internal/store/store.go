// ABOUTME: Core SQLite store for the adminkit server.
// ABOUTME: Handles database initialization, versioned migrations and connection management.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // Initial schema with request_logs table
	MigrationV2 = 2 // Composite indexes for log filtering and aggregation
	MigrationV3 = 3 // Demo backend records and id counters
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV3

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	if err := s.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if currentVersion < CurrentSchemaVersion {
		log.Printf("Database schema version: %d, target version: %d", currentVersion, CurrentSchemaVersion)
	}

	steps := []struct {
		version int
		run     func() error
	}{
		{MigrationV1, s.migrateV1},
		{MigrationV2, s.migrateV2},
		{MigrationV3, s.migrateV3},
	}
	for _, step := range steps {
		if currentVersion >= step.version {
			continue
		}
		if err := step.run(); err != nil {
			return fmt.Errorf("migration v%d failed: %w", step.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations tracking table
func (s *Store) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	return err
}

// getCurrentMigrationVersion retrieves the current schema version
func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// recordMigration records a completed migration
func (s *Store) recordMigration(version int, description string) error {
	_, err := s.db.Exec(`
		INSERT INTO schema_migrations (version, description)
		VALUES (?, ?)
	`, version, description)
	return err
}

// migrateV1 creates the request_logs table and indexes
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		direction TEXT NOT NULL DEFAULT 'inbound',
		entity TEXT DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		duration_ms INTEGER,
		user_id TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_body TEXT,
		response_body TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path);
	CREATE INDEX IF NOT EXISTS idx_request_logs_status ON request_logs(status_code);
	CREATE INDEX IF NOT EXISTS idx_request_logs_entity ON request_logs(entity);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if err := s.recordMigration(MigrationV1, "Create request_logs table and indexes"); err != nil {
		return err
	}

	log.Printf("Applied migration v%d: Create request_logs table and indexes", MigrationV1)
	return nil
}

// migrateV2 adds composite indexes for the log page filters and dashboard metrics
func (s *Store) migrateV2() error {
	indexes := []string{
		// GetTopEndpoints groups by path
		"CREATE INDEX IF NOT EXISTS idx_request_logs_path_count ON request_logs(path, status_code)",
		// GetEntityRequestCount and GetEntityErrorRate filter by entity and time
		"CREATE INDEX IF NOT EXISTS idx_request_logs_entity_timestamp ON request_logs(entity, timestamp DESC)",
		// GetRequestLogs filters by direction, entity, method and status together
		"CREATE INDEX IF NOT EXISTS idx_request_logs_direction_entity_method ON request_logs(direction, entity, method, status_code)",
		"CREATE INDEX IF NOT EXISTS idx_request_logs_user_id ON request_logs(user_id) WHERE user_id != ''",
	}

	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := s.recordMigration(MigrationV2, "Add composite indexes for log filtering"); err != nil {
		return err
	}

	log.Printf("Applied migration v%d: Add composite indexes for log filtering", MigrationV2)
	return nil
}

// migrateV3 creates the JSON record table backing the demo REST backend
func (s *Store) migrateV3() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);

	CREATE TABLE IF NOT EXISTS record_counters (
		collection TEXT PRIMARY KEY,
		next_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_collection_created ON records(collection, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	if err := s.recordMigration(MigrationV3, "Create records and record_counters tables"); err != nil {
		return err
	}

	log.Printf("Applied migration v%d: Create records and record_counters tables", MigrationV3)
	return nil
}
