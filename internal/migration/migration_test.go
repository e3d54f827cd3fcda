package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(nil))

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 on fresh database, got %d", version)
	}
}

func TestReadMigrationFilesSortedAndParsed(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"003_third.sql":  "CREATE TABLE t3 (id INTEGER);",
		"001_first.sql":  "CREATE TABLE t1 (id INTEGER);",
		"002_second.sql": "CREATE TABLE t2 (id INTEGER);",
		"README.md":      "not a migration",
	}))

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, want := range []string{"first", "second", "third"} {
		if migrations[i].Version != i+1 {
			t.Errorf("expected version %d at index %d, got %d", i+1, i, migrations[i].Version)
		}
		if migrations[i].Name != want {
			t.Errorf("expected name %q at index %d, got %q", want, i, migrations[i].Name)
		}
	}
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	db := setupTestDB(t)

	for name, files := range map[string]map[string]string{
		"no underscore": {"001.sql": "SELECT 1;"},
		"no version":    {"abc_init.sql": "SELECT 1;"},
		"zero version":  {"000_init.sql": "SELECT 1;"},
	} {
		runner := NewRunner(db, testFS(files))
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestReadMigrationFilesRejectsDuplicateVersions(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_a.sql": "SELECT 1;",
		"001_b.sql": "SELECT 1;",
	}))

	if _, err := runner.ReadMigrationFiles(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate version error, got %v", err)
	}
}

func TestApplyRunsPendingAndRecordsLedger(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_init.sql":  "CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT);",
		"002_index.sql": "CREATE INDEX idx_items_name ON items (name);",
	}))

	applied, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	// Migrated schema is usable
	if _, err := db.Exec("INSERT INTO items (id, name) VALUES ('a', 'b')"); err != nil {
		t.Errorf("migrated table not usable: %v", err)
	}

	// Ledger carries one row per migration
	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows); err != nil {
		t.Fatalf("failed to count ledger rows: %v", err)
	}
	if rows != 2 {
		t.Errorf("expected 2 ledger rows, got %d", rows)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_init.sql": "CREATE TABLE items (id TEXT PRIMARY KEY);",
	}))

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	applied, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 migrations on re-apply, got %d", applied)
	}
}

func TestApplyOnlyRunsNewerVersions(t *testing.T) {
	db := setupTestDB(t)

	runner := NewRunner(db, testFS(map[string]string{
		"001_init.sql": "CREATE TABLE items (id TEXT PRIMARY KEY);",
	}))
	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Ship a second migration later
	runner = NewRunner(db, testFS(map[string]string{
		"001_init.sql": "CREATE TABLE items (id TEXT PRIMARY KEY);",
		"002_more.sql": "ALTER TABLE items ADD COLUMN name TEXT;",
	}))
	applied, err := runner.Apply(nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_bad.sql": "CREATE TABLE broken (;",
	}))

	if _, err := runner.Apply(nil); err == nil {
		t.Fatal("expected failing migration to error")
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version to stay 0 after failed migration, got %d", version)
	}
}

func TestValidateVersion(t *testing.T) {
	db := setupTestDB(t)
	files := testFS(map[string]string{
		"001_init.sql": "CREATE TABLE items (id TEXT PRIMARY KEY);",
	})
	runner := NewRunner(db, files)

	// Behind: migration exists but was never applied
	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "behind") {
		t.Errorf("expected behind error, got %v", err)
	}

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("expected current schema to validate, got %v", err)
	}

	// Newer: database recorded a version the binary does not ship
	if _, err := db.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (9, 'future', '2024-01-01T00:00:00Z')"); err != nil {
		t.Fatalf("failed to insert future version: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("expected newer error, got %v", err)
	}
}
