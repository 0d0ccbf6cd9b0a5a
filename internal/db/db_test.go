package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return database
}

func embeddedMigrationCount(t *testing.T) int {
	t.Helper()
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	return len(entries)
}

func TestNew_SchemaAndPragmas(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "nested", "turnover.db"))
	defer database.Close()

	for _, table := range []string{"sources", "files", "jobs", "config", "source_media", "shots", "_migrations"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var foreignKeys int
	if err := database.Conn().QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("foreign_keys = %d, want 1", foreignKeys)
	}
}

func TestNew_ReopenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turnover.db")
	openTestDB(t, path).Close()

	database := openTestDB(t, path)
	defer database.Close()

	var count int
	if err := database.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if want := embeddedMigrationCount(t); count != want {
		t.Errorf("migration count = %d, want %d", count, want)
	}
}

func TestNew_FailsRunningImports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turnover.db")
	first := openTestDB(t, path)
	_, err := first.Conn().Exec(`
		INSERT INTO jobs (id, type, status, progress, created_at, updated_at) VALUES
		('running-import', 'import', 'running', 40, datetime('now'), datetime('now')),
		('queued-scan', 'scan', 'pending', 0, datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("insert jobs error = %v", err)
	}
	first.Close()

	database := openTestDB(t, path)
	defer database.Close()

	tests := []struct {
		id         string
		wantStatus string
		wantError  string
	}{
		{"running-import", "failed", "interrupted by restart"},
		{"queued-scan", "pending", ""},
	}
	for _, tt := range tests {
		var status string
		var errMsg sql.NullString
		if err := database.Conn().QueryRow("SELECT status, error FROM jobs WHERE id = ?", tt.id).Scan(&status, &errMsg); err != nil {
			t.Fatalf("query %s error = %v", tt.id, err)
		}
		if status != tt.wantStatus || errMsg.String != tt.wantError {
			t.Errorf("%s = (%s, %q), want (%s, %q)", tt.id, status, errMsg.String, tt.wantStatus, tt.wantError)
		}
	}
}

func TestDropFolderDeleteCascadesToFiles(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "turnover.db"))
	defer database.Close()
	conn := database.Conn()

	mustExec(t, conn, `INSERT INTO sources (id, project_id, type, path, display_name, created_at)
		VALUES ('s1', 'p1', 'folder', '/drop/editorial', 'editorial', datetime('now'))`)
	mustExec(t, conn, `INSERT INTO files (id, source_id, path, filename, size, mtime, fingerprint, created_at)
		VALUES ('f1', 's1', '/drop/editorial/reel1.edl', 'reel1.edl', 10, datetime('now'), 'abc', datetime('now'))`)
	mustExec(t, conn, `DELETE FROM sources WHERE id = 's1'`)

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM files").Scan(&count); err != nil {
		t.Fatalf("count files error = %v", err)
	}
	if count != 0 {
		t.Errorf("files left after drop folder delete = %d", count)
	}
}

func TestSourceMediaDeleteUnlinksShots(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "turnover.db"))
	defer database.Close()
	conn := database.Conn()

	mustExec(t, conn, `INSERT INTO source_media (id, project_id, clip_name, tc_in_key, data, created_at, updated_at)
		VALUES ('m1', 'p1', 'A001C001', 86400, '{}', datetime('now'), datetime('now'))`)
	mustExec(t, conn, `INSERT INTO shots (id, project_id, code, source_media_id, data, created_at, updated_at)
		VALUES ('sh1', 'p1', 'SH010', 'm1', '{}', datetime('now'), datetime('now'))`)
	mustExec(t, conn, `DELETE FROM source_media WHERE id = 'm1'`)

	var link sql.NullString
	if err := conn.QueryRow("SELECT source_media_id FROM shots WHERE id = 'sh1'").Scan(&link); err != nil {
		t.Fatalf("query shot error = %v", err)
	}
	if link.Valid {
		t.Errorf("source_media_id = %q, want NULL", link.String)
	}
}

func TestSourceMediaUniqueKey(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "turnover.db"))
	defer database.Close()

	insert := `INSERT INTO source_media (id, project_id, clip_name, tc_in_key, data, created_at, updated_at)
		VALUES (?, ?, 'A001C001', -1, '{}', datetime('now'), datetime('now'))`
	if _, err := database.Conn().Exec(insert, "m1", "p1"); err != nil {
		t.Fatalf("first insert error = %v", err)
	}
	if _, err := database.Conn().Exec(insert, "m2", "p1"); err == nil {
		t.Fatal("expected unique constraint violation for duplicate clip without timecode")
	}
	if _, err := database.Conn().Exec(insert, "m3", "p2"); err != nil {
		t.Fatalf("same clip in another project error = %v", err)
	}
}

func mustExec(t *testing.T, conn *sql.DB, query string) {
	t.Helper()
	if _, err := conn.Exec(query); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
