package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/wordcount/internal/wordcount"
)

func newTestSQLiteStore(t *testing.T) *SQLiteHistoryStore {
	t.Helper()
	s, err := NewSQLiteHistoryStore(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteHistoryStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteHistoryStore(t *testing.T) {
	testHistoryStore(t, func(t *testing.T) HistoryStore {
		return newTestSQLiteStore(t)
	})
}

func TestSQLiteHistoryStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := NewSQLiteHistoryStore(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteHistoryStore failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestSQLiteHistoryStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteHistoryStore(ctx, dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteHistoryStore failed: %v", err)
	}
	counts := wordcount.Count([]string{"to be or not to be"})
	id, err := s.SaveRun(ctx, Run{Source: "hamlet.txt", Mode: "lines"}, counts)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteHistoryStore(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	run, got, err := reopened.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun after reopen failed: %v", err)
	}
	if run.Source != "hamlet.txt" {
		t.Errorf("Source = %q", run.Source)
	}
	if !wordcount.Equal(got, counts) {
		t.Errorf("counts after reopen = %v, want %v", got, counts)
	}
}

func TestSQLiteHistoryStore_DeleteCascades(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, Run{Source: "a", Mode: "lines"}, wordcount.Counts{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.DeleteRun(ctx, id); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_words WHERE run_id = ?`, id).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected run_words to be deleted, found %d rows", n)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer db.Close()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("first InitSchema failed: %v", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}

	version, err := getSchemaVersion(ctx, db)
	if err != nil {
		t.Fatalf("getSchemaVersion failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestInitSchema_RejectsNewerVersion(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer db.Close()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, SchemaVersion+1); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := InitSchema(ctx, db); err == nil {
		t.Error("expected error for newer schema version")
	}
}
