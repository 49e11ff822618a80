package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"MarketSim/internal/recorder"

	_ "modernc.org/sqlite"
)

func writeOnceConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
simulation:
  num_days: 120
output:
  format: none
database:
  sqlite_path: %q
logging:
  level: error
  format: json
`, dbPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertClosed(t *testing.T, dbPath string) {
	t.Helper()
	if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
		t.Errorf("expected WAL file to be checkpointed and removed on close, stat err = %v", err)
	}
}

func TestRunOnce_RecordsAndCloses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	if err := run(writeOnceConfig(t, dbPath), true); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertClosed(t, dbPath)

	rec, err := recorder.NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rec.Close()
	runs, err := rec.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Rows != 120 {
		t.Errorf("expected one stored run of 120 rows, got %+v", runs)
	}
}

func TestRunOnce_FailureStillClosesRecorder(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	// A pre-existing series_rows table with the wrong columns makes the
	// export fail after the recorder has opened the database.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE series_rows (x INTEGER)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if err := run(writeOnceConfig(t, dbPath), true); err == nil {
		t.Fatal("expected initial simulation to fail")
	}
	assertClosed(t, dbPath)
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("simulation:\n  ma_window: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(path, true); err == nil {
		t.Fatal("expected config validation error")
	}
}
