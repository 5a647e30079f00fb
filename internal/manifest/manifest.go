// Package manifest keeps a SQLite ledger of ingestion runs so operators
// can see when the index was built, from which files, and with which
// embedding backend (including the degraded placeholder).
package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Ledger wraps a sql.DB with ingest-run helpers.
type Ledger struct {
	*sql.DB
}

// Open creates or opens the ledger database at the given path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging manifest db: %w", err)
	}

	l := &Ledger{DB: sqlDB}
	if err := l.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// OpenMemory creates an in-memory ledger (useful for testing).
func OpenMemory() (*Ledger, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory manifest db: %w", err)
	}
	l := &Ledger{DB: sqlDB}
	if err := l.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

func (l *Ledger) migrate() error {
	_, err := l.Exec(ledgerSchema)
	return err
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    embedder TEXT NOT NULL,
    records INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS ingest_files (
    run_id TEXT NOT NULL REFERENCES ingest_runs(id) ON DELETE CASCADE,
    source_file TEXT NOT NULL,
    records INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ingest_files_run ON ingest_files(run_id);
`

// FileCount is one source file's contribution to a run.
type FileCount struct {
	SourceFile string
	Records    int
}

// Run is one completed ingestion.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Embedder   string
	Records    int
	Files      []FileCount
}

// RecordRun persists a completed run. A missing id gets a fresh UUID.
func (l *Ledger) RecordRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := l.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO ingest_runs (id, started_at, finished_at, embedder, records) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Embedder, run.Records,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, f := range run.Files {
		if _, err := tx.Exec(
			`INSERT INTO ingest_files (run_id, source_file, records) VALUES (?, ?, ?)`,
			run.ID, f.SourceFile, f.Records,
		); err != nil {
			return "", fmt.Errorf("insert file count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// LatestRun returns the most recent run with its per-file counts, or
// (nil, nil) when nothing has been ingested yet.
func (l *Ledger) LatestRun() (*Run, error) {
	row := l.QueryRow(
		`SELECT id, started_at, finished_at, embedder, records
		 FROM ingest_runs ORDER BY finished_at DESC, id DESC LIMIT 1`,
	)
	var run Run
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Embedder, &run.Records)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	rows, err := l.Query(
		`SELECT source_file, records FROM ingest_files WHERE run_id = ? ORDER BY source_file`,
		run.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query file counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FileCount
		if err := rows.Scan(&f.SourceFile, &f.Records); err != nil {
			return nil, fmt.Errorf("scan file count: %w", err)
		}
		run.Files = append(run.Files, f)
	}
	return &run, rows.Err()
}
