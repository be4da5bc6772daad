package recorder

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"KeplerLens/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// WAL lets `history` read while `watch` writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			job           TEXT NOT NULL,
			source        TEXT NOT NULL,
			catalog_id    INTEGER NOT NULL,
			star_name     TEXT,
			quarter       INTEGER,
			raw_samples   INTEGER,
			clean_samples INTEGER,
			output_path   TEXT,
			status        TEXT NOT NULL,
			error         TEXT,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_catalog ON runs(catalog_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(id, job, source, catalog_id, star_name, quarter,
		 raw_samples, clean_samples, output_path, status, error,
		 started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Job, run.Source, run.Star.CatalogID, run.Star.Name, run.Quarter,
		run.RawSamples, run.CleanSamples, run.OutputPath, string(run.Status), run.Error,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
	)
	return errors.Wrapf(err, "insert run %s", run.ID)
}

func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT
		id, job, source, catalog_id, star_name, quarter,
		raw_samples, clean_samples, output_path, status, error,
		started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var (
			run               model.RunRecord
			status            string
			started, finished int64
		)
		if err := rows.Scan(
			&run.ID, &run.Job, &run.Source, &run.Star.CatalogID, &run.Star.Name, &run.Quarter,
			&run.RawSamples, &run.CleanSamples, &run.OutputPath, &status, &run.Error,
			&started, &finished,
		); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		run.Status = model.RunStatus(status)
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "iterate runs")
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
