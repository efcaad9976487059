// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps an optional history of conversion runs in a local
// SQLite database and writes per-run reports as YAML or JSON.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rtreit/document-converter/pkg/types"
)

// Ledger manages the run history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dir TEXT NOT NULL,
			backend TEXT,
			converter_version TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			output TEXT,
			media_dir TEXT,
			status TEXT NOT NULL,
			fix TEXT,
			replacements INTEGER,
			backup TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its file results in one transaction and returns
// the new run ID.
func (l *Ledger) Record(ctx context.Context, run types.Run) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (dir, backend, converter_version, started_at, finished_at, converted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Dir, run.Backend, run.Version,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Converted, run.Skipped, run.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, source, output, media_dir, status, fix, replacements, backup, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range run.Files {
		_, err := stmt.ExecContext(ctx,
			id, f.Source, f.Output, f.MediaDir, string(f.Status), string(f.Fix),
			f.Replacements, f.Backup, f.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting file %s: %w", f.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, without file details.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, dir, backend, converter_version, started_at, finished_at, converted, skipped, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var r types.Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Dir, &r.Backend, &r.Version,
			&started, &finished, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run with its file results.
func (l *Ledger) Get(ctx context.Context, id int64) (types.Run, error) {
	var r types.Run
	var started, finished string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, dir, backend, converter_version, started_at, finished_at, converted, skipped, failed
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Dir, &r.Backend, &r.Version, &started, &finished, &r.Converted, &r.Skipped, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return r, fmt.Errorf("querying run %d: %w", id, err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)

	rows, err := l.db.QueryContext(ctx,
		`SELECT source, output, media_dir, status, fix, replacements, backup, error
		 FROM files WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return r, fmt.Errorf("querying files for run %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f types.FileResult
		var status, fix string
		if err := rows.Scan(&f.Source, &f.Output, &f.MediaDir, &status, &fix,
			&f.Replacements, &f.Backup, &f.Error); err != nil {
			return r, fmt.Errorf("scanning file: %w", err)
		}
		f.Status = types.ConversionStatus(status)
		f.Fix = types.FixStatus(fix)
		r.Files = append(r.Files, f)
	}
	return r, rows.Err()
}
