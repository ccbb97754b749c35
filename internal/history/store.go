// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of extraction runs and the
// procedures each completed run produced. The extract stage uses it to skip
// unchanged inputs; the history and search commands read it back.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/rol-export/pkg/types"
)

const dbFile = "history.db"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// NewStore opens or creates stateDir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.StateDir == "" {
		return nil, errors.New("history state directory is not set")
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(cfg.StateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, path: dbPath, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			started_at INTEGER NOT NULL,
			input_path TEXT NOT NULL,
			input_sha256 TEXT,
			settings_sha256 TEXT,
			pages INTEGER,
			rows INTEGER,
			unmatched INTEGER,
			csv_path TEXT,
			zip_path TEXT,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_path)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_csv ON runs(csv_path)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_zip ON runs(zip_path)`,
		`CREATE TABLE IF NOT EXISTS procedures (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			code TEXT NOT NULL,
			description TEXT NOT NULL,
			segment TEXT,
			segment_detail TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_procedures_code ON procedures(code)`,
	}

	if err := s.addColumn("runs", "settings_sha256", "TEXT"); err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// addColumn adds a column to a table created by an older schema. It does
// nothing when the table does not exist yet or already has the column.
func (s *Store) addColumn(table, column, decl string) error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("reading %s columns: %w", table, err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("reading %s columns: %w", table, err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading %s columns: %w", table, err)
	}

	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if n == column {
			return nil
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl)); err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, column, err)
	}
	return nil
}

// RecordRun stores a run and, for completed runs, its procedures in a
// single transaction.
func (s *Store) RecordRun(ctx context.Context, run types.Run, rows []types.ExtractedRow) error {
	if run.ID == "" {
		return errors.New("run has no id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_path, input_sha256, settings_sha256, pages, rows, unmatched, csv_path, zip_path, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().UnixNano(), run.InputPath, run.InputSHA256, run.SettingsSHA256,
		run.Pages, run.Rows, run.Unmatched, run.CSVPath, run.ZipPath, string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO procedures (run_id, position, code, description, segment, segment_detail)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Code, r.Description, r.Segment, r.SegmentDetail); err != nil {
			return fmt.Errorf("inserting procedure %s: %w", r.Code, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, started_at, input_path, input_sha256, settings_sha256, pages, rows, unmatched, csv_path, zip_path, status`

// LastRun returns the most recent completed run for inputPath, or nil when
// there is none.
func (s *Store) LastRun(ctx context.Context, inputPath string) (*types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE input_path = ? AND status = ?
		 ORDER BY started_at DESC, seq DESC LIMIT 1`,
		inputPath, string(types.RunCompleted),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	return &run, nil
}

// LastOutputRun returns the most recent run that targeted csvPath or
// zipPath, whatever its input, or nil when there is none. Runs that found no
// records are ignored since they write nothing. A failed run is returned
// as is: it may have replaced the CSV before the archive step failed.
func (s *Store) LastOutputRun(ctx context.Context, csvPath, zipPath string) (*types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE (csv_path = ? OR zip_path = ?) AND status != ?
		 ORDER BY started_at DESC, seq DESC LIMIT 1`,
		csvPath, zipPath, string(types.RunNoRecords),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last output run: %w", err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first. Zero uses the store default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var (
		run       types.Run
		startedAt int64
		sha       sql.NullString
		settings  sql.NullString
		pages     sql.NullInt64
		nrows     sql.NullInt64
		unmatched sql.NullInt64
		csvPath   sql.NullString
		zipPath   sql.NullString
		status    string
	)
	if err := sc.Scan(&run.ID, &startedAt, &run.InputPath, &sha, &settings, &pages, &nrows, &unmatched, &csvPath, &zipPath, &status); err != nil {
		return types.Run{}, err
	}
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.InputSHA256 = sha.String
	run.SettingsSHA256 = settings.String
	run.Pages = int(pages.Int64)
	run.Rows = int(nrows.Int64)
	run.Unmatched = int(unmatched.Int64)
	run.CSVPath = csvPath.String
	run.ZipPath = zipPath.String
	run.Status = types.RunStatus(status)
	return run, nil
}
