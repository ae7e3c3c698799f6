package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/formaudit-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	input_urls  TEXT NOT NULL,
	params      TEXT NOT NULL,
	records     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	aborted     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores a completed extraction run and returns its ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run model.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	urlsJSON, err := json.Marshal(run.InputURLs)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal input urls")
	}
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal params")
	}
	recordsJSON, err := json.Marshal(run.Records)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal records")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_urls, params, records, duration_ms, aborted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, string(urlsJSON), string(paramsJSON), string(recordsJSON),
		run.DurationMS, boolToInt(run.Aborted),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}

	return run.ID, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, input_urls, params, records, duration_ms, aborted
		 FROM runs WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, started_at, input_urls, params, records, duration_ms, aborted
	          FROM runs ORDER BY started_at DESC`
	var args []any
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	var (
		run         model.Run
		urlsJSON    string
		paramsJSON  string
		recordsJSON string
		aborted     int
	)
	if err := sc.Scan(&run.ID, &run.StartedAt, &urlsJSON, &paramsJSON, &recordsJSON, &run.DurationMS, &aborted); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(urlsJSON), &run.InputURLs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal input urls")
	}
	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal params")
	}
	if err := json.Unmarshal([]byte(recordsJSON), &run.Records); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal records")
	}
	run.Aborted = aborted != 0

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
