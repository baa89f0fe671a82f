package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Source is a row of the sources table: a remote dataset the directory is
// built from, with the result of its last availability check.
type Source struct {
	ID          string
	Description string
	URL         string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	UpdatedAt   int64
}

// Run is a row of the load_runs table.
type Run struct {
	ID           string
	StartedAt    int64
	FinishedAt   *int64
	ProviderFile string
	Rows         int
	AuxRows      int
	Status       string
	Error        *string
}

// SourceDB keeps the source registry and the load history next to the catalog.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path and ensures the
// sources and load_runs tables exist.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS sources (
		id           TEXT PRIMARY KEY,
		description  TEXT NOT NULL,
		url          TEXT NOT NULL,
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		updated_at   INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS load_runs (
		id             TEXT PRIMARY KEY,
		started_at     INTEGER NOT NULL,
		finished_at    INTEGER,
		provider_file  TEXT NOT NULL,
		rows           INTEGER NOT NULL DEFAULT 0,
		aux_rows       INTEGER NOT NULL DEFAULT 0,
		status         TEXT NOT NULL,
		error          TEXT
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create source tables: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the SQLite connection.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts or refreshes a source. The URL follows the configuration;
// check results are kept.
func (s *SourceDB) Seed(id, description, url string) error {
	const q = `INSERT INTO sources (id, description, url, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET description = excluded.description,
			url = excluded.url, updated_at = excluded.updated_at
		WHERE sources.url <> excluded.url OR sources.description <> excluded.description`
	if _, err := s.db.Exec(q, id, description, url, time.Now().Unix()); err != nil {
		return fmt.Errorf("seed %s: %w", id, err)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *SourceDB) UpdateCheck(id string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE sources SET last_check = ?, last_status = ?, last_error = ? WHERE id = ?`,
		time.Now().Unix(), status, errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", id, err)
	}
	return nil
}

// ListSources returns all sources ordered by id.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT id, description, url, last_check, last_status, last_error, updated_at
		FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Description, &src.URL,
			&src.LastCheck, &src.LastStatus, &src.LastError, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// StartRun records the beginning of a load and returns its id.
func (s *SourceDB) StartRun(providerFile string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO load_runs (id, started_at, provider_file, status) VALUES (?, ?, ?, 'running')`,
		id, time.Now().Unix(), providerFile,
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run with its row counts, or with runErr when it failed.
func (s *SourceDB) FinishRun(id string, rows, auxRows int, runErr error) error {
	status := "ok"
	var errPtr *string
	if runErr != nil {
		status = "failed"
		msg := runErr.Error()
		errPtr = &msg
	}
	res, err := s.db.Exec(
		`UPDATE load_runs SET finished_at = ?, rows = ?, aux_rows = ?, status = ?, error = ? WHERE id = ?`,
		time.Now().Unix(), rows, auxRows, status, errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found in load_runs", id)
	}
	return nil
}

// Runs returns the most recent load runs, newest first.
func (s *SourceDB) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, started_at, finished_at, provider_file, rows, aux_rows, status, error
		FROM load_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ProviderFile,
			&r.Rows, &r.AuxRows, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
