// Package journal persists interop run history to SQLite, so
// repeated runs against the same library and peer can be compared
// over time. The journal is optional; the harness runs fine without
// one.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/h5interop/h5interop/internal/interop"
)

//go:embed schema.sql
var schemaSQL string

// Journal records orchestration summaries in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at the given path.
// The database uses WAL mode with a single writer connection.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores one run summary and its per-direction results in a
// single transaction.
func (j *Journal) Record(ctx context.Context, s *interop.Summary) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, library, peer, started, finished, passed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Library, s.Peer,
		s.Started.UTC().Format(time.RFC3339Nano),
		s.Finished.UTC().Format(time.RFC3339Nano),
		boolInt(s.AllPassed()))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, r := range s.Results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO directions (run_id, ord, direction, passed, detail)
			 VALUES (?, ?, ?, ?, ?)`,
			s.RunID, i, r.Direction, boolInt(r.Passed), r.Detail)
		if err != nil {
			return fmt.Errorf("insert direction: %w", err)
		}
	}
	return tx.Commit()
}

// Run is one recorded orchestration.
type Run struct {
	ID         string
	Library    string
	Peer       string
	Started    time.Time
	Finished   time.Time
	Passed     bool
	Directions []DirectionRecord
}

// DirectionRecord is one recorded round-trip outcome.
type DirectionRecord struct {
	Direction string
	Passed    bool
	Detail    string
}

// Runs returns all recorded runs, most recent first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, library, peer, started, finished, passed
		 FROM runs ORDER BY started DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		var passed int
		if err := rows.Scan(&r.ID, &r.Library, &r.Peer, &started, &finished, &passed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started: %w", err)
		}
		if r.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished: %w", err)
		}
		r.Passed = passed != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Directions, err = j.directions(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (j *Journal) directions(ctx context.Context, runID string) ([]DirectionRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT direction, passed, detail FROM directions
		 WHERE run_id = ? ORDER BY ord`, runID)
	if err != nil {
		return nil, fmt.Errorf("query directions: %w", err)
	}
	defer rows.Close()

	var recs []DirectionRecord
	for rows.Next() {
		var d DirectionRecord
		var passed int
		if err := rows.Scan(&d.Direction, &passed, &d.Detail); err != nil {
			return nil, fmt.Errorf("scan direction: %w", err)
		}
		d.Passed = passed != 0
		recs = append(recs, d)
	}
	return recs, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
