// Package journal records every import attempt in a SQLite database so
// interrupted runs can resume without creating duplicates.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wudi/recipekit/recipe"
)

// Attempt outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Memory opens a journal that lives only as long as the process.
const Memory = ":memory:"

type Entry struct {
	RunID  string
	Key    string
	Title  string
	Source string
	Status string
	Error  string
	At     time.Time
}

type Journal struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	key TEXT NOT NULL,
	title TEXT,
	source TEXT,
	status TEXT NOT NULL,
	error TEXT,
	at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_key ON attempts(key, status);
CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);
`

// Open opens or creates the journal at path and starts a new run.
func Open(path string) (*Journal, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal: %w", err)
	}
	return &Journal{db: db, runID: uuid.NewString(), now: time.Now}, nil
}

func (j *Journal) RunID() string { return j.runID }

func (j *Journal) Close() error { return j.db.Close() }

// Key identifies a record across runs: its source when set, otherwise its
// title slug.
func Key(r recipe.Record) string {
	if s := strings.TrimSpace(r.Source); s != "" {
		return "source:" + strings.ToLower(s)
	}
	return "title:" + recipe.Slugify(r.Title)
}

// Imported reports whether any run recorded a successful attempt for key.
func (j *Journal) Imported(ctx context.Context, key string) (bool, error) {
	var one int
	err := j.db.QueryRowContext(ctx,
		`SELECT 1 FROM attempts WHERE key = ? AND status = ? LIMIT 1`, key, StatusOK).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query journal: %w", err)
	}
	return true, nil
}

// Record appends an attempt to the current run. RunID and At are filled in
// when empty.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.RunID == "" {
		e.RunID = j.runID
	}
	if e.At.IsZero() {
		e.At = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, key, title, source, status, error, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Key, e.Title, e.Source, e.Status, e.Error, e.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Entries returns the attempts of runID in insertion order, or of every run
// when runID is empty.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	q := `SELECT run_id, key, title, source, status, error, at FROM attempts`
	var args []interface{}
	if runID != "" {
		q += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	q += ` ORDER BY id`
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			title, source, errS sql.NullString
			at                  string
		)
		if err := rows.Scan(&e.RunID, &e.Key, &title, &source, &e.Status, &errS, &at); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Title, e.Source, e.Error = title.String, source.String, errS.String
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}
