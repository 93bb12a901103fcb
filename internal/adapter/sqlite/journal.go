// Package sqlite persists launch sessions in a machine-local database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"slipway/internal/launch"
)

var _ launch.Journal = (*Journal)(nil)

// Journal stores finished launch sessions. Every launch appends one
// row; status and history read them back.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path, creating parent
// directories as needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal db journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal db busy timeout: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS launch_sessions (
	id TEXT PRIMARY KEY,
	app TEXT NOT NULL,
	phase TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	endpoint TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	steps_json TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT ''
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize launch sessions schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, s launch.Session) error {
	steps, err := json.Marshal(s.Steps)
	if err != nil {
		return fmt.Errorf("marshal session steps: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO launch_sessions (id, app, phase, image, endpoint, started_at, finished_at, steps_json, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 phase = excluded.phase,
		 image = excluded.image,
		 endpoint = excluded.endpoint,
		 finished_at = excluded.finished_at,
		 steps_json = excluded.steps_json,
		 error = excluded.error`,
		s.ID,
		s.App,
		s.Phase.String(),
		s.Image,
		s.Endpoint,
		s.StartedAt.UTC().Format(time.RFC3339Nano),
		s.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(steps),
		s.Error,
	)
	if err != nil {
		return fmt.Errorf("record launch session: %w", err)
	}
	return nil
}

// List returns sessions newest first. An empty app matches all apps;
// limit <= 0 applies a default of 20.
func (j *Journal) List(ctx context.Context, app string, limit int) ([]launch.Session, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, app, phase, image, endpoint, started_at, finished_at, steps_json, error
		 FROM launch_sessions`
	args := []any{}
	if app != "" {
		query += ` WHERE app = ?`
		args = append(args, app)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list launch sessions: %w", err)
	}
	defer rows.Close()

	out := make([]launch.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launch session rows: %w", err)
	}
	return out, nil
}

// Latest returns the most recent session for app, if any.
func (j *Journal) Latest(ctx context.Context, app string) (launch.Session, bool, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, app, phase, image, endpoint, started_at, finished_at, steps_json, error
		 FROM launch_sessions WHERE app = ? ORDER BY started_at DESC LIMIT 1`, app)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return launch.Session{}, false, nil
		}
		return launch.Session{}, false, err
	}
	return s, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (launch.Session, error) {
	var s launch.Session
	var phase, startedAt, finishedAt, stepsJSON string
	if err := row.Scan(&s.ID, &s.App, &phase, &s.Image, &s.Endpoint, &startedAt, &finishedAt, &stepsJSON, &s.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return launch.Session{}, err
		}
		return launch.Session{}, fmt.Errorf("scan launch session row: %w", err)
	}

	p, ok := launch.ParsePhase(phase)
	if !ok {
		return launch.Session{}, fmt.Errorf("launch session %q: unknown phase %q", s.ID, phase)
	}
	s.Phase = p

	var err error
	if s.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return launch.Session{}, fmt.Errorf("launch session %q: parse started_at: %w", s.ID, err)
	}
	if s.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return launch.Session{}, fmt.Errorf("launch session %q: parse finished_at: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(stepsJSON), &s.Steps); err != nil {
		return launch.Session{}, fmt.Errorf("launch session %q: unmarshal steps: %w", s.ID, err)
	}
	return s, nil
}
