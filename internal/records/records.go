// Package records keeps finished runs in a local SQLite database.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

// Run is one finished game.
type Run struct {
	ID          int64
	SessionID   string
	Mode        string
	Difficulty  string
	Seed        uint64
	Score       int
	Lines       int
	BestCombo   int
	BestCascade int
	Frames      int
	Outcome     string
	PlayedTS    time.Time
}

// Store persists runs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordRun(ctx context.Context, run Run) (int64, error)
	TopRuns(ctx context.Context, mode string, limit int) ([]Run, error)
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			seed TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			best_combo INTEGER NOT NULL DEFAULT 0,
			best_cascade INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			played_ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_mode_score ON runs(mode, score DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) (int64, error) {
	played := run.PlayedTS
	if played.IsZero() {
		played = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(session_id, mode, difficulty, seed, score, lines, best_combo, best_cascade, frames, outcome, played_ts)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		run.SessionID,
		strings.TrimSpace(run.Mode),
		run.Difficulty,
		fmt.Sprintf("%d", run.Seed),
		run.Score,
		run.Lines,
		run.BestCombo,
		run.BestCascade,
		run.Frames,
		run.Outcome,
		played.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// TopRuns returns the best runs for mode by score, newest first on ties.
// An empty mode lists every mode.
func (s *SQLiteStore) TopRuns(ctx context.Context, mode string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, mode, difficulty, seed, score, lines, best_combo, best_cascade, frames, outcome, played_ts
		FROM runs
		WHERE ? = '' OR mode = ?
		ORDER BY score DESC, played_ts DESC, id DESC
		LIMIT ?`, mode, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r      Run
			seed   string
			played string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Mode, &r.Difficulty, &seed, &r.Score, &r.Lines,
			&r.BestCombo, &r.BestCascade, &r.Frames, &r.Outcome, &played); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if _, err := fmt.Sscan(seed, &r.Seed); err != nil {
			r.Seed = 0
		}
		if ts, err := time.Parse(timeLayout, played); err == nil {
			r.PlayedTS = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
