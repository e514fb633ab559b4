package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yourusername/mlearn/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS learn_history (
  id TEXT PRIMARY KEY,
  repo_id TEXT NOT NULL,
  repo_name TEXT NOT NULL,
  branch TEXT NOT NULL DEFAULT '',
  query TEXT NOT NULL,
  status TEXT NOT NULL CHECK(status IN ('running','done','failed')) DEFAULT 'running',
  output_path TEXT NOT NULL DEFAULT '',
  error TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL,
  finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_learn_history_started ON learn_history(started_at);
CREATE INDEX IF NOT EXISTS idx_learn_history_repo ON learn_history(repo_id);
`

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// DB is the learn history store.
type DB struct {
	*sql.DB
}

// DefaultDBPath returns the history database path inside dataDir.
func DefaultDBPath(dataDir string) string {
	return filepath.Join(dataDir, "history.db")
}

// Open opens or creates the database at the given path
func Open(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode and busy timeout
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema (CREATE IF NOT EXISTS is idempotent)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// Record inserts a running entry and returns its ID.
func (db *DB) Record(ctx context.Context, entry domain.HistoryEntry) (string, error) {
	id := uuid.NewString()
	startedAt := entry.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO learn_history (id, repo_id, repo_name, branch, query, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, entry.RepoID, entry.RepoName, entry.Branch, entry.Query,
		string(domain.LearnRunning), formatTime(startedAt))
	if err != nil {
		return "", fmt.Errorf("record history: %w", err)
	}
	return id, nil
}

// Complete marks an entry done with the path the microagent was written to.
func (db *DB) Complete(ctx context.Context, id, outputPath string) error {
	return db.finish(ctx, id, domain.LearnDone, outputPath, "")
}

// Fail marks an entry failed.
func (db *DB) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return db.finish(ctx, id, domain.LearnFailed, "", msg)
}

func (db *DB) finish(ctx context.Context, id string, status domain.LearnStatus, outputPath, errMsg string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE learn_history SET status = ?, output_path = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		string(status), outputPath, errMsg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update history: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recent entries first. A limit <= 0 returns everything.
func (db *DB) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, repo_id, repo_name, branch, query, status, output_path, error, started_at, finished_at
		FROM learn_history ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		var status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&e.ID, &e.RepoID, &e.RepoName, &e.Branch, &e.Query,
			&status, &e.OutputPath, &e.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Status = domain.LearnStatus(status)
		e.StartedAt = parseTime(startedAt)
		if finishedAt.Valid {
			e.FinishedAt = parseTime(finishedAt.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
