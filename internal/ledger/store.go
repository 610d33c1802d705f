package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tourneyreel/internal/config"
	"tourneyreel/internal/services"
)

// FileName is the ledger database name inside the state directory.
const FileName = "tourneyreel.db"

// Status is the lifecycle state of an assembly attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Attempt is one game's most recent assembly record.
type Attempt struct {
	Key       string
	Label     string
	Status    Status
	Output    string
	Error     string
	RunID     string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists assembly attempts in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the ledger in cfg's state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, FileName))
}

// OpenPath opens the ledger database at path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Done reports whether key finished successfully in an earlier run and its
// recorded output is still on disk. A deleted or moved output counts as not
// done.
func (s *Store) Done(ctx context.Context, key string) (bool, error) {
	attempt, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if attempt == nil || attempt.Status != StatusDone {
		return false, nil
	}
	if attempt.Output == "" {
		return true, nil
	}
	if _, err := os.Stat(attempt.Output); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, services.Wrap(services.ErrTransient, "ledger", "done", attempt.Output, err)
	}
	return true, nil
}

// Start marks key as running, creating the record on first sight.
func (s *Store) Start(ctx context.Context, key, label string) error {
	ts := s.timestamp()
	runID, _ := services.RunIDFromContext(ctx)
	err := s.exec(ctx, `
INSERT INTO attempts (game_key, label, status, run_id, attempts, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
ON CONFLICT(game_key) DO UPDATE SET
    label = excluded.label,
    status = excluded.status,
    run_id = excluded.run_id,
    error_message = '',
    attempts = attempts + 1,
    updated_at = excluded.updated_at`,
		key, label, StatusRunning, runID, ts, ts)
	if err != nil {
		return services.Wrap(services.ErrTransient, "ledger", "start", key, err)
	}
	return nil
}

// Finish records the outcome of the running attempt for key.
func (s *Store) Finish(ctx context.Context, key, output string, runErr error) error {
	status, message := StatusDone, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
		output = ""
	}
	err := s.exec(ctx,
		`UPDATE attempts SET status = ?, output_path = ?, error_message = ?, updated_at = ? WHERE game_key = ?`,
		status, output, message, s.timestamp(), key)
	if err != nil {
		return services.Wrap(services.ErrTransient, "ledger", "finish", key, err)
	}
	return nil
}

// Get returns the record for key, or nil when none exists.
func (s *Store) Get(ctx context.Context, key string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, selectAttempt+" WHERE game_key = ?", key)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ledger", "get", key, err)
	}
	return attempt, nil
}

// List returns every record, most recently updated first. Passing statuses
// limits the result to those states.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]Attempt, error) {
	query := selectAttempt
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY updated_at DESC, game_key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ledger", "list", "", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "ledger", "list", "scan", err)
		}
		attempts = append(attempts, *attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "ledger", "list", "", err)
	}
	return attempts, nil
}

// ResetRunning returns attempts left running by an interrupted process to
// failed so they are retried.
func (s *Store) ResetRunning(ctx context.Context) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE attempts SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
			StatusFailed, "interrupted", s.timestamp(), StatusRunning)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "ledger", "reset running", "", err)
	}
	return affected, nil
}

// Forget deletes the record for key so the game is assembled again.
func (s *Store) Forget(ctx context.Context, key string) error {
	if err := s.exec(ctx, `DELETE FROM attempts WHERE game_key = ?`, key); err != nil {
		return services.Wrap(services.ErrTransient, "ledger", "forget", key, err)
	}
	return nil
}

const selectAttempt = `SELECT game_key, label, status, output_path, error_message, run_id, attempts, created_at, updated_at FROM attempts`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*Attempt, error) {
	var (
		a                Attempt
		status           string
		created, updated string
	)
	if err := row.Scan(&a.Key, &a.Label, &status, &a.Output, &a.Error, &a.RunID, &a.Attempts, &created, &updated); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &a, nil
}
