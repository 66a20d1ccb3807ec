package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/okian/enso/internal/adapters/ledger/migrations"
	challenge "github.com/okian/enso/internal/domain/challenge"
	model "github.com/okian/enso/internal/domain/model"
)

// MemoryPath opens the ledger entirely in process memory. Tests and the
// load CLI use it; production configs point at a file.
const MemoryPath = ":memory:"

// SQLite implements Ledger on a single SQLite database. The composite
// primary key (user_id, day) is the uniqueness enforcement point the rest
// of the pipeline relies on.
type SQLite struct {
	db *sql.DB
}

// Open opens the submissions database at path, creating it and applying
// embedded migrations as needed.
func Open(path string, opts ...Option) (*SQLite, error) {
	o := &options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrOpen)
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath
	if cleanPath != MemoryPath {
		dsn = cleanPath + fmt.Sprintf(
			"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
			o.busyTimeout.Milliseconds(),
		)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if cleanPath == MemoryPath {
		// A second pooled connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrOpen, err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasSubmitted reports whether the user already holds a score for the day.
func (s *SQLite) HasSubmitted(ctx context.Context, userID int64, day challenge.Day) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM submissions WHERE user_id = ? AND day = ?`,
		userID, day.String(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: duplicate check: %v", ErrStore, err)
	}
	return true, nil
}

// Record inserts one submission row. The primary key turns a concurrent
// duplicate into ErrDuplicateSubmission instead of a second row.
func (s *SQLite) Record(ctx context.Context, sub model.Submission) error {
	if sub.Day.IsZero() {
		return fmt.Errorf("%w: zero challenge day", ErrStore)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (user_id, day, score, submitted_at) VALUES (?, ?, ?, ?)`,
		sub.UserID, sub.Day.String(), sub.Score, sub.SubmittedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("%w: record submission: %v", ErrStore, err)
	}
	return nil
}

// RankedScores returns the day's entries ordered best first. Ties keep
// submission order, with user id as the final stable tiebreak.
func (s *SQLite) RankedScores(ctx context.Context, day challenge.Day) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, submitted_at
		   FROM submissions
		  WHERE day = ?
		  ORDER BY score DESC, submitted_at ASC, user_id ASC`,
		day.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ranked scores: %v", ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e      Entry
			millis int64
		)
		if err := rows.Scan(&e.UserID, &e.Score, &millis); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", ErrStore, err)
		}
		e.SubmittedAt = time.UnixMilli(millis).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate entries: %v", ErrStore, err)
	}
	return entries, nil
}

// Count returns the total number of recorded submissions.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStore, err)
	}
	return n, nil
}

// CountDay returns the number of submissions recorded for the day.
func (s *SQLite) CountDay(ctx context.Context, day challenge.Day) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE day = ?`, day.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count day: %v", ErrStore, err)
	}
	return n, nil
}

// isUniqueViolation matches the constraint failure raised when the
// (user_id, day) primary key already holds a row.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "submissions.user_id")
}

var _ Ledger = (*SQLite)(nil)
