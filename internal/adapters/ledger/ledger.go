// Package ledger persists daily circle submissions and serves ranked reads.
package ledger

import (
	"context"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	model "github.com/okian/enso/internal/domain/model"
)

// Entry is one leaderboard row for a challenge day.
type Entry struct {
	UserID      int64
	Score       float64
	SubmittedAt time.Time
}

// Ledger is the durable record of daily submissions. Implementations must
// enforce the one-submission-per-user-per-day rule with a storage-level
// key, not a read-then-write, so concurrent writers cannot both succeed.
type Ledger interface {
	// HasSubmitted reports whether the user already holds a recorded score
	// for the day. It never mutates state.
	HasSubmitted(ctx context.Context, userID int64, day challenge.Day) (bool, error)

	// Record inserts the submission. A second record for the same
	// (user, day) pair fails with ErrDuplicateSubmission and leaves the
	// first row untouched. Recorded rows are immutable.
	Record(ctx context.Context, sub model.Submission) error

	// RankedScores returns every entry for the day ordered by score
	// descending; equal scores keep submission order. A day with no
	// submissions yields an empty, non-nil slice.
	RankedScores(ctx context.Context, day challenge.Day) ([]Entry, error)

	// Count returns the total number of recorded submissions.
	Count(ctx context.Context) (int64, error)

	// CountDay returns the number of submissions recorded for the day.
	CountDay(ctx context.Context, day challenge.Day) (int64, error)

	// Close releases the underlying storage.
	Close() error
}
