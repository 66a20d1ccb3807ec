// Package model contains domain models passed between layers.
package model

import (
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
)

// Submission is one recorded circle-drawing attempt: a user's score for a
// challenge day.
type Submission struct {
	UserID      int64
	Day         challenge.Day
	Score       float64
	SubmittedAt time.Time
}

// Job is one submission waiting to be scored. It travels from the intake
// handler through the queue to a scoring worker; the image bytes are
// dropped once the worker finishes with them.
type Job struct {
	ID         string        // unique id for tracing
	UserID     int64         // submitting user
	Day        challenge.Day // challenge day derived at receive time
	Image      []byte        // raw attachment bytes
	ReceivedAt time.Time

	// Result carries the job's resolution back to the waiting submitter.
	// It must be buffered with capacity 1; the worker sends exactly once
	// and never blocks on a caller that gave up.
	Result chan Outcome
}

// Outcome resolves a Job. On success Err is nil and Submission holds the
// recorded row. When scoring succeeded but the ledger write failed,
// Submission still carries the achieved score so callers can report it
// alongside the storage error.
type Outcome struct {
	Submission Submission
	Err        error
}
