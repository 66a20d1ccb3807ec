package service

import "errors"

// Sentinel kinds for submission outcomes surfaced by the service. These
// are business outcomes, not transport errors; the HTTP layer maps each to
// its own status code and user message.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrAlreadySubmitted   = errors.New("user already submitted for this day")
	ErrSubmissionInFlight = errors.New("a submission for this user and day is being scored")
	ErrBusy               = errors.New("submission queue is full")
)
