package ledger

import "errors"

// Sentinel kinds for ledger errors. ErrDuplicateSubmission is a business
// outcome, not a storage failure; callers that see ErrStore after a
// successful scoring run must surface the score alongside the failure.
var (
	ErrOpen                = errors.New("ledger open failed")
	ErrStore               = errors.New("ledger storage failed")
	ErrDuplicateSubmission = errors.New("submission already recorded for this user and day")
)
