package ledger

import "time"

// Default SQLite tuning constants.
const (
	defaultBusyTimeout = 5 * time.Second
)

// Option applies a configuration option to the SQLite ledger.
type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout sets how long a statement waits on a locked database
// before giving up. Values of zero or below are ignored.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}
