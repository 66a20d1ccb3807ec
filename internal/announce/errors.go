package announce

import "errors"

// Sentinel kinds for announcer errors. ErrNoWebhook means the announcer is
// deliberately unconfigured; ErrWebhook means a configured delivery failed.
var (
	ErrNoWebhook   = errors.New("no announcement webhook configured")
	ErrWebhook     = errors.New("announcement webhook failed")
	ErrBadSettings = errors.New("invalid announcer settings")
)
