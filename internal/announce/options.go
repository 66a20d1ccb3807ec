package announce

import (
	"net/http"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	"github.com/okian/enso/pkg/logger"
)

// Option applies a configuration option to the Announcer.
type Option func(*Announcer)

// WithWebhookURL sets the webhook endpoint. Empty disables delivery.
func WithWebhookURL(url string) Option {
	return func(a *Announcer) {
		a.webhookURL = url
	}
}

// WithTimezone sets the location whose midnight fires the prompt. Invalid
// names are ignored and the announcer stays on its previous zone.
func WithTimezone(name string) Option {
	return func(a *Announcer) {
		if loc, err := time.LoadLocation(name); err == nil {
			a.location = loc
		}
	}
}

// WithMention prepends a mention string to the prompt, e.g. "@everyone".
func WithMention(mention string) Option {
	return func(a *Announcer) {
		a.mention = mention
	}
}

// WithHTTPClient sets a custom HTTP client for webhook delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Announcer) {
		if client != nil {
			a.client = client
		}
	}
}

// WithClock sets the clock the schedule and the challenge day derive from.
func WithClock(clock challenge.Clock) Option {
	return func(a *Announcer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the announcer.
func WithLogger(logger logger.Logger) Option {
	return func(a *Announcer) {
		if logger != nil {
			a.logger = logger
		}
	}
}
