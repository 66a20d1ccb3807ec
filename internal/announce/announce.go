// Package announce posts the daily challenge prompt to a chat webhook.
//
// The chat platform stays out of process: the announcer speaks plain
// Discord-compatible webhook JSON, so the transport layer needs no SDK.
// Scheduling is a timer loop on local midnight in the configured timezone;
// the timezone only decides when the prompt fires, never the ledger day,
// which is always UTC.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	"github.com/okian/enso/pkg/logger"
	"github.com/okian/enso/pkg/metrics"
)

// Default announcer configuration constants.
const (
	defaultPostTimeout = 10 * time.Second
)

// Announcer posts the daily challenge prompt at local midnight.
type Announcer struct {
	mu         sync.RWMutex
	webhookURL string
	location   *time.Location
	mention    string

	client *http.Client
	clock  challenge.Clock

	done chan struct{}

	logger logger.Logger
}

// New creates an Announcer with configuration options. Without a webhook
// URL the schedule still runs but every firing is skipped, so enabling the
// announcer later through UpdateSettings needs no restart.
func New(opts ...Option) *Announcer {
	a := &Announcer{
		location: time.UTC,
		client:   &http.Client{Timeout: defaultPostTimeout},
		clock:    challenge.UTCClock{},
		done:     make(chan struct{}),
		logger:   logger.Get().Named("announce"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start launches the midnight timer loop. It returns immediately; the loop
// stops when ctx is canceled.
func (a *Announcer) Start(ctx context.Context) {
	go a.run(ctx)
}

// Done is closed once the timer loop has exited.
func (a *Announcer) Done() <-chan struct{} {
	return a.done
}

func (a *Announcer) run(ctx context.Context) {
	defer close(a.done)

	for {
		next := a.NextAnnouncement()
		timer := time.NewTimer(next.Sub(a.clock.Now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := a.AnnounceNow(ctx); err != nil {
				a.logger.Warn(ctx, "daily announcement failed", logger.Error(err))
			}
		}
	}
}

// NextAnnouncement returns the next local midnight in the configured
// timezone.
func (a *Announcer) NextAnnouncement() time.Time {
	a.mu.RLock()
	loc := a.location
	a.mu.RUnlock()

	now := a.clock.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1)
}

// AnnounceNow posts the challenge prompt immediately. Disabled announcers
// (no webhook URL) fail with ErrNoWebhook so callers can tell "not
// configured" apart from a delivery failure.
func (a *Announcer) AnnounceNow(ctx context.Context) error {
	a.mu.RLock()
	url := a.webhookURL
	loc := a.location
	mention := a.mention
	a.mu.RUnlock()

	if url == "" {
		metrics.RecordAnnouncement("skipped")
		return ErrNoWebhook
	}

	day := challenge.Today(a.clock)
	text := fmt.Sprintf(
		"Daily circle challenge for %s is open! Draw your best freehand circle and submit it. "+
			"Scoring compares your shape's area against its minimum enclosing circle; a perfect circle scores 100. "+
			"The round ends at midnight %s.",
		day, loc,
	)
	if mention != "" {
		text = mention + " " + text
	}

	body, err := json.Marshal(webhookPayload{Content: text})
	if err != nil {
		metrics.RecordAnnouncement("failed")
		return fmt.Errorf("%w: encode payload: %v", ErrWebhook, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		metrics.RecordAnnouncement("failed")
		return fmt.Errorf("%w: build request: %v", ErrWebhook, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		metrics.RecordAnnouncement("failed")
		return fmt.Errorf("%w: %v", ErrWebhook, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordAnnouncement("failed")
		return fmt.Errorf("%w: webhook replied %d", ErrWebhook, resp.StatusCode)
	}

	metrics.RecordAnnouncement("sent")
	a.logger.Info(ctx, "challenge announced",
		logger.String("day", day.String()),
		logger.String("timezone", loc.String()),
	)
	return nil
}

// UpdateSettings swaps the webhook URL, timezone, and mention at runtime,
// for config reload. An unparseable timezone leaves the previous one in
// place and reports the error.
func (a *Announcer) UpdateSettings(webhookURL, timezone, mention string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrBadSettings, timezone, err)
	}

	a.mu.Lock()
	a.webhookURL = webhookURL
	a.location = loc
	a.mention = mention
	a.mu.Unlock()
	return nil
}

// Enabled reports whether a webhook URL is configured.
func (a *Announcer) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.webhookURL != ""
}

// webhookPayload is the Discord-compatible webhook body.
type webhookPayload struct {
	Content string `json:"content"`
}
