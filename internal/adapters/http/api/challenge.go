// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/enso/internal/announce"
	"github.com/okian/enso/internal/domain/challenge"
)

// scoringExplainer describes how submissions are judged; shown to players.
const scoringExplainer = "Draw a circle and submit it. Your score is the ratio " +
	"of your shape's area to the area of its minimum enclosing circle, times 100. " +
	"A perfect circle scores 100. One submission per UTC day."

// ChallengeDependencies defines the interface for challenge metadata and
// on-demand announcements.
type ChallengeDependencies interface {
	Today() challenge.Day
	AnnounceNow(ctx context.Context) error
	NextAnnouncement() time.Time
}

// ChallengeHandler handles challenge metadata requests.
type ChallengeHandler struct {
	deps ChallengeDependencies
}

// NewChallengeHandler creates a new challenge handler.
func NewChallengeHandler(deps ChallengeDependencies) *ChallengeHandler {
	return &ChallengeHandler{deps: deps}
}

type challengeResponse struct {
	Day              string `json:"day"`
	Scoring          string `json:"scoring"`
	NextAnnouncement string `json:"next_announcement,omitempty"`
}

// HandleGetChallenge handles GET /api/v1/challenge requests.
func (h *ChallengeHandler) HandleGetChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := challengeResponse{
		Day:     h.deps.Today().String(),
		Scoring: scoringExplainer,
	}
	if next := h.deps.NextAnnouncement(); !next.IsZero() {
		resp.NextAnnouncement = next.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePostAnnounce handles POST /api/v1/challenge/announce requests,
// triggering the daily prompt immediately.
func (h *ChallengeHandler) HandlePostAnnounce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.AnnounceNow(r.Context()); err != nil {
		switch {
		case errors.Is(err, announce.ErrNoWebhook):
			writeError(w, http.StatusConflict, "announcer_disabled", err)
		case errors.Is(err, announce.ErrWebhook):
			writeError(w, http.StatusBadGateway, "announce_failed", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
