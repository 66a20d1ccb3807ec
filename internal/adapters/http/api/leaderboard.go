// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/enso/internal/domain/challenge"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, day challenge.Day, limit int) ([]Entry, error)
	Today() challenge.Day
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetLeaderboard handles GET /api/v1/leaderboard?day=YYYY-MM-DD&limit=N
// requests. Both parameters are optional: day defaults to today, limit to the
// configured default.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	day := h.deps.Today()
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		parsed, err := challenge.ParseDay(dayStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: day must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		day = parsed
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded",
				fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
			return
		}
		limit = n
	}

	entries, err := h.deps.Leaderboard(r.Context(), day, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Day: day.String(), Entries: entries})
}
