// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/enso/internal/app"
	"github.com/okian/enso/internal/domain/challenge"
	"github.com/okian/enso/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit runs one drawing through the scoring pipeline and blocks
	// until it resolves.
	Submit(ctx context.Context, userID int64, image []byte) (model.Submission, error)

	// Read operations expose leaderboard and challenge data.
	Leaderboard(ctx context.Context, day challenge.Day, limit int) ([]Entry, error)
	Today() challenge.Day

	// Announcer passthroughs.
	AnnounceNow(ctx context.Context) error
	NextAnnouncement() time.Time
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = service.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	maxImageBytes int64
	defaultLimit  int
	maxLimit      int
	version       string
	limiter       *RateLimiter

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	challengeHandler   *ChallengeHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxImageBytes: defaultMaxImageBytes,
		defaultLimit:  defaultLeaderboardLimit,
		maxLimit:      defaultLeaderboardMaxLimit,
		version:       defaultVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewRateLimiter(0, 0)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider, s.version)
	s.submissionsHandler = NewSubmissionsHandler(deps, s.maxImageBytes)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.defaultLimit, s.maxLimit)
	s.challengeHandler = NewChallengeHandler(deps)
	s.dashboardHandler = newDashboardHandler()
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.Handle("/static/", s.dashboardHandler.StaticHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/submissions",
		s.limiter.Middleware(MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions")))
	mux.HandleFunc("/api/v1/leaderboard",
		MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/v1/challenge",
		MetricsMiddleware(s.challengeHandler.HandleGetChallenge, "challenge"))
	mux.HandleFunc("/api/v1/challenge/announce",
		MetricsMiddleware(s.challengeHandler.HandlePostAnnounce, "announce"))
}

// submissionResponse mirrors the OpenAPI schema for POST /api/v1/submissions.
type submissionResponse struct {
	UserID      int64   `json:"user_id"`
	Day         string  `json:"day"`
	Score       float64 `json:"score"`
	SubmittedAt string  `json:"submitted_at"`
}

// leaderboardResponse mirrors the OpenAPI schema for GET /api/v1/leaderboard.
type leaderboardResponse struct {
	Day     string  `json:"day"`
	Entries []Entry `json:"entries"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Score   *float64 `json:"score,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
