package drawtest

import "time"

// Config holds configuration for the drawing test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumDrawings int           // Number of drawings to generate
	TopN        int           // Number of top entries to fetch
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Day         string        // Leaderboard day to query (empty = today)
	Shape       string        // Force one shape family (empty = mixed)
	OutputDir   string        // Directory for generated drawings
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
	Verify      bool          // Verify leaderboard ordering and score bands
}

// Drawing is one generated submission: a user and their PNG-encoded shape.
type Drawing struct {
	UserID int64
	Shape  string
	PNG    []byte
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank        int     `json:"rank"`
	UserID      int64   `json:"user_id"`
	Score       float64 `json:"score"`
	SubmittedAt string  `json:"submitted_at"`
}

// SubmissionResponse represents the reply to an accepted submission
type SubmissionResponse struct {
	UserID      int64   `json:"user_id"`
	Day         string  `json:"day"`
	Score       float64 `json:"score"`
	SubmittedAt string  `json:"submitted_at"`
}

// ErrorResponse represents a rejection reply
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Score   *float64 `json:"score,omitempty"`
}

// LeaderboardResponse represents the reply to a leaderboard query
type LeaderboardResponse struct {
	Day     string  `json:"day"`
	Entries []Entry `json:"entries"`
}

// Stats holds test statistics
type Stats struct {
	DrawingsGenerated  int
	DrawingsSubmitted  int
	DrawingsAccepted   int
	DrawingsDuplicate  int
	DrawingsRejected   int
	DrawingsFailed     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
