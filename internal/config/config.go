// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults, Load(ctx) to layer
//     file and environment sources on top.
//   - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite submissions database. ":memory:" keeps
	// the ledger in process memory.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory submission queue. Every queued job
	// holds a caller waiting on its outcome, so keep this modest.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers, which caps
	// concurrent image decodes. Zero means one worker per CPU.
	WorkerCount int `koanf:"worker_count"`

	// MaxImageBytes caps the accepted upload size.
	MaxImageBytes int64 `koanf:"max_image_bytes"`

	// LuminanceThreshold is the ink cutoff for binarization; pixels at or
	// below it count as drawn.
	LuminanceThreshold int `koanf:"luminance_threshold"`

	// MaxImagePixels rejects images whose header declares a larger area.
	MaxImagePixels int `koanf:"max_image_pixels"`

	// LeaderboardDefaultLimit applies when a leaderboard query names no limit.
	LeaderboardDefaultLimit int `koanf:"leaderboard_default_limit"`

	// LeaderboardMaxLimit caps GET /api/v1/leaderboard?limit.
	LeaderboardMaxLimit int `koanf:"leaderboard_max_limit"`

	// SubmitRatePerSecond and SubmitRateBurst configure the per-client
	// token bucket on the submissions route. A rate of zero or below
	// disables limiting.
	SubmitRatePerSecond float64 `koanf:"submit_rate_per_second"`
	SubmitRateBurst     int     `koanf:"submit_rate_burst"`

	// AnnounceWebhookURL receives the daily challenge prompt. Empty
	// disables the announcer.
	AnnounceWebhookURL string `koanf:"announce_webhook_url"`

	// AnnounceTimezone is the IANA zone whose midnight fires the prompt.
	// It never affects the ledger day, which is always UTC.
	AnnounceTimezone string `koanf:"announce_timezone"`

	// AnnounceMention is prepended to the prompt, e.g. "@everyone".
	AnnounceMention string `koanf:"announce_mention"`
}

// Default configuration values.
const (
	defaultAddr          = ":9080"
	defaultDBPath        = "enso.db"
	defaultQueueSize     = 256
	defaultMaxImageBytes = 8 << 20 // 8 MiB
	defaultThreshold     = 127
	defaultMaxPixels     = 16 << 20
	defaultLimit         = 10
	defaultMaxLimit      = 100
	defaultSubmitRate    = 2.0
	defaultSubmitBurst   = 5
	defaultTimezone      = "UTC"
)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    defaultAddr,
		DBPath:                  defaultDBPath,
		QueueSize:               defaultQueueSize,
		WorkerCount:             runtime.NumCPU(),
		MaxImageBytes:           defaultMaxImageBytes,
		LuminanceThreshold:      defaultThreshold,
		MaxImagePixels:          defaultMaxPixels,
		LeaderboardDefaultLimit: defaultLimit,
		LeaderboardMaxLimit:     defaultMaxLimit,
		SubmitRatePerSecond:     defaultSubmitRate,
		SubmitRateBurst:         defaultSubmitBurst,
		AnnounceTimezone:        defaultTimezone,
	}
}

// Validate checks the loaded configuration for values the service cannot
// start with. Soft values (limits, rates) are clamped instead of rejected.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.AnnounceTimezone); err != nil {
		return fmt.Errorf("%w: announce_timezone %q: %v", ErrInvalidConfig, c.AnnounceTimezone, err)
	}

	if c.QueueSize < 1 {
		c.QueueSize = defaultQueueSize
	}
	if c.MaxImageBytes < 1 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	if c.LeaderboardDefaultLimit < 1 {
		c.LeaderboardDefaultLimit = defaultLimit
	}
	if c.LeaderboardMaxLimit < c.LeaderboardDefaultLimit {
		c.LeaderboardMaxLimit = defaultMaxLimit
	}
	if c.SubmitRateBurst < 1 {
		c.SubmitRateBurst = defaultSubmitBurst
	}
	return nil
}

// Location resolves the announcer timezone. Validate has already checked
// it parses; fall back to UTC anyway if it does not.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AnnounceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
