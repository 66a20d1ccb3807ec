// Package api declares HTTP contracts and route registration helpers.
package api

// Defaults applied when no option overrides them.
const (
	defaultMaxImageBytes       = 8 << 20
	defaultLeaderboardLimit    = 10
	defaultLeaderboardMaxLimit = 100
	defaultVersion             = "dev"
)

// Option customizes the API server.
type Option func(*Server)

// WithMaxImageBytes caps the accepted submission body size.
func WithMaxImageBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

// WithLeaderboardLimits sets the default and maximum leaderboard page sizes.
func WithLeaderboardLimits(def, max int) Option {
	return func(s *Server) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max > 0 {
			s.maxLimit = max
		}
	}
}

// WithVersion reports the build version through /stats.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithRateLimiter attaches a limiter to the submissions route.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}
