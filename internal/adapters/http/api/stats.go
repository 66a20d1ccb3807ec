// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	version       string
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, version string) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, version: version}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats(r.Context())
	if stats == nil {
		stats = map[string]interface{}{}
	}
	stats["version"] = h.version
	_ = json.NewEncoder(w).Encode(stats)
}
