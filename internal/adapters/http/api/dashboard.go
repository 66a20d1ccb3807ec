// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"net/url"
)

// dashboardHandler handles dashboard requests
type dashboardHandler struct{}

// newDashboardHandler creates a new dashboard handler
func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
// Returns an HTML page that renders the current leaderboard from the API.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	// http.ServeFileFS requires Go 1.22; serve the fixed file through
	// http.FileServer on a copy of the request with the path pinned.
	r2 := new(http.Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = "/dashboard.html"
	http.FileServer(http.FS(dashboardFS)).ServeHTTP(w, r2)
}

// StaticHandler serves the embedded static assets under /static/.
func (h *dashboardHandler) StaticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(dashboardFS)))
}
