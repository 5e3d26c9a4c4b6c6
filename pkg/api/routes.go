// Route registration for the HTTP surface.

package api

import (
	"net/http"
)

// registerRoutes sets up all routes. Literal segments win over wildcards, so
// the management API and the fixed endpoints are never captured by the
// token catch-alls.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Landing page and static assets
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /static/{file}", s.handleStatic)

	// Health and metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Token management
	mux.HandleFunc("POST /api/tokens", s.handleCreateToken)
	mux.HandleFunc("GET /api/tokens", s.handleListTokens)
	mux.HandleFunc("DELETE /api/tokens/{token}", s.handleDeleteToken)

	// Log query
	mux.HandleFunc("GET /{token}/log/{count}", s.handleLogQuery)

	// Webhook ingestion catch-all, any method, any depth
	mux.HandleFunc("/{token}", s.handleIngest)
	mux.HandleFunc("/{token}/{path...}", s.handleIngest)
}
