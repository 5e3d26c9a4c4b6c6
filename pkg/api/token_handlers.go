package api

import (
	"errors"
	"net/http"

	"github.com/hookcatch/hookcatch/pkg/httputil"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// handleCreateToken handles POST /api/tokens. The response carries the full
// webhook URL derived from the request.
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	base := token.BaseURL(s.cfg.BaseURL, r.Header, r.Host)
	tok, err := s.registry.Create(ctx, base)
	if err != nil {
		s.log.Error("failed to create token", "error", err)
		httputil.WriteInternalError(w, "storage_failure", "could not create token")
		return
	}

	s.metrics.TokensCreated.Inc()
	httputil.WriteOK(w, tok)
}

// handleListTokens handles GET /api/tokens.
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	base := token.BaseURL(s.cfg.BaseURL, r.Header, r.Host)
	tokens, err := s.registry.List(ctx, base)
	if err != nil {
		s.log.Error("failed to list tokens", "error", err)
		httputil.WriteInternalError(w, "storage_failure", "could not list tokens")
		return
	}

	httputil.WriteOK(w, tokens)
}

// handleDeleteToken handles DELETE /api/tokens/{token}. Deletion cascades to
// the token's capture log.
func (s *Server) handleDeleteToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	value := r.PathValue("token")
	if err := s.registry.Delete(ctx, value); err != nil {
		if errors.Is(err, token.ErrNotFound) {
			httputil.WriteNotFound(w, "not_found", "token not found")
			return
		}
		s.log.Error("failed to delete token", "token", value, "error", err)
		httputil.WriteInternalError(w, "storage_failure", "could not delete token")
		return
	}

	s.metrics.TokensDeleted.Inc()
	httputil.WriteOK(w, map[string]string{"status": "deleted"})
}
