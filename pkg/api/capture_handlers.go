package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hookcatch/hookcatch/internal/id"
	"github.com/hookcatch/hookcatch/pkg/httputil"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// browserProbes are well-known paths browsers and crawlers request on any
// host. They get a plain 404 instead of a token validation error.
var browserProbes = map[string]bool{
	"favicon.ico":   true,
	"robots.txt":    true,
	"sitemap.xml":   true,
	"manifest.json": true,
}

// ingestAck is the acknowledgement body returned for a captured request.
type ingestAck struct {
	Status    string    `json:"status"`
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// handleIngest captures any request addressed to /{token} or a path below
// it, regardless of method.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("token")

	if browserProbes[value] {
		http.NotFound(w, r)
		return
	}
	if !id.IsToken(value) {
		httputil.WriteBadRequest(w, "invalid_token", "malformed token")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WritePayloadTooLarge(w, "body_too_large", "request body exceeds capture limit")
			return
		}
		httputil.WriteBadRequest(w, "unreadable_body", "could not read request body")
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	rec, err := s.captures.Append(ctx, value, r.Method, r.URL.RequestURI(), r.Header, body)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			httputil.WriteNotFound(w, "not_found", "token not found")
			return
		}
		s.log.Error("failed to capture request", "token", value, "error", err)
		httputil.WriteInternalError(w, "storage_failure", "could not record request")
		return
	}

	s.metrics.CapturesTotal.Inc()
	httputil.WriteOK(w, ingestAck{
		Status:    "received",
		ID:        rec.ID,
		Timestamp: rec.Date,
	})
}

// handleLogQuery handles GET /{token}/log/{count} and returns the newest
// captures first.
func (s *Server) handleLogQuery(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("token")
	if !id.IsToken(value) {
		httputil.WriteBadRequest(w, "invalid_token", "malformed token")
		return
	}

	count, err := strconv.Atoi(r.PathValue("count"))
	if err != nil || count < 0 {
		httputil.WriteBadRequest(w, "invalid_count", "count must be a non-negative integer")
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	records, err := s.captures.Recent(ctx, value, count)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			httputil.WriteNotFound(w, "not_found", "token not found")
			return
		}
		s.log.Error("failed to query log", "token", value, "error", err)
		httputil.WriteInternalError(w, "storage_failure", "could not read capture log")
		return
	}

	httputil.WriteOK(w, records)
}
