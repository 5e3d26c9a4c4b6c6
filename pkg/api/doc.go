// Package api implements the HTTP surface of the service: the token
// management REST API, the log query endpoint, and the catch-all webhook
// ingestion gateway.
//
// Routing relies on method-qualified ServeMux patterns. Literal segments
// take precedence over wildcards, so the management API under /api and the
// fixed endpoints (/healthz, /metrics, /static) are never shadowed by the
// catch-all token routes.
package api
