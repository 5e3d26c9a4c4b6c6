package token

import (
	"net/http"
	"strings"
)

// defaultHost is assumed when a request carries no Host information at all.
const defaultHost = "localhost:3000"

// BaseURL resolves the externally visible base URL used to build webhook
// links. A configured base (trailing slash stripped) always wins. Otherwise
// the base is derived from proxy forwarding headers, falling back to the
// request host with a scheme guessed from it.
func BaseURL(configured string, header http.Header, host string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	proto := firstForwarded(header, "X-Forwarded-Proto")
	fwdHost := firstForwarded(header, "X-Forwarded-Host")
	if (proto == "http" || proto == "https") && fwdHost != "" {
		return proto + "://" + fwdHost
	}

	if host == "" {
		host = defaultHost
	}
	scheme := "https"
	if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + host
}

// firstForwarded returns the first element of a possibly comma-separated
// forwarding header value. Proxies append to these headers, so the first
// element is the client-facing one.
func firstForwarded(header http.Header, name string) string {
	v := header.Get(name)
	if v == "" {
		return ""
	}
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
