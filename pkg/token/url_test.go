package token

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseURLConfigured(t *testing.T) {
	assert.Equal(t, "https://hooks.example.com",
		BaseURL("https://hooks.example.com/", nil, "ignored:1234"))
	assert.Equal(t, "https://hooks.example.com",
		BaseURL("https://hooks.example.com", nil, ""))
}

func TestBaseURLForwardedHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Forwarded-Proto", "https")
	h.Set("X-Forwarded-Host", "hooks.example.com")
	assert.Equal(t, "https://hooks.example.com", BaseURL("", h, "internal:8080"))
}

func TestBaseURLForwardedHeadersCommaSeparated(t *testing.T) {
	// Proxies append; the first element is the client-facing one.
	h := http.Header{}
	h.Set("X-Forwarded-Proto", "https, http")
	h.Set("X-Forwarded-Host", "hooks.example.com, inner.local")
	assert.Equal(t, "https://hooks.example.com", BaseURL("", h, "internal:8080"))
}

func TestBaseURLRejectsBogusForwardedProto(t *testing.T) {
	h := http.Header{}
	h.Set("X-Forwarded-Proto", "gopher")
	h.Set("X-Forwarded-Host", "hooks.example.com")
	assert.Equal(t, "https://public.example.com", BaseURL("", h, "public.example.com"))
}

func TestBaseURLHostFallback(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", BaseURL("", nil, "localhost:3000"))
	assert.Equal(t, "http://127.0.0.1:3000", BaseURL("", nil, "127.0.0.1:3000"))
	assert.Equal(t, "https://hooks.example.com", BaseURL("", nil, "hooks.example.com"))
	assert.Equal(t, "http://localhost:3000", BaseURL("", nil, ""))
}

func TestJoinWebhookURL(t *testing.T) {
	assert.Equal(t, "http://x/abc", JoinWebhookURL("http://x", "abc"))
	assert.Equal(t, "http://x/abc", JoinWebhookURL("http://x/", "abc"))
}
