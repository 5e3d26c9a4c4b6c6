// Package token implements the token registry: creation, listing, and
// deletion of the opaque tokens that name webhook capture namespaces.
package token

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when an operation references a token that does not
// exist (or no longer exists).
var ErrNotFound = errors.New("token not found")

// Token is one capture namespace. WebhookURL is a derived view (base URL plus
// the token value) and is recomputed on every read; only Value and CreatedAt
// are authoritative.
type Token struct {
	// Value is the opaque unique identifier, immutable after creation.
	Value string `json:"token"`

	// WebhookURL is the externally visible endpoint that feeds this
	// token's capture log.
	WebhookURL string `json:"webhook_url"`

	// CreatedAt is when the token was created.
	CreatedAt time.Time `json:"created_at"`
}

// JoinWebhookURL builds the webhook URL for a token value under base.
func JoinWebhookURL(base, value string) string {
	return strings.TrimRight(base, "/") + "/" + value
}
