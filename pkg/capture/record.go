// Package capture defines the capture record model and the append/query
// services over a token's request log.
//
// Record is the wire shape consumed by the CLI log tailer and the web UI;
// its field names and nesting are a compatibility contract and must not
// change.
package capture

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Record is one immutable snapshot of an inbound request under a token.
// Records are never updated after creation; they are appended and deleted
// only en masse with their owning token.
type Record struct {
	// ID is strictly increasing within the owning token's namespace,
	// assigned by the store at append time.
	ID uint64 `json:"Id"`

	// Date is when the request was captured.
	Date time.Time `json:"Date"`

	// TokenID is the owning token value.
	TokenID string `json:"TokenId"`

	// Object carries the request snapshot itself.
	Object MessageObject `json:"MessageObject"`

	// Message is an optional free-form annotation. Currently always null;
	// kept for wire compatibility.
	Message *string `json:"Message"`
}

// MessageObject is the request snapshot nested inside a Record.
type MessageObject struct {
	// Method is the HTTP verb, case preserved as received.
	Method string `json:"Method"`

	// Value is the full request target (path plus query) as received.
	Value string `json:"Value"`

	// Headers maps header names to their ordered value sequences. A header
	// may repeat; multiplicity and per-key order are preserved.
	Headers map[string][]string `json:"Headers"`

	// QueryParameters lists decoded "key=value" pairs in the order they
	// appeared on the request target.
	QueryParameters []string `json:"QueryParameters"`

	// Body is the raw request body, verbatim. Null when the request
	// carried no body.
	Body *string `json:"Body"`

	// BodyObject is the parsed body when it is valid JSON, else null.
	BodyObject json.RawMessage `json:"BodyObject"`
}

// NewMessage builds the immutable request snapshot for a capture. The body
// is stored byte-for-byte; when it parses as JSON a structured copy is kept
// alongside for UI consumption.
func NewMessage(method, target string, headers map[string][]string, body []byte) MessageObject {
	m := MessageObject{
		Method:          method,
		Value:           target,
		Headers:         copyHeaders(headers),
		QueryParameters: queryPairs(target),
	}

	if len(body) > 0 {
		s := string(body)
		m.Body = &s
		if json.Valid(body) {
			m.BodyObject = json.RawMessage(append([]byte(nil), body...))
		}
	}

	return m
}

func copyHeaders(headers map[string][]string) map[string][]string {
	out := make(map[string][]string, len(headers))
	for name, values := range headers {
		out[name] = append([]string(nil), values...)
	}
	return out
}

// queryPairs decodes the query portion of target into ordered "key=value"
// strings. url.Values would lose the original ordering, so the raw query is
// walked directly.
func queryPairs(target string) []string {
	u, err := url.Parse(target)
	if err != nil || u.RawQuery == "" {
		return nil
	}

	var pairs []string
	for _, part := range strings.Split(u.RawQuery, "&") {
		if part == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			val = rawVal
		}
		pairs = append(pairs, key+"="+val)
	}
	return pairs
}
