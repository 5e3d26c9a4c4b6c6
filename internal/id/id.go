// Package id provides identifier generation and encoding utilities.
// This is the canonical source for token values and record-key encoding
// across the codebase.
package id

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// recordIDWidth is the number of decimal digits a record id occupies inside
// a store key. Fixed-width, zero-padded ids keep lexicographic key order
// identical to numeric id order, which the store relies on for range scans.
const recordIDWidth = 20

// NewToken generates a new opaque token value (UUID v4, 122 bits of
// randomness).
func NewToken() string {
	return uuid.NewString()
}

// IsToken reports whether s has the shape of a token value.
func IsToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// FormatRecordID renders a record id as a fixed-width decimal string.
func FormatRecordID(n uint64) string {
	return fmt.Sprintf("%0*d", recordIDWidth, n)
}

// ParseRecordID decodes a fixed-width record id produced by FormatRecordID.
func ParseRecordID(s string) (uint64, error) {
	if len(s) != recordIDWidth {
		return 0, fmt.Errorf("record id must be %d digits, got %d", recordIDWidth, len(s))
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q: %w", s, err)
	}
	return n, nil
}
