package storage

import (
	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// Store is the full persistence surface: the token registry side and the
// capture log side, backed by one database so that cross-cutting operations
// (cascade delete, existence checks during append) stay consistent.
type Store interface {
	token.Store
	capture.Store

	// Close releases sequences and shuts the database down.
	Close() error
}

var _ Store = (*BadgerStore)(nil)
