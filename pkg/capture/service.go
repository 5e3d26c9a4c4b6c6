package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hookcatch/hookcatch/pkg/logging"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// MaxQueryCount is the hard ceiling on how many records one log query may
// return. Larger requests are served the most recent MaxQueryCount entries.
const MaxQueryCount = 1000

// Store is the persistence surface the capture service needs. AppendRecord
// assigns the record id from the token's durable sequence and must reject
// appends for tokens that no longer exist with token.ErrNotFound.
type Store interface {
	TokenExists(ctx context.Context, value string) (bool, error)
	AppendRecord(ctx context.Context, rec *Record) error
	RecentRecords(ctx context.Context, tokenValue string, count int) ([]*Record, error)
}

// Service appends to and queries per-token capture logs.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		store: store,
		log:   log.With("component", "capture"),
	}
}

// Append captures one inbound request under tokenValue. The record is
// persisted durably, with its id assigned, before Append returns. Returns
// token.ErrNotFound if the token is unknown; an append that loses a race
// with token deletion is rejected the same way.
func (s *Service) Append(ctx context.Context, tokenValue, method, target string, headers map[string][]string, body []byte) (*Record, error) {
	exists, err := s.store.TokenExists(ctx, tokenValue)
	if err != nil {
		return nil, fmt.Errorf("check token: %w", err)
	}
	if !exists {
		return nil, token.ErrNotFound
	}

	rec := &Record{
		Date:    time.Now().UTC(),
		TokenID: tokenValue,
		Object:  NewMessage(method, target, headers, body),
	}
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info("request captured",
		"token", tokenValue,
		"method", method,
		"id", rec.ID,
	)
	return rec, nil
}

// Recent returns up to count records for tokenValue, newest id first. A
// token with no records yields an empty slice; an unknown token yields
// token.ErrNotFound. count zero is valid and returns an empty slice.
func (s *Service) Recent(ctx context.Context, tokenValue string, count int) ([]*Record, error) {
	if count > MaxQueryCount {
		count = MaxQueryCount
	}
	return s.store.RecentRecords(ctx, tokenValue, count)
}
