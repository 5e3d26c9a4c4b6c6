package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hookcatch/hookcatch/internal/id"
	"github.com/hookcatch/hookcatch/pkg/logging"
)

// Store is the persistence surface the registry needs. DeleteToken must
// remove the token and every capture record it owns in one atomic unit.
type Store interface {
	CreateToken(ctx context.Context, t *Token) error
	ListTokens(ctx context.Context) ([]*Token, error)
	TokenExists(ctx context.Context, value string) (bool, error)
	DeleteToken(ctx context.Context, value string) error
}

// Registry manages token lifecycle on top of a Store.
type Registry struct {
	store Store
	log   *slog.Logger
}

// NewRegistry creates a Registry. A nil logger disables logging.
func NewRegistry(store Store, log *slog.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		store: store,
		log:   log.With("component", "token_registry"),
	}
}

// Create generates a fresh token, persists it, and returns the full view
// including the webhook URL derived from base.
func (r *Registry) Create(ctx context.Context, base string) (*Token, error) {
	t := &Token{
		Value:     id.NewToken(),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.CreateToken(ctx, t); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	t.WebhookURL = JoinWebhookURL(base, t.Value)

	r.log.Info("token created", "token", t.Value)
	return t, nil
}

// List returns all tokens, most recently created first. Creation-time ties
// are broken by reverse insertion order.
func (r *Registry) List(ctx context.Context, base string) ([]*Token, error) {
	tokens, err := r.store.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	for _, t := range tokens {
		t.WebhookURL = JoinWebhookURL(base, t.Value)
	}
	return tokens, nil
}

// Delete removes a token and, atomically, every capture record it owns.
// Returns ErrNotFound if the token does not exist.
func (r *Registry) Delete(ctx context.Context, value string) error {
	if err := r.store.DeleteToken(ctx, value); err != nil {
		return err
	}
	r.log.Info("token deleted", "token", value)
	return nil
}

// Exists reports whether a token is currently active. The ingestion path
// uses this as its fast-path check before accepting a capture.
func (r *Registry) Exists(ctx context.Context, value string) (bool, error) {
	return r.store.TokenExists(ctx, value)
}
