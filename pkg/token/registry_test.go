package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookcatch/hookcatch/internal/id"
	"github.com/hookcatch/hookcatch/internal/storage"
	"github.com/hookcatch/hookcatch/pkg/token"
)

func newRegistry(t *testing.T) *token.Registry {
	t.Helper()
	store, err := storage.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return token.NewRegistry(store, nil)
}

func TestCreate(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	tok, err := r.Create(ctx, "http://localhost:3000")
	require.NoError(t, err)

	assert.True(t, id.IsToken(tok.Value), "token value must be a UUID")
	assert.Equal(t, "http://localhost:3000/"+tok.Value, tok.WebhookURL)
	assert.WithinDuration(t, time.Now().UTC(), tok.CreatedAt, 5*time.Second)

	exists, err := r.Exists(ctx, tok.Value)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateUniqueValues(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	a, err := r.Create(ctx, "http://x")
	require.NoError(t, err)
	b, err := r.Create(ctx, "http://x")
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, b.Value)
}

func TestListNewestFirst(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	first, err := r.Create(ctx, "http://x")
	require.NoError(t, err)
	second, err := r.Create(ctx, "http://x")
	require.NoError(t, err)

	tokens, err := r.List(ctx, "http://x")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, second.Value, tokens[0].Value)
	assert.Equal(t, first.Value, tokens[1].Value)
	assert.Equal(t, "http://x/"+second.Value, tokens[0].WebhookURL)
}

func TestDelete(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	tok, err := r.Create(ctx, "http://x")
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, tok.Value))

	exists, err := r.Exists(ctx, tok.Value)
	require.NoError(t, err)
	assert.False(t, exists)

	err = r.Delete(ctx, tok.Value)
	assert.ErrorIs(t, err, token.ErrNotFound)
}
