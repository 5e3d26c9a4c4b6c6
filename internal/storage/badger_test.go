package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookcatch/hookcatch/internal/id"
	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/token"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestToken(t *testing.T, s *BadgerStore) *token.Token {
	t.Helper()
	tok := &token.Token{Value: id.NewToken(), CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateToken(context.Background(), tok))
	return tok
}

func appendRecord(t *testing.T, s *BadgerStore, tokenValue string) *capture.Record {
	t.Helper()
	rec := &capture.Record{
		Date:    time.Now().UTC(),
		TokenID: tokenValue,
		Object:  capture.NewMessage("POST", "/"+tokenValue, nil, []byte(`{"x":1}`)),
	}
	require.NoError(t, s.AppendRecord(context.Background(), rec))
	return rec
}

func TestTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok := newTestToken(t, s)

	exists, err := s.TokenExists(ctx, tok.Value)
	require.NoError(t, err)
	assert.True(t, exists, "token must exist immediately after creation")

	require.NoError(t, s.DeleteToken(ctx, tok.Value))

	exists, err = s.TokenExists(ctx, tok.Value)
	require.NoError(t, err)
	assert.False(t, exists, "token must be gone immediately after deletion")
}

func TestDeleteTokenNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteToken(context.Background(), id.NewToken())
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestListTokensNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	older := &token.Token{Value: id.NewToken(), CreatedAt: base.Add(-time.Hour)}
	newer := &token.Token{Value: id.NewToken(), CreatedAt: base}
	require.NoError(t, s.CreateToken(ctx, older))
	require.NoError(t, s.CreateToken(ctx, newer))

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, newer.Value, tokens[0].Value)
	assert.Equal(t, older.Value, tokens[1].Value)
}

func TestListTokensTieBreaksByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// All tokens share one creation instant; the later insert must list first.
	at := time.Now().UTC().Truncate(time.Second)
	var values []string
	for i := 0; i < 5; i++ {
		tok := &token.Token{Value: id.NewToken(), CreatedAt: at}
		require.NoError(t, s.CreateToken(ctx, tok))
		values = append(values, tok.Value)
	}

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, len(values))
	for i, tok := range tokens {
		assert.Equal(t, values[len(values)-1-i], tok.Value)
	}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	tok := newTestToken(t, s)

	first := appendRecord(t, s, tok.Value)
	second := appendRecord(t, s, tok.Value)
	third := appendRecord(t, s, tok.Value)

	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, second.ID+1, third.ID)
}

func TestAppendUnknownToken(t *testing.T) {
	s := newTestStore(t)

	rec := &capture.Record{
		Date:    time.Now().UTC(),
		TokenID: id.NewToken(),
		Object:  capture.NewMessage("GET", "/nope", nil, nil),
	}
	err := s.AppendRecord(context.Background(), rec)
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestConcurrentAppendsAssignUniqueContiguousIDs(t *testing.T) {
	s := newTestStore(t)
	tok := newTestToken(t, s)

	const n = 50
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &capture.Record{
				Date:    time.Now().UTC(),
				TokenID: tok.Value,
				Object:  capture.NewMessage("POST", "/"+tok.Value, nil, nil),
			}
			if err := s.AppendRecord(context.Background(), rec); err != nil {
				t.Errorf("append: %v", err)
				return
			}
			ids <- rec.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	lo, hi := uint64(0), uint64(0)
	for got := range ids {
		assert.False(t, seen[got], "duplicate id %d", got)
		seen[got] = true
		if lo == 0 || got < lo {
			lo = got
		}
		if got > hi {
			hi = got
		}
	}
	require.Len(t, seen, n)
	assert.Equal(t, lo+n-1, hi, "ids must form a contiguous block")
}

func TestIndependentSequencesPerToken(t *testing.T) {
	s := newTestStore(t)
	a := newTestToken(t, s)
	b := newTestToken(t, s)

	appendRecord(t, s, a.Value)
	appendRecord(t, s, a.Value)
	recB := appendRecord(t, s, b.Value)

	assert.Equal(t, uint64(1), recB.ID, "tokens own independent id namespaces")
}

func TestRecentRecordsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tok := newTestToken(t, s)

	for i := 0; i < 5; i++ {
		appendRecord(t, s, tok.Value)
	}

	recs, err := s.RecentRecords(ctx, tok.Value, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, uint64(5), recs[0].ID)
	assert.Equal(t, uint64(4), recs[1].ID)
	assert.Equal(t, uint64(3), recs[2].ID)

	// Asking for more than exist returns everything, still newest first.
	recs, err = s.RecentRecords(ctx, tok.Value, 100)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, uint64(5), recs[0].ID)
	assert.Equal(t, uint64(1), recs[4].ID)
}

func TestRecentRecordsCountZero(t *testing.T) {
	s := newTestStore(t)
	tok := newTestToken(t, s)
	appendRecord(t, s, tok.Value)

	recs, err := s.RecentRecords(context.Background(), tok.Value, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecentRecordsEmptyLogIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	tok := newTestToken(t, s)

	recs, err := s.RecentRecords(context.Background(), tok.Value, 10)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecentRecordsUnknownToken(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RecentRecords(context.Background(), id.NewToken(), 10)
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestDeleteTokenCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tok := newTestToken(t, s)
	other := newTestToken(t, s)

	for i := 0; i < 10; i++ {
		appendRecord(t, s, tok.Value)
	}
	appendRecord(t, s, other.Value)

	require.NoError(t, s.DeleteToken(ctx, tok.Value))

	_, err := s.RecentRecords(ctx, tok.Value, 10)
	assert.ErrorIs(t, err, token.ErrNotFound, "deleted token's log is gone with it")

	recs, err := s.RecentRecords(ctx, other.Value, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "other tokens are untouched by the cascade")
}

func TestDeleteTokenDuringAppendsLeavesNoOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tok := newTestToken(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &capture.Record{
				Date:    time.Now().UTC(),
				TokenID: tok.Value,
				Object:  capture.NewMessage("POST", "/"+tok.Value, nil, nil),
			}
			// Either outcome is fine; corrupt state is not.
			_ = s.AppendRecord(ctx, rec)
		}()
	}
	require.NoError(t, s.DeleteToken(ctx, tok.Value))
	wg.Wait()

	exists, err := s.TokenExists(ctx, tok.Value)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.RecentRecords(ctx, tok.Value, 100)
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestRecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tok := newTestToken(t, s)

	headers := map[string][]string{
		"X-Test":       {"1", "2"},
		"Content-Type": {"application/json"},
	}
	body := []byte(`{"hello":"world"}`)
	rec := &capture.Record{
		Date:    time.Now().UTC(),
		TokenID: tok.Value,
		Object:  capture.NewMessage("PATCH", "/"+tok.Value+"/sub?a=1&b=2", headers, body),
	}
	require.NoError(t, s.AppendRecord(ctx, rec))

	recs, err := s.RecentRecords(ctx, tok.Value, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0].Object
	assert.Equal(t, "PATCH", got.Method)
	assert.Equal(t, "/"+tok.Value+"/sub?a=1&b=2", got.Value)
	assert.Equal(t, []string{"1", "2"}, got.Headers["X-Test"])
	require.NotNil(t, got.Body)
	assert.Equal(t, string(body), *got.Body)
	assert.Equal(t, []string{"a=1", "b=2"}, got.QueryParameters)
}

func TestContextCancellation(t *testing.T) {
	s := newTestStore(t)
	tok := newTestToken(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RecentRecords(ctx, tok.Value, 1)
	assert.ErrorIs(t, err, context.Canceled)

	err = s.AppendRecord(ctx, &capture.Record{TokenID: tok.Value})
	assert.ErrorIs(t, err, context.Canceled)
}
