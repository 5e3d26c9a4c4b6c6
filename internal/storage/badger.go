package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/hookcatch/hookcatch/internal/id"
	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/logging"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// Key prefixes. All keys for one concern share a prefix so each concern is a
// contiguous, iterable key range:
//
//	token:<value>       -> tokenRow JSON
//	log:<value>:<id>    -> capture.Record JSON (id fixed-width, see internal/id)
//	seq:<value>         -> Badger sequence state for that token's record ids
//	seq:tokens          -> global insertion counter (list-order tie break)
const (
	tokenKeyPrefix  = "token:"
	recordKeyPrefix = "log:"
	seqKeyPrefix    = "seq:"
	tokenSeqName    = "tokens"
)

// seqBandwidth is the Badger sequence lease size. Leases make id gaps
// possible after an unclean shutdown; gaps are tolerated, reuse is not.
const seqBandwidth = 64

// purgeBatchSize bounds how many record keys one purge transaction deletes.
const purgeBatchSize = 1000

func tokenKey(value string) []byte {
	return []byte(tokenKeyPrefix + value)
}

func recordPrefix(value string) []byte {
	return []byte(recordKeyPrefix + value + ":")
}

func recordKey(value string, recID uint64) []byte {
	return []byte(recordKeyPrefix + value + ":" + id.FormatRecordID(recID))
}

func seqKey(value string) []byte {
	return []byte(seqKeyPrefix + value)
}

// tokenRow is the stored form of a token. Seq records insertion order so
// that listing can break creation-time ties deterministically.
type tokenRow struct {
	Token *token.Token `json:"token"`
	Seq   uint64       `json:"seq"`
}

// BadgerStore implements Store on a BadgerDB database.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

// Open opens (or creates) the database at dir. An empty dir or ":memory:"
// yields an ephemeral in-memory database, which is what tests use. File-backed
// databases are opened with synchronous writes so an acknowledged append is
// durable.
func Open(dir string, log *slog.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logging.Nop()
	}

	var opts badger.Options
	if dir == "" || dir == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir).WithSyncWrites(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &BadgerStore{
		db:   db,
		log:  log.With("component", "storage"),
		seqs: make(map[string]*badger.Sequence),
	}, nil
}

// Close releases all sequence leases and closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	for value, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			s.log.Warn("failed to release sequence", "key", value, "error", err)
		}
		delete(s.seqs, value)
	}
	s.mu.Unlock()

	return s.db.Close()
}

// CreateToken persists a new token. The insertion counter is read from the
// store itself so list ordering stays stable across restarts.
func (s *BadgerStore) CreateToken(ctx context.Context, t *token.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seq, err := s.sequence(tokenSeqName)
	if err != nil {
		return fmt.Errorf("token sequence: %w", err)
	}
	n, err := seq.Next()
	if err != nil {
		return fmt.Errorf("token sequence: %w", err)
	}

	data, err := json.Marshal(tokenRow{Token: t, Seq: n})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey(t.Value), data)
	})
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// ListTokens returns all tokens, most recently created first. Equal creation
// times fall back to reverse insertion order.
func (s *BadgerStore) ListTokens(ctx context.Context) ([]*token.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []tokenRow
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tokenKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var row tokenRow
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &row)
			})
			if err != nil {
				return fmt.Errorf("decode token %s: %w", it.Item().Key(), err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].Token.CreatedAt, rows[j].Token.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].Seq > rows[j].Seq
	})

	tokens := make([]*token.Token, len(rows))
	for i, row := range rows {
		tokens[i] = row.Token
	}
	return tokens, nil
}

// TokenExists reports whether the token is currently present.
func (s *BadgerStore) TokenExists(ctx context.Context, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(tokenKey(value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return exists, nil
}

// DeleteToken removes a token and every capture record it owns. The delete
// is two-phase: first the token key itself goes, in a transaction that
// conflicts with any in-flight append for the same token (the append either
// committed earlier or is rejected); then the record keys are purged in
// batches. Once phase one commits no new record can appear, so the purge is
// idempotent and the final outcome never has orphans in either direction.
func (s *BadgerStore) DeleteToken(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Drop the cached sequence handle so its key can be purged too. A late
	// lease write can recreate the key; the purge below removes it again.
	s.dropSequence(value)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(tokenKey(value)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return token.ErrNotFound
			}
			return err
		}
		return txn.Delete(tokenKey(value))
	})
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return token.ErrNotFound
		}
		return fmt.Errorf("delete token: %w", err)
	}

	for {
		n, err := s.purgeRecords(ctx, value)
		if err != nil {
			return fmt.Errorf("purge records: %w", err)
		}
		if n == 0 {
			break
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(seqKey(value))
	})
	if err != nil {
		return fmt.Errorf("delete sequence: %w", err)
	}
	s.dropSequence(value)
	return nil
}

// purgeRecords deletes up to purgeBatchSize record keys for value and
// reports how many it removed.
func (s *BadgerStore) purgeRecords(ctx context.Context, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = recordPrefix(value)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && deleted < purgeBatchSize; it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// AppendRecord persists rec under its token, assigning the next id from the
// token's durable sequence. The write transaction re-reads the token key, so
// an append racing a delete either commits before the delete or fails with
// token.ErrNotFound; a rejected append burns an id, which is an accepted gap.
func (s *BadgerStore) AppendRecord(ctx context.Context, rec *capture.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := s.TokenExists(ctx, rec.TokenID)
	if err != nil {
		return err
	}
	if !exists {
		return token.ErrNotFound
	}

	seq, err := s.sequence(rec.TokenID)
	if err != nil {
		return fmt.Errorf("record sequence: %w", err)
	}
	n, err := seq.Next()
	if err != nil {
		return fmt.Errorf("next record id: %w", err)
	}
	rec.ID = n + 1 // sequences hand out 0-based values, record ids start at 1

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(tokenKey(rec.TokenID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return token.ErrNotFound
			}
			return err
		}
		return txn.Set(recordKey(rec.TokenID, rec.ID), data)
	})
	switch {
	case errors.Is(err, token.ErrNotFound):
		return token.ErrNotFound
	case errors.Is(err, badger.ErrConflict):
		// The token key this transaction read was rewritten underneath it,
		// which only a cascade delete does. Strict rejection.
		return token.ErrNotFound
	case err != nil:
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// RecentRecords returns up to count records for value, newest id first. An
// unknown token yields token.ErrNotFound; a known token with no records (or
// count zero) yields an empty slice.
func (s *BadgerStore) RecentRecords(ctx context.Context, value string, count int) ([]*capture.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*capture.Record, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(tokenKey(value)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return token.ErrNotFound
			}
			return err
		}
		if count <= 0 {
			return nil
		}

		prefix := recordPrefix(value)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Record ids are fixed-width decimal digits, so a seek key one byte
		// above the prefix lands past the newest entry.
		seek := append(append([]byte(nil), prefix...), 0xff)
		for it.Seek(seek); it.Valid() && len(out) < count; it.Next() {
			var rec capture.Record
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("read records: %w", err)
	}
	return out, nil
}

// sequence returns the cached sequence handle for name, creating it on first
// use. Handles are backed by the store, so ids survive restarts.
func (s *BadgerStore) sequence(name string) (*badger.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.seqs[name]; ok {
		return seq, nil
	}
	seq, err := s.db.GetSequence(seqKey(name), seqBandwidth)
	if err != nil {
		return nil, err
	}
	s.seqs[name] = seq
	return seq, nil
}

// dropSequence releases and forgets the cached sequence handle for name.
func (s *BadgerStore) dropSequence(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.seqs[name]; ok {
		if err := seq.Release(); err != nil {
			s.log.Warn("failed to release sequence", "key", name, "error", err)
		}
		delete(s.seqs, name)
	}
}
