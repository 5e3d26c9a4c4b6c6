// Package storage provides the persistent store backing the token registry
// and the per-token capture logs.
//
// The backend is BadgerDB, a key-ordered embedded store. Record keys embed a
// fixed-width id so that lexicographic key order equals id order; the most
// recent entries of a token's log are a reverse prefix scan. Record ids come
// from Badger sequences, which are durable and atomic, so ids stay monotonic
// across restarts and concurrent appends without any in-process counter.
//
// The store is the single source of truth: no token or record state is
// cached outside it.
package storage
