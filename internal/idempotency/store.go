// Package idempotency provides replay protection for money-moving requests.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound     = errors.New("idempotency key not found")
	ErrHashMismatch = errors.New("idempotency key body mismatch")
	ErrInProgress   = errors.New("idempotency key in progress")
)

// Record captures a completed response for replay.
type Record struct {
	Key         string
	RequestHash string
	Status      int
	Body        []byte
	ContentType string
}

type entry struct {
	record     Record
	inProgress bool
	expiresAt  time.Time
}

// Store keeps idempotency records in memory with a TTL. Entries are reaped
// lazily on access.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Lookup returns the recorded response for key, ErrHashMismatch when the key
// was used with a different request body, ErrInProgress while the original
// request is still being served, and ErrNotFound otherwise.
func (s *Store) Lookup(ctx context.Context, key, requestHash string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}
	if e.record.RequestHash != requestHash {
		return nil, ErrHashMismatch
	}
	if e.inProgress {
		return nil, ErrInProgress
	}
	rec := e.record
	return &rec, nil
}

// Begin claims the key for the current request. It fails with ErrInProgress
// or ErrHashMismatch when the key is already claimed.
func (s *Store) Begin(ctx context.Context, key, requestHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && time.Now().Before(e.expiresAt) {
		if e.record.RequestHash != requestHash {
			return ErrHashMismatch
		}
		return ErrInProgress
	}
	s.entries[key] = &entry{
		record:     Record{Key: key, RequestHash: requestHash},
		inProgress: true,
		expiresAt:  time.Now().Add(s.ttl),
	}
	return nil
}

// Complete stores the final response for replay.
func (s *Store) Complete(ctx context.Context, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rec.Key] = &entry{
		record:    rec,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Forget releases a claimed key so the client may retry, used when the
// handler failed before producing a replayable response.
func (s *Store) Forget(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
