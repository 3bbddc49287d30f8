package cache

import (
	"context"
	"sync"
	"time"

	"votegate/pkg/clock"
)

// LocalStore is an in-process CacheStore: a map from key to expiry instant.
// Expired entries are pruned lazily on lookup; Prune exists for a periodic
// janitor so idle keys do not accumulate between lookups.
//
// LocalStore never returns an error. It is safe for concurrent use.
type LocalStore struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry instant
}

// NewLocalStore creates an empty LocalStore. A nil clock defaults to the
// system clock.
func NewLocalStore(c clock.Clock) *LocalStore {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &LocalStore{
		clock:   c,
		entries: make(map[string]time.Time),
	}
}

// Exists reports whether key is present and unexpired. An expired entry is
// removed on the way out.
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !now.Before(expiry) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Set stores key with the given TTL, replacing any existing entry.
func (s *LocalStore) Set(_ context.Context, key string, ttl time.Duration) error {
	expiry := s.clock.Now().Add(ttl)

	s.mu.Lock()
	s.entries[key] = expiry
	s.mu.Unlock()
	return nil
}

// Prune removes all expired entries and returns how many were dropped.
func (s *LocalStore) Prune() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries, expired or not. Used by the
// health endpoint.
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
