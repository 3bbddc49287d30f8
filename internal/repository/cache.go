package repository

import (
	"context"
	"time"
)

// CacheStore is a key/value store with existence checks and TTL-bounded
// writes. It backs both vote deduplication and request throttling.
//
// Implementations live in internal/infra/cache: a Redis-backed store
// (authoritative across process instances), an in-process store (best-effort,
// instance lifetime only), and a fallback decorator composing the two.
type CacheStore interface {
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Set stores key with the given time-to-live. The value itself carries
	// no information; only presence and expiry matter.
	Set(ctx context.Context, key string, ttl time.Duration) error
}
