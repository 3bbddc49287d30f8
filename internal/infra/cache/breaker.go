package cache

import (
	"context"
	"time"

	"votegate/internal/repository"
	"votegate/internal/resilience/circuitbreaker"
)

// BreakerStore guards a CacheStore with a circuit breaker so that a dead
// backend fails fast instead of holding every request for a full timeout.
// A tripped breaker surfaces as an error, which the Fallback decorator then
// absorbs into local-tier operation.
type BreakerStore struct {
	inner   repository.CacheStore
	breaker *circuitbreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with the given circuit breaker.
func NewBreakerStore(inner repository.CacheStore, cb *circuitbreaker.CircuitBreaker) *BreakerStore {
	return &BreakerStore{inner: inner, breaker: cb}
}

// Exists runs the lookup through the circuit breaker.
func (s *BreakerStore) Exists(ctx context.Context, key string) (bool, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Exists(ctx, key)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

// Set runs the write through the circuit breaker.
func (s *BreakerStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Set(ctx, key, ttl)
	})
	return err
}

// State exposes the breaker state for the health endpoint.
func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}
