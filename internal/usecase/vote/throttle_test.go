package vote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/infra/cache"
	"votegate/pkg/clock"
)

// erroringCache fails every operation, simulating a dead backend without a
// fallback decorator in front.
type erroringCache struct{}

func (erroringCache) Exists(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func (erroringCache) Set(context.Context, string, time.Duration) error {
	return errors.New("backend down")
}

func TestThrottleGate_Allow(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	gate := NewThrottleGate(cache.NewLocalStore(mock), 2*time.Second, nil)

	require.NoError(t, gate.Allow(ctx, "203.0.113.5", []string{"best_spa"}))

	// Second attempt inside the cooldown is rejected.
	err := gate.Allow(ctx, "203.0.113.5", []string{"best_spa"})
	assert.ErrorIs(t, err, ErrRateLimited)

	// After the cooldown the same key is allowed again.
	mock.Advance(2100 * time.Millisecond)
	assert.NoError(t, gate.Allow(ctx, "203.0.113.5", []string{"best_spa"}))
}

func TestThrottleGate_IndependentCategories(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	gate := NewThrottleGate(cache.NewLocalStore(mock), 2*time.Second, nil)

	require.NoError(t, gate.Allow(ctx, "203.0.113.5", []string{"best_spa"}))

	// A different category for the same identity is not blocked.
	assert.NoError(t, gate.Allow(ctx, "203.0.113.5", []string{"best_hotel"}))

	// A different identity for the same category is not blocked either.
	assert.NoError(t, gate.Allow(ctx, "198.51.100.7", []string{"best_spa"}))
}

func TestThrottleGate_WholeRequestIsAUnit(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	store := cache.NewLocalStore(mock)
	gate := NewThrottleGate(store, 2*time.Second, nil)

	require.NoError(t, gate.Allow(ctx, "203.0.113.5", []string{"best_spa"}))

	// best_spa is hot, so the two-category request is rejected and best_hotel
	// must NOT pick up a cooldown timestamp from the failed attempt.
	err := gate.Allow(ctx, "203.0.113.5", []string{"best_hotel", "best_spa"})
	require.ErrorIs(t, err, ErrRateLimited)

	seen, err := store.Exists(ctx, throttleKey("203.0.113.5", "best_hotel"))
	require.NoError(t, err)
	assert.False(t, seen, "rejected request must not record any throttle key")
}

func TestThrottleGate_CacheErrorsFailOpen(t *testing.T) {
	gate := NewThrottleGate(erroringCache{}, 2*time.Second, nil)

	err := gate.Allow(context.Background(), "203.0.113.5", []string{"best_spa"})
	assert.NoError(t, err, "throttle must never fail a request on cache errors")
}
