package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/pkg/clock"
)

// flakyStore fails on demand and records calls.
type flakyStore struct {
	inner   *LocalStore
	failing bool
	exists  int
	sets    int
}

func (s *flakyStore) Exists(ctx context.Context, key string) (bool, error) {
	s.exists++
	if s.failing {
		return false, errors.New("connection refused")
	}
	return s.inner.Exists(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	s.sets++
	if s.failing {
		return errors.New("connection refused")
	}
	return s.inner.Set(ctx, key, ttl)
}

func TestFallback_PrefersDurableTier(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	durable := &flakyStore{inner: NewLocalStore(mock)}
	local := NewLocalStore(mock)
	fb := NewFallback(durable, local, nil)

	require.NoError(t, fb.Set(ctx, "k", time.Minute))

	ok, err := fb.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, durable.exists)
}

func TestFallback_SetWritesBothTiers(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	durable := &flakyStore{inner: NewLocalStore(mock)}
	local := NewLocalStore(mock)
	fb := NewFallback(durable, local, nil)

	require.NoError(t, fb.Set(ctx, "k", time.Minute))

	ok, err := durable.inner.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = local.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFallback_DurableErrorServedFromLocal(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	durable := &flakyStore{inner: NewLocalStore(mock)}
	local := NewLocalStore(mock)
	fb := NewFallback(durable, local, nil)

	// Write while healthy so both tiers hold the key, then kill the durable
	// tier.
	require.NoError(t, fb.Set(ctx, "k", time.Minute))
	durable.failing = true

	ok, err := fb.Exists(ctx, "k")
	require.NoError(t, err, "durable errors never propagate")
	assert.True(t, ok, "answer comes from the local tier")
}

func TestFallback_SetSurvivesDurableOutage(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	durable := &flakyStore{inner: NewLocalStore(mock), failing: true}
	local := NewLocalStore(mock)
	fb := NewFallback(durable, local, nil)

	require.NoError(t, fb.Set(ctx, "k", time.Minute), "set succeeds during outage")

	ok, err := fb.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "local tier carries the key through the outage")
}

func TestFallback_LocalTTLStillEnforcedDuringOutage(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock(time.Now())
	fb := NewFallback(&flakyStore{inner: NewLocalStore(mock), failing: true}, NewLocalStore(mock), nil)

	require.NoError(t, fb.Set(ctx, "k", 2*time.Second))

	mock.Advance(3 * time.Second)
	ok, err := fb.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
