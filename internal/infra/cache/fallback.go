package cache

import (
	"context"
	"log/slog"
	"time"

	"votegate/internal/observability/metrics"
	"votegate/internal/repository"
)

// Fallback composes the durable and local tiers. Lookups go to the durable
// tier first; on any backend error it logs a degraded-mode warning and serves
// the answer from the local tier instead. Writes go to both tiers, durable
// best-effort and local always.
//
// Durable-tier errors never propagate to the caller. During a durable-store
// outage the dedup guarantee shrinks to single-process scope; that tradeoff
// favors availability over strict correctness.
type Fallback struct {
	durable repository.CacheStore
	local   repository.CacheStore
	logger  *slog.Logger
}

// NewFallback creates the decorator. A nil logger defaults to slog.Default.
func NewFallback(durable, local repository.CacheStore, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{durable: durable, local: local, logger: logger}
}

// Exists checks the durable tier, degrading to the local tier on error.
func (f *Fallback) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := f.durable.Exists(ctx, key)
	if err == nil {
		return ok, nil
	}

	f.logger.Warn("durable cache unavailable, serving lookup from local tier",
		slog.String("key", key),
		slog.Any("error", err))
	metrics.RecordCacheFallback("exists")

	return f.local.Exists(ctx, key)
}

// Set writes to both tiers. A durable-tier failure is logged and counted but
// not returned; the local tier always receives the entry.
func (f *Fallback) Set(ctx context.Context, key string, ttl time.Duration) error {
	if err := f.durable.Set(ctx, key, ttl); err != nil {
		f.logger.Warn("durable cache unavailable, key held in local tier only",
			slog.String("key", key),
			slog.Any("error", err))
		metrics.RecordCacheFallback("set")
	}
	return f.local.Set(ctx, key, ttl)
}
