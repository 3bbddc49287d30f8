package vote

import (
	"context"
	"log/slog"
	"time"

	"votegate/internal/repository"
)

// ThrottleGate enforces a minimum inter-request interval per
// (identity, category). The whole submission is a unit: if any category is
// inside the cooldown, the request is rejected and no timestamps are
// recorded for any category. Cooldown tracking is advisory, there is no
// rollback for it.
type ThrottleGate struct {
	cache    repository.CacheStore
	interval time.Duration
	logger   *slog.Logger
}

// NewThrottleGate creates a gate with the given cooldown interval.
func NewThrottleGate(cache repository.CacheStore, interval time.Duration, logger *slog.Logger) *ThrottleGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThrottleGate{cache: cache, interval: interval, logger: logger}
}

// Allow returns ErrRateLimited if any category key is still inside the
// cooldown, otherwise records the attempt for every category.
//
// Throttle keys carry the interval as their TTL, so presence of a key means
// the last attempt was too recent. Cache lookup errors are treated as
// "not seen": the throttle is an anti-flood heuristic, not a correctness
// guarantee, and must never fail a request on its own.
func (g *ThrottleGate) Allow(ctx context.Context, identity string, categories []string) error {
	for _, category := range categories {
		seen, err := g.cache.Exists(ctx, throttleKey(identity, category))
		if err != nil {
			g.logger.Debug("throttle lookup failed, treating as unseen",
				slog.String("identity", identity),
				slog.String("category", category),
				slog.Any("error", err))
			continue
		}
		if seen {
			return ErrRateLimited
		}
	}

	// Record the attempt for every category. Fire-and-forget: a failed write
	// only weakens the cooldown.
	for _, category := range categories {
		if err := g.cache.Set(ctx, throttleKey(identity, category), g.interval); err != nil {
			g.logger.Debug("throttle record failed",
				slog.String("identity", identity),
				slog.String("category", category),
				slog.Any("error", err))
		}
	}
	return nil
}
