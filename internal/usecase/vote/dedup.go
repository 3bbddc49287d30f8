package vote

import (
	"context"
	"log/slog"
	"time"

	"votegate/internal/domain/entity"
	"votegate/internal/observability/metrics"
	"votegate/internal/repository"
)

// DedupGate enforces at-most-one accepted vote per (identity, category)
// inside the deduplication window.
//
// The check is all-or-nothing: if any category in the submission already has
// an unexpired key, the entire submission is rejected and no category is
// written, including ones with no prior vote. This avoids partially-accepted
// submissions.
type DedupGate struct {
	cache  repository.CacheStore
	window time.Duration
	logger *slog.Logger
}

// NewDedupGate creates a gate with the given deduplication window.
func NewDedupGate(cache repository.CacheStore, window time.Duration, logger *slog.Logger) *DedupGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &DedupGate{cache: cache, window: window, logger: logger}
}

// Check queries every category before any write occurs. It returns a
// DuplicateVoteError naming the first offending category, or nil if all
// categories are clear.
//
// Cache-backend errors do not fail the request: the fallback decorator
// absorbs durable-tier failures, and any residual error here degrades to
// "no prior vote seen" (fail-open toward availability).
func (g *DedupGate) Check(ctx context.Context, identity string, categories []string) error {
	for _, category := range categories {
		voted, err := g.cache.Exists(ctx, dedupKey(identity, category))
		if err != nil {
			g.logger.Warn("dedup lookup failed, assuming no prior vote",
				slog.String("identity", identity),
				slog.String("category", category),
				slog.Any("error", err))
			continue
		}
		if voted {
			metrics.RecordDedupConflict()
			return &entity.DuplicateVoteError{Category: category}
		}
	}
	return nil
}

// Commit writes the dedup key for every category. It must be invoked only
// after the ledger confirmed the vote records are durably appended. Failures
// are logged but non-fatal: the local tier still holds the key for this
// process's lifetime.
func (g *DedupGate) Commit(ctx context.Context, identity string, categories []string) {
	for _, category := range categories {
		if err := g.cache.Set(ctx, dedupKey(identity, category), g.window); err != nil {
			g.logger.Warn("dedup commit failed",
				slog.String("identity", identity),
				slog.String("category", category),
				slog.Any("error", err))
		}
	}
}
