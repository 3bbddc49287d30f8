package vote

import (
	"context"
	"log/slog"
	"time"

	"votegate/internal/domain/entity"
	"votegate/internal/observability/metrics"
	"votegate/internal/repository"
)

// LedgerWriter durably persists one VoteRecord per category and guarantees
// that a failed persist leaves no partial record visible to later dedup
// checks.
//
// Two modes:
//
//   - Primary: append all records in one logical operation; a failure
//     surfaces as PersistenceError and no dedup commit happens.
//
//   - Marker (MarkerDedup): for ledger backends without transactions, a
//     provisional marker row is appended first, recent markers for the same
//     identity are re-read, and on conflict the just-inserted marker is
//     deleted and the submission rejected as a duplicate. This compensating
//     transaction is only sound if the backend offers read-after-write
//     consistency; non-consistent backends need a true conditional-write
//     primitive instead.
type LedgerWriter struct {
	ledger      repository.VoteLedger
	markerDedup bool
	window      time.Duration
	logger      *slog.Logger
}

// NewLedgerWriter creates a writer. markerDedup enables the compensating
// marker path; window is the deduplication window the marker scan covers.
func NewLedgerWriter(ledger repository.VoteLedger, markerDedup bool, window time.Duration, logger *slog.Logger) *LedgerWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerWriter{
		ledger:      ledger,
		markerDedup: markerDedup,
		window:      window,
		logger:      logger,
	}
}

// Append persists records for one accepted submission. All records share the
// same identity and timestamp. On any error, no record of this submission
// remains visible (markers are rolled back with a compensating delete).
func (w *LedgerWriter) Append(ctx context.Context, identity string, at time.Time, records []entity.VoteRecord) error {
	var marker repository.RecordHandle

	if w.markerDedup {
		handle, err := w.ledger.AppendMarker(ctx, identity, at)
		if err != nil {
			return &PersistenceError{Op: "append marker", Err: err}
		}
		marker = handle

		markers, err := w.ledger.QueryMarkers(ctx, identity, at.Add(-w.window))
		if err != nil {
			w.rollback(ctx, marker, identity)
			return &PersistenceError{Op: "verify markers", Err: err}
		}
		if len(markers) > 1 {
			// A marker besides our own is inside the window: lost the race
			// or the cache tier missed a prior vote. Undo and reject.
			w.rollback(ctx, marker, identity)
			return &entity.DuplicateVoteError{}
		}
	}

	start := time.Now()
	if err := w.ledger.AppendVotes(ctx, records); err != nil {
		metrics.RecordLedgerAppend(time.Since(start), false)
		if marker != nil {
			w.rollback(ctx, marker, identity)
		}
		return &PersistenceError{Op: "append votes", Err: err}
	}
	metrics.RecordLedgerAppend(time.Since(start), true)
	return nil
}

// rollback deletes a provisional marker. A failed delete leaves a stray
// marker that blocks the identity until the window expires; that errs on the
// side of rejecting rather than double-counting, so it is only logged.
func (w *LedgerWriter) rollback(ctx context.Context, marker repository.RecordHandle, identity string) {
	if err := marker.Delete(ctx); err != nil {
		w.logger.Error("marker rollback failed",
			slog.String("identity", identity),
			slog.Any("error", err))
	}
}
