package repository

import (
	"context"
	"time"

	"votegate/internal/domain/entity"
)

// RecordHandle refers to a single appended ledger row so that a compensating
// delete can undo it before the request's outcome is finalized.
type RecordHandle interface {
	Delete(ctx context.Context) error
}

// VoteLedger is the narrow collaborator interface over the durable
// append-only store. The gatekeeper core depends only on these operations,
// not on how rows are modeled internally.
type VoteLedger interface {
	// AppendVotes persists all records of one submission as a single logical
	// operation. Either all rows become visible or the call returns an error.
	AppendVotes(ctx context.Context, records []entity.VoteRecord) error

	// AppendMarker writes a provisional row identifying the submitting
	// identity and timestamp, returning a handle for rollback.
	AppendMarker(ctx context.Context, identity string, at time.Time) (RecordHandle, error)

	// QueryMarkers returns the markers for identity with MarkedAt >= since,
	// oldest first. Only meaningful if the backend offers read-after-write
	// consistency.
	QueryMarkers(ctx context.Context, identity string, since time.Time) ([]entity.Marker, error)
}
