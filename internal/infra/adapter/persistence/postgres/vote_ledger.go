// Package postgres implements the vote ledger on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"votegate/internal/domain/entity"
	"votegate/internal/repository"
)

type VoteLedger struct{ db *sql.DB }

func NewVoteLedger(db *sql.DB) repository.VoteLedger {
	return &VoteLedger{db: db}
}

// AppendVotes inserts all records in a single transaction so a ballot is
// either fully recorded or not at all.
func (repo *VoteLedger) AppendVotes(ctx context.Context, records []entity.VoteRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("AppendVotes: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO votes (voted_at, email, identity, category, choice)
VALUES ($1, $2, $3, $4, $5)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query,
			rec.VotedAt, rec.Email, rec.Identity, rec.Category, rec.Choice,
		); err != nil {
			return fmt.Errorf("AppendVotes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("AppendVotes: commit: %w", err)
	}
	return nil
}

func (repo *VoteLedger) AppendMarker(ctx context.Context, identity string, at time.Time) (repository.RecordHandle, error) {
	const query = `
INSERT INTO vote_markers (identity, marked_at)
VALUES ($1, $2)
RETURNING id`
	var id int64
	if err := repo.db.QueryRowContext(ctx, query, identity, at).Scan(&id); err != nil {
		return nil, fmt.Errorf("AppendMarker: %w", err)
	}
	return &markerHandle{db: repo.db, id: id}, nil
}

func (repo *VoteLedger) QueryMarkers(ctx context.Context, identity string, since time.Time) ([]entity.Marker, error) {
	const query = `
SELECT id, identity, marked_at
FROM vote_markers
WHERE identity = $1
AND marked_at >= $2
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, identity, since)
	if err != nil {
		return nil, fmt.Errorf("QueryMarkers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	markers := make([]entity.Marker, 0, 4)
	for rows.Next() {
		var m entity.Marker
		if err := rows.Scan(&m.ID, &m.Identity, &m.MarkedAt); err != nil {
			return nil, fmt.Errorf("QueryMarkers: %w", err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// markerHandle allows a marker written optimistically to be removed again
// when the submission it guarded is rolled back.
type markerHandle struct {
	db *sql.DB
	id int64
}

func (h *markerHandle) Delete(ctx context.Context) error {
	const query = `DELETE FROM vote_markers WHERE id = $1`
	res, err := h.db.ExecContext(ctx, query, h.id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
