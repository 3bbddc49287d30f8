package db

import (
	"database/sql"
)

// MigrateUp creates the ledger schema. Safe to run on every startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS votes (
    id         SERIAL PRIMARY KEY,
    voted_at   TIMESTAMPTZ NOT NULL,
    email      TEXT NOT NULL,
    identity   TEXT NOT NULL,
    category   TEXT NOT NULL,
    choice     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS vote_markers (
    id        SERIAL PRIMARY KEY,
    identity  TEXT NOT NULL,
    marked_at TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		// Tallying scans by category; exports sort by time.
		`CREATE INDEX IF NOT EXISTS idx_votes_category ON votes(category)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_voted_at ON votes(voted_at DESC)`,
		// Duplicate audits look up one identity inside the window.
		`CREATE INDEX IF NOT EXISTS idx_votes_identity_voted_at ON votes(identity, voted_at)`,
		// The marker scan is identity + window.
		`CREATE INDEX IF NOT EXISTS idx_vote_markers_identity_marked_at ON vote_markers(identity, marked_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the ledger schema.
// Use with caution: this will delete all recorded votes.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS vote_markers`,
		`DROP TABLE IF EXISTS votes`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
