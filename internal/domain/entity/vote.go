package entity

import "time"

// Submission is a validated vote submission: a contact address plus one
// nomination per category. Map order is not significant.
type Submission struct {
	Email       string
	Nominations map[string]string
}

// VoteRecord is one accepted nomination, appended to the durable ledger.
// Records are immutable once committed; a record may only disappear as part
// of a rollback before the request's outcome is finalized.
type VoteRecord struct {
	VotedAt  time.Time
	Email    string
	Identity string
	Category string
	Choice   string
}

// Marker is a provisional row written ahead of the vote records when the
// ledger backend offers no transactions and duplicate detection has to read
// its own log.
type Marker struct {
	ID       int64
	Identity string
	MarkedAt time.Time
}
