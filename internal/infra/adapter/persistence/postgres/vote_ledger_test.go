package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"votegate/internal/domain/entity"
	"votegate/internal/infra/adapter/persistence/postgres"
)

func sampleRecords(at time.Time) []entity.VoteRecord {
	return []entity.VoteRecord{
		{VotedAt: at, Email: "a@b.com", Identity: "203.0.113.5", Category: "best_spa", Choice: "Spa A"},
		{VotedAt: at, Email: "a@b.com", Identity: "203.0.113.5", Category: "best_hotel", Choice: "Hotel B"},
	}
}

func TestVoteLedger_AppendVotes(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Now()
	records := sampleRecords(at)

	mock.ExpectBegin()
	for _, rec := range records {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO votes`)).
			WithArgs(rec.VotedAt, rec.Email, rec.Identity, rec.Category, rec.Choice).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	ledger := postgres.NewVoteLedger(db)
	if err := ledger.AppendVotes(context.Background(), records); err != nil {
		t.Fatalf("AppendVotes err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVoteLedger_AppendVotesRollsBackOnFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Now()
	records := sampleRecords(at)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO votes`)).
		WithArgs(records[0].VotedAt, records[0].Email, records[0].Identity, records[0].Category, records[0].Choice).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO votes`)).
		WithArgs(records[1].VotedAt, records[1].Email, records[1].Identity, records[1].Category, records[1].Choice).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	ledger := postgres.NewVoteLedger(db)
	if err := ledger.AppendVotes(context.Background(), records); err == nil {
		t.Fatal("AppendVotes err=nil, want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVoteLedger_AppendVotesEmptyIsNoop(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	ledger := postgres.NewVoteLedger(db)
	if err := ledger.AppendVotes(context.Background(), nil); err != nil {
		t.Fatalf("AppendVotes err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVoteLedger_AppendMarkerAndDelete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO vote_markers`)).
		WithArgs("203.0.113.5", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vote_markers`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := postgres.NewVoteLedger(db)
	handle, err := ledger.AppendMarker(context.Background(), "203.0.113.5", at)
	if err != nil {
		t.Fatalf("AppendMarker err=%v", err)
	}
	if err := handle.Delete(context.Background()); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVoteLedger_QueryMarkers(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	since := at.Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM vote_markers`)).
		WithArgs("203.0.113.5", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "identity", "marked_at"}).
			AddRow(int64(1), "203.0.113.5", at.Add(-time.Hour)))

	ledger := postgres.NewVoteLedger(db)
	got, err := ledger.QueryMarkers(context.Background(), "203.0.113.5", since)
	if err != nil {
		t.Fatalf("QueryMarkers err=%v", err)
	}

	want := []entity.Marker{{ID: 1, Identity: "203.0.113.5", MarkedAt: at.Add(-time.Hour)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVoteLedger_MarkerDeleteNoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO vote_markers`)).
		WithArgs("203.0.113.5", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vote_markers`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ledger := postgres.NewVoteLedger(db)
	handle, err := ledger.AppendMarker(context.Background(), "203.0.113.5", at)
	if err != nil {
		t.Fatalf("AppendMarker err=%v", err)
	}
	if err := handle.Delete(context.Background()); err == nil {
		t.Fatal("Delete err=nil, want error when marker already gone")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
