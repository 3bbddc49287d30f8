package vote

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"votegate/internal/domain/entity"
	"votegate/internal/observability/metrics"
	"votegate/pkg/clock"
)

// Result is the externally visible outcome of an accepted (or silently
// discarded) submission.
type Result struct {
	// Message is the user-facing success message.
	Message string

	// Discarded is true when the honeypot tripped: the caller reports
	// success, but nothing was persisted.
	Discarded bool
}

// Deps bundles the collaborators of the submission pipeline.
type Deps struct {
	Validator *Validator
	Throttle  *ThrottleGate
	Dedup     *DedupGate
	Writer    *LedgerWriter
	Clock     clock.Clock
	Logger    *slog.Logger

	// SuccessMessage is returned to the client on acceptance.
	SuccessMessage string
}

// Service composes the gatekeeper stages into a single decision sequence
// per request.
type Service struct {
	deps Deps
}

// NewService creates the pipeline service. Nil Clock and Logger default to
// the system clock and slog.Default.
func NewService(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SuccessMessage == "" {
		deps.SuccessMessage = "Your vote has been counted!"
	}
	return &Service{deps: deps}
}

// Submit runs the full pipeline for one request. identity is the anti-abuse
// signal derived from the request's network origin ("unknown" if
// unavailable).
//
// Stage failures short-circuit with typed errors the HTTP boundary maps to
// status codes: ValidationError (400), ErrRateLimited (429),
// DuplicateVoteError (403), PersistenceError (500).
func (s *Service) Submit(ctx context.Context, identity string, in Input) (Result, error) {
	start := time.Now()

	// Honeypot first: automated clients get a generic success response with
	// no further pipeline stage and nothing persisted, so they cannot tell
	// they were filtered.
	if in.Honeypot != "" {
		s.deps.Logger.Info("honeypot tripped, silently discarding submission",
			slog.String("identity", identity))
		metrics.RecordSubmission("honeypot", time.Since(start))
		return Result{Message: s.deps.SuccessMessage, Discarded: true}, nil
	}

	sub, err := s.deps.Validator.Validate(in)
	if err != nil {
		metrics.RecordSubmission("invalid", time.Since(start))
		return Result{}, err
	}

	// Sorted category order keeps the offending-category report and the
	// ledger row order deterministic.
	categories := make([]string, 0, len(sub.Nominations))
	for category := range sub.Nominations {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	if err := s.deps.Throttle.Allow(ctx, identity, categories); err != nil {
		metrics.RecordSubmission("rate_limited", time.Since(start))
		return Result{}, err
	}

	if err := s.deps.Dedup.Check(ctx, identity, categories); err != nil {
		metrics.RecordSubmission("duplicate", time.Since(start))
		return Result{}, err
	}

	now := s.deps.Clock.Now()
	records := make([]entity.VoteRecord, 0, len(categories))
	for _, category := range categories {
		records = append(records, entity.VoteRecord{
			VotedAt:  now,
			Email:    sub.Email,
			Identity: identity,
			Category: category,
			Choice:   sub.Nominations[category],
		})
	}

	if err := s.deps.Writer.Append(ctx, identity, now, records); err != nil {
		var dup *entity.DuplicateVoteError
		if errors.As(err, &dup) {
			metrics.RecordSubmission("duplicate", time.Since(start))
		} else {
			s.deps.Logger.Error("ledger append failed",
				slog.String("identity", identity),
				slog.Any("error", err))
			metrics.RecordSubmission("error", time.Since(start))
		}
		return Result{}, err
	}

	// Dedup keys are committed only after the records are durably appended.
	s.deps.Dedup.Commit(ctx, identity, categories)

	s.deps.Logger.Info("vote accepted",
		slog.String("identity", identity),
		slog.Int("categories", len(categories)))
	metrics.RecordSubmission("accepted", time.Since(start))

	return Result{Message: s.deps.SuccessMessage}, nil
}
