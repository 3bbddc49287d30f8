package vote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"votegate/internal/domain/entity"
	"votegate/internal/handler/http/middleware"
	"votegate/internal/infra/cache"
	"votegate/internal/repository"
	voteUC "votegate/internal/usecase/vote"
	"votegate/pkg/clock"
)

// memLedger is an in-memory VoteLedger for handler tests.
type memLedger struct {
	votes []entity.VoteRecord
	fail  bool
}

func (l *memLedger) AppendVotes(_ context.Context, records []entity.VoteRecord) error {
	if l.fail {
		return errors.New("ledger down")
	}
	l.votes = append(l.votes, records...)
	return nil
}

func (l *memLedger) AppendMarker(context.Context, string, time.Time) (repository.RecordHandle, error) {
	return nil, errors.New("marker mode not used in handler tests")
}

func (l *memLedger) QueryMarkers(context.Context, string, time.Time) ([]entity.Marker, error) {
	return nil, nil
}

func newTestHandler(ledger *memLedger, mock *clock.MockClock) SubmitHandler {
	store := cache.NewLocalStore(mock)
	svc := voteUC.NewService(voteUC.Deps{
		Validator: voteUC.NewValidator(map[string]string{
			"best_spa":   "Best Spa",
			"best_hotel": "Best Hotel",
		}),
		Throttle: voteUC.NewThrottleGate(store, 2*time.Second, nil),
		Dedup:    voteUC.NewDedupGate(store, 24*time.Hour, nil),
		Writer:   voteUC.NewLedgerWriter(ledger, false, 24*time.Hour, nil),
		Clock:    mock,
	})
	return SubmitHandler{
		Svc:       svc,
		Extractor: &middleware.RemoteAddrExtractor{},
	}
}

func postVote(t *testing.T, handler SubmitHandler, remoteAddr, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/vote", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

const validBody = `{"email":"a@b.com","nominations":{"best_spa":"Spa A"}}`

func TestSubmitHandler_Accepted(t *testing.T) {
	ledger := &memLedger{}
	handler := newTestHandler(ledger, clock.NewMock(time.Now()))

	w := postVote(t, handler, "203.0.113.5:4242", validBody)

	if w.Code != http.StatusOK {
		t.Fatalf("Code = %v, want %v; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp submitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Message == "" {
		t.Error("Message is empty")
	}
	if len(ledger.votes) != 1 {
		t.Fatalf("ledger has %d votes, want 1", len(ledger.votes))
	}
	if ledger.votes[0].Identity != "203.0.113.5" {
		t.Errorf("Identity = %q, want client IP", ledger.votes[0].Identity)
	}
}

func TestSubmitHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&memLedger{}, clock.NewMock(time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/api/vote", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusMethodNotAllowed)
	}
	if got := w.Header().Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q, want %q", got, http.MethodPost)
	}
}

func TestSubmitHandler_OptionsReturns204(t *testing.T) {
	handler := newTestHandler(&memLedger{}, clock.NewMock(time.Now()))

	req := httptest.NewRequest(http.MethodOptions, "/api/vote", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusNoContent)
	}
}

func TestSubmitHandler_MalformedBody(t *testing.T) {
	handler := newTestHandler(&memLedger{}, clock.NewMock(time.Now()))

	w := postVote(t, handler, "203.0.113.5:4242", `{"email": not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Code = %v, want %v", w.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "malformed request body" {
		t.Errorf("error = %q, want %q", resp["error"], "malformed request body")
	}
}

func TestSubmitHandler_InvalidSubmission(t *testing.T) {
	handler := newTestHandler(&memLedger{}, clock.NewMock(time.Now()))

	tests := []struct {
		name string
		body string
	}{
		{name: "bad email", body: `{"email":"nope","nominations":{"best_spa":"X"}}`},
		{name: "no nominations", body: `{"email":"a@b.com","nominations":{}}`},
		{name: "unknown category", body: `{"email":"a@b.com","nominations":{"best_dog":"X"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postVote(t, handler, "203.0.113.5:4242", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Code = %v, want %v; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}
}

func TestSubmitHandler_RateLimited(t *testing.T) {
	mock := clock.NewMock(time.Now())
	handler := newTestHandler(&memLedger{}, mock)

	if w := postVote(t, handler, "203.0.113.5:4242", validBody); w.Code != http.StatusOK {
		t.Fatalf("first submission Code = %v, want %v", w.Code, http.StatusOK)
	}

	mock.Advance(time.Second)
	w := postVote(t, handler, "203.0.113.5:4242", validBody)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Code = %v, want %v", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestSubmitHandler_DuplicateVote(t *testing.T) {
	mock := clock.NewMock(time.Now())
	handler := newTestHandler(&memLedger{}, mock)

	if w := postVote(t, handler, "203.0.113.5:4242", validBody); w.Code != http.StatusOK {
		t.Fatalf("first submission Code = %v, want %v", w.Code, http.StatusOK)
	}

	mock.Advance(10 * time.Second)
	w := postVote(t, handler, "203.0.113.5:4242", validBody)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Code = %v, want %v; body: %s", w.Code, http.StatusForbidden, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp["error"], "best_spa") {
		t.Errorf("error = %q, want mention of the offending category", resp["error"])
	}
}

func TestSubmitHandler_HoneypotLooksAccepted(t *testing.T) {
	ledger := &memLedger{}
	handler := newTestHandler(ledger, clock.NewMock(time.Now()))

	body := `{"email":"a@b.com","nominations":{"best_spa":"Spa A"},"website":"http://spam.example"}`
	w := postVote(t, handler, "203.0.113.5:4242", body)

	if w.Code != http.StatusOK {
		t.Fatalf("Code = %v, want %v", w.Code, http.StatusOK)
	}

	var resp submitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("bot must receive the same success response")
	}
	if len(ledger.votes) != 0 {
		t.Errorf("ledger has %d votes, want 0 for honeypot traffic", len(ledger.votes))
	}
}

func TestSubmitHandler_LedgerFailureIs500(t *testing.T) {
	ledger := &memLedger{fail: true}
	handler := newTestHandler(ledger, clock.NewMock(time.Now()))

	w := postVote(t, handler, "203.0.113.5:4242", validBody)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Code = %v, want %v", w.Code, http.StatusInternalServerError)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "internal server error" {
		t.Errorf("error = %q, want generic message", resp["error"])
	}
}

func TestSubmitHandler_MissingClientIPStillWorks(t *testing.T) {
	ledger := &memLedger{}
	handler := newTestHandler(ledger, clock.NewMock(time.Now()))

	w := postVote(t, handler, "@", validBody)

	if w.Code != http.StatusOK {
		t.Fatalf("Code = %v, want %v; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if len(ledger.votes) != 1 {
		t.Fatalf("ledger has %d votes, want 1", len(ledger.votes))
	}
	if ledger.votes[0].Identity != middleware.UnknownIdentity {
		t.Errorf("Identity = %q, want %q", ledger.votes[0].Identity, middleware.UnknownIdentity)
	}
}
