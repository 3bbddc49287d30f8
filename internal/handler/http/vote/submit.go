// Package vote provides the HTTP handler for the public vote submission
// endpoint. It decodes submissions, resolves the client identity, and maps
// pipeline outcomes to the documented status codes.
package vote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"votegate/internal/domain/entity"
	"votegate/internal/handler/http/middleware"
	"votegate/internal/handler/http/respond"
	voteUC "votegate/internal/usecase/vote"
)

// SubmitHandler accepts vote submissions.
type SubmitHandler struct {
	Svc       *voteUC.Service
	Extractor middleware.IPExtractor
	Logger    *slog.Logger
}

// ServeHTTP handles POST /api/vote.
//
// Status codes:
//   - 200: submission accepted (also for silently discarded bot traffic)
//   - 204: CORS preflight (handled upstream by the CORS middleware)
//   - 400: malformed body or invalid submission
//   - 403: duplicate vote inside the dedup window
//   - 405: non-POST method
//   - 429: throttled
//   - 500: ledger failure
func (h SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Preflights normally terminate in the CORS middleware; answer 204 here
	// as well for non-browser OPTIONS probes.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("malformed request body"))
		return
	}

	identity := middleware.Identity(h.Extractor, r)

	res, err := h.Svc.Submit(r.Context(), identity, voteUC.Input{
		Email:       req.Email,
		Nominations: req.Nominations,
		Honeypot:    req.Website,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, submitResponse{
		Success: true,
		Message: res.Message,
	})
}

// writeError maps pipeline errors to status codes. Expected rejections carry
// their message verbatim; anything else becomes a generic 500.
func (h SubmitHandler) writeError(w http.ResponseWriter, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		respond.Error(w, http.StatusBadRequest, verr)
		return
	}

	var dup *entity.DuplicateVoteError
	if errors.As(err, &dup) {
		respond.Error(w, http.StatusForbidden, dup)
		return
	}

	if errors.Is(err, voteUC.ErrRateLimited) {
		w.Header().Set("Retry-After", "2")
		respond.Error(w, http.StatusTooManyRequests, voteUC.ErrRateLimited)
		return
	}

	respond.SafeError(w, http.StatusInternalServerError, err)
}
