package vote

import (
	"log/slog"
	"net/http"

	"votegate/internal/handler/http/middleware"
	voteUC "votegate/internal/usecase/vote"
)

// Register registers the vote submission handler with the given mux.
// OPTIONS is routed too so CORS preflights reach the middleware chain instead
// of the mux's default 405.
func Register(mux *http.ServeMux, svc *voteUC.Service, extractor middleware.IPExtractor, logger *slog.Logger) {
	handler := SubmitHandler{
		Svc:       svc,
		Extractor: extractor,
		Logger:    logger,
	}
	mux.Handle("POST /api/vote", handler)
	mux.Handle("OPTIONS /api/vote", handler)
	// Any other method on the endpoint gets an explicit 405.
	mux.Handle("/api/vote", handler)
}
