package http

import (
	"net/http"
)

// maxSubmissionBytes bounds the request body. A full ballot is a few KB of
// JSON at most; 64KB leaves generous headroom.
const maxSubmissionBytes = 64 << 10

// InputValidation returns middleware that validates and limits request inputs.
// It enforces limits on:
// - URI path length (2KB)
// - Request body size (64KB)
//
// This prevents DoS attacks and ensures reasonable request sizes.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Path length limit (2KB)
			if len(r.URL.Path) > 2048 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

			next.ServeHTTP(w, r)
		})
	}
}
