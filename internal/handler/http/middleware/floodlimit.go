package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"votegate/internal/handler/http/respond"
)

// FloodLimiter applies a coarse per-client request budget in front of the
// application. It is independent of the vote throttle: the throttle guards
// one identity+category pair, this guards the HTTP surface as a whole.
type FloodLimiter struct {
	mu       sync.Mutex
	limiters map[string]*floodEntry

	rps       rate.Limit
	burst     int
	extractor IPExtractor
}

type floodEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFloodLimiter creates a limiter allowing rps requests per second with the
// given burst per client IP. Clients without a resolvable IP share the
// UnknownIdentity bucket.
func NewFloodLimiter(rps float64, burst int, extractor IPExtractor) *FloodLimiter {
	if extractor == nil {
		extractor = &RemoteAddrExtractor{}
	}
	return &FloodLimiter{
		limiters:  make(map[string]*floodEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		extractor: extractor,
	}
}

// Allow reports whether a request from the given client may proceed.
func (f *FloodLimiter) Allow(client string) bool {
	f.mu.Lock()
	entry, ok := f.limiters[client]
	if !ok {
		entry = &floodEntry{limiter: rate.NewLimiter(f.rps, f.burst)}
		f.limiters[client] = entry
	}
	entry.lastSeen = time.Now()
	f.mu.Unlock()

	return entry.limiter.Allow()
}

// Prune removes limiters idle for longer than maxIdle and returns the number
// removed. Meant to be called periodically so the map does not grow with every
// IP ever seen.
func (f *FloodLimiter) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for client, entry := range f.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(f.limiters, client)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (f *FloodLimiter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.limiters)
}

// Middleware rejects over-budget requests with 429 before they reach the
// application handlers. Preflight OPTIONS requests are never counted.
func (f *FloodLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		client := Identity(f.extractor, r)
		if !f.Allow(client) {
			w.Header().Set("Retry-After", "1")
			respond.Error(w, http.StatusTooManyRequests, errors.New("too many requests, retry later"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
