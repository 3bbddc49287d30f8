package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is the configured origin whitelist, kept for logging.
	// Validation itself goes through the Validator interface.
	AllowedOrigins []string

	// AllowedMethods specifies which HTTP methods are allowed in CORS requests.
	// Configurable via CORS_ALLOWED_METHODS environment variable.
	// Default: ["POST", "OPTIONS"]
	AllowedMethods []string

	// AllowedHeaders specifies which request headers are allowed in CORS requests.
	// Configurable via CORS_ALLOWED_HEADERS environment variable.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization
	// headers) are supported. The public submission form needs none, so this
	// defaults to false.
	AllowCredentials bool

	// MaxAge specifies how long preflight results can be cached (in seconds).
	// Configurable via CORS_MAX_AGE environment variable.
	// Default: 86400 (24 hours)
	MaxAge int

	// Validator is the origin validation strategy.
	Validator OriginValidator

	// Logger is the logging interface. Allows testing with NoOpLogger and
	// custom logging implementations.
	Logger CORSLogger
}

// CORS returns an HTTP middleware that handles CORS for cross-origin requests.
// It validates origins using the configured OriginValidator and sets appropriate
// CORS headers for allowed origins.
//
// Behavior:
//   - If Origin header is empty, skip CORS processing (same-origin request)
//   - If Origin is not allowed, log warning and continue without CORS headers
//   - If Origin is allowed and request is OPTIONS (preflight):
//     set Access-Control-Allow-Origin, Allow-Methods, Allow-Headers, Max-Age
//     and return 204 No Content (do not call next handler)
//   - If Origin is allowed and request is not OPTIONS (actual request):
//     set Access-Control-Allow-Origin and pass the request through
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin request, nothing to do.
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !config.Validator.IsAllowed(origin) {
				if config.Logger != nil {
					config.Logger.Warn("CORS: origin not allowed", map[string]interface{}{
						"origin":      origin,
						"path":        r.URL.Path,
						"method":      r.Method,
						"remote_addr": r.RemoteAddr,
					})
				}

				// No CORS headers for disallowed origins. The browser blocks
				// the response.
				next.ServeHTTP(w, r)
				return
			}

			// Echo back the request origin rather than "*" so the same code
			// path works when a whitelist is configured.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))

				if config.Logger != nil {
					config.Logger.Debug("CORS: preflight request", map[string]interface{}{
						"origin":            origin,
						"requested_method":  r.Header.Get("Access-Control-Request-Method"),
						"requested_headers": r.Header.Get("Access-Control-Request-Headers"),
					})
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
