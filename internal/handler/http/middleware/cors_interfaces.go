package middleware

// OriginValidator decides which origins may call the vote endpoint.
// The submission form is usually embedded on third-party pages, so the
// default is AllowAllValidator; CORS_ALLOWED_ORIGINS switches to an
// exact-match whitelist.
//
//	validator := NewWhitelistValidator([]string{"https://awards.example.com"})
//	allowed := validator.IsAllowed("https://awards.example.com") // true
type OriginValidator interface {
	// IsAllowed checks if the given origin is permitted for CORS requests.
	// Comparison is case-sensitive, trailing slashes are not expected, and
	// an empty origin is never allowed.
	IsAllowed(origin string) bool

	// GetAllowedOrigins returns the configured origins for startup logging.
	// Implementations return a defensive copy, not internal state; the
	// allow-all validator returns ["*"].
	GetAllowedOrigins() []string
}

// ConfigSource loads CORS configuration. The production source is
// environment variables (EnvConfigSource); tests inject fixed values.
type ConfigSource interface {
	// LoadOrigins returns the origin whitelist, or (nil, nil) when no
	// whitelist is configured and any origin may submit.
	// Each configured origin must be a valid http:// or https:// URL
	// without a trailing slash.
	LoadOrigins() ([]string, error)

	// LoadMethods returns the allowed methods. Defaults to
	// ["POST", "OPTIONS"]: the gateway has one write route plus preflight.
	LoadMethods() ([]string, error)

	// LoadHeaders returns the allowed request headers. Defaults to
	// ["Content-Type", "X-Request-ID"].
	LoadHeaders() ([]string, error)

	// LoadMaxAge returns the preflight cache duration in seconds.
	// Must be non-negative; defaults to 86400.
	LoadMaxAge() (int, error)
}

// CORSLogger decouples CORS logging from slog so tests can run with
// NoOpLogger.
//
//	logger := &SlogAdapter{Logger: slog.Default()}
//	logger.Warn("CORS: origin not allowed", map[string]interface{}{
//	    "origin": origin,
//	    "path":   "/api/vote",
//	})
type CORSLogger interface {
	// Info logs startup configuration and notable CORS events.
	Info(msg string, fields map[string]interface{})

	// Warn logs policy violations such as rejected origins.
	Warn(msg string, fields map[string]interface{})

	// Debug logs per-request processing, preflight handling included.
	Debug(msg string, fields map[string]interface{})
}
