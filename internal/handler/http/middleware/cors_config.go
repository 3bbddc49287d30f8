package middleware

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// EnvConfigSource implements the ConfigSource interface by loading CORS
// configuration from environment variables.
//
// Environment Variables:
//   - CORS_ALLOWED_ORIGINS: Comma-separated list of allowed origins.
//     When unset, every origin is allowed (public submission form).
//   - CORS_ALLOWED_METHODS: Comma-separated list of allowed HTTP methods (optional)
//   - CORS_ALLOWED_HEADERS: Comma-separated list of allowed request headers (optional)
//   - CORS_MAX_AGE: Preflight cache duration in seconds (optional)
//
// Example:
//
//	CORS_ALLOWED_ORIGINS=https://awards.example.com
//	CORS_ALLOWED_METHODS=POST,OPTIONS
//	CORS_ALLOWED_HEADERS=Content-Type
//	CORS_MAX_AGE=86400
type EnvConfigSource struct{}

// LoadOrigins loads the allowed origins from the CORS_ALLOWED_ORIGINS environment variable.
//
// Returns:
//   - A slice of allowed origin strings, or nil when no whitelist is
//     configured and any origin is acceptable
//   - An error if CORS_ALLOWED_ORIGINS contains invalid URLs
//
// Validation:
//   - Each origin must be a valid URL with http:// or https:// scheme
//   - Origins must not include trailing slashes
//   - Origins must not include paths, query strings, or fragments
func (s *EnvConfigSource) LoadOrigins() ([]string, error) {
	originsStr := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if originsStr == "" {
		// No whitelist: callers fall back to AllowAllValidator.
		return nil, nil
	}

	originList := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(originList))

	for _, originStr := range originList {
		originStr = strings.TrimSpace(originStr)
		if originStr == "" {
			continue
		}

		u, err := url.Parse(originStr)
		if err != nil {
			return nil, fmt.Errorf("invalid origin URL '%s': %w", originStr, err)
		}

		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin must use http or https scheme: %s", originStr)
		}

		if u.Path != "" && u.Path != "/" {
			return nil, fmt.Errorf("origin must not include path: %s", originStr)
		}
		if u.RawQuery != "" {
			return nil, fmt.Errorf("origin must not include query string: %s", originStr)
		}
		if u.Fragment != "" {
			return nil, fmt.Errorf("origin must not include fragment: %s", originStr)
		}

		if strings.HasSuffix(originStr, "/") {
			return nil, fmt.Errorf("origin must not have trailing slash: %s", originStr)
		}

		origins = append(origins, originStr)
	}

	if len(origins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS is set but contains no valid origins")
	}

	return origins, nil
}

// LoadMethods loads the allowed HTTP methods from the CORS_ALLOWED_METHODS environment variable.
//
// Returns:
//   - A slice of allowed HTTP method strings
//   - Default: ["POST", "OPTIONS"] if not configured
//   - An error if any method is invalid
func (s *EnvConfigSource) LoadMethods() ([]string, error) {
	methodsStr := strings.TrimSpace(os.Getenv("CORS_ALLOWED_METHODS"))
	if methodsStr == "" {
		// The submission endpoint only ever serves POST plus its preflight.
		return []string{"POST", "OPTIONS"}, nil
	}

	methodList := strings.Split(methodsStr, ",")
	methods := make([]string, 0, len(methodList))

	validMethods := map[string]bool{
		"GET":     true,
		"POST":    true,
		"PUT":     true,
		"DELETE":  true,
		"PATCH":   true,
		"OPTIONS": true,
	}

	for _, method := range methodList {
		method = strings.ToUpper(strings.TrimSpace(method))
		if method == "" {
			continue
		}

		if !validMethods[method] {
			return nil, fmt.Errorf("invalid HTTP method '%s': must be one of GET, POST, PUT, DELETE, PATCH, OPTIONS", method)
		}

		methods = append(methods, method)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("at least one valid HTTP method must be configured in CORS_ALLOWED_METHODS")
	}

	return methods, nil
}

// LoadHeaders loads the allowed request headers from the CORS_ALLOWED_HEADERS environment variable.
//
// Returns:
//   - A slice of allowed header names
//   - Default: ["Content-Type", "X-Request-ID"] if not configured
//   - An error if the configuration is invalid
func (s *EnvConfigSource) LoadHeaders() ([]string, error) {
	headersStr := strings.TrimSpace(os.Getenv("CORS_ALLOWED_HEADERS"))
	if headersStr == "" {
		return []string{"Content-Type", "X-Request-ID"}, nil
	}

	headerList := strings.Split(headersStr, ",")
	headers := make([]string, 0, len(headerList))

	for _, header := range headerList {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}

		headers = append(headers, header)
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("at least one valid header must be configured in CORS_ALLOWED_HEADERS")
	}

	return headers, nil
}

// LoadMaxAge loads the preflight cache duration from the CORS_MAX_AGE environment variable.
//
// Returns:
//   - An integer representing the number of seconds browsers can cache preflight results
//   - Default: 86400 (24 hours) if not configured
//   - An error if the value is not a valid non-negative integer
func (s *EnvConfigSource) LoadMaxAge() (int, error) {
	maxAgeStr := strings.TrimSpace(os.Getenv("CORS_MAX_AGE"))
	if maxAgeStr == "" {
		return 86400, nil
	}

	maxAge, err := strconv.Atoi(maxAgeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid CORS_MAX_AGE '%s': must be a valid integer", maxAgeStr)
	}

	if maxAge < 0 {
		return 0, fmt.Errorf("CORS_MAX_AGE must be non-negative, got: %d", maxAge)
	}

	return maxAge, nil
}

// LoadCORSConfig loads CORS configuration from environment variables using EnvConfigSource.
//
// Usage:
//
//	config, err := middleware.LoadCORSConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config.Logger = &middleware.SlogAdapter{Logger: logger}
//	handler = middleware.CORS(*config)(handler)
//
// Note: Caller must inject Logger after loading (Logger is not set by this function)
func LoadCORSConfig() (*CORSConfig, error) {
	source := &EnvConfigSource{}
	return LoadCORSConfigFromSource(source, nil)
}

// LoadCORSConfigFromSource loads CORS configuration from a custom ConfigSource.
// This allows loading from different sources (environment variables, files,
// remote services).
//
// When the source reports no origin whitelist, the config uses
// AllowAllValidator: any site may embed the submission form.
func LoadCORSConfigFromSource(source ConfigSource, logger CORSLogger) (*CORSConfig, error) {
	origins, err := source.LoadOrigins()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed origins: %w", err)
	}

	methods, err := source.LoadMethods()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed methods: %w", err)
	}

	headers, err := source.LoadHeaders()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed headers: %w", err)
	}

	maxAge, err := source.LoadMaxAge()
	if err != nil {
		return nil, fmt.Errorf("failed to load max age: %w", err)
	}

	var validator OriginValidator
	if len(origins) == 0 {
		validator = &AllowAllValidator{}
	} else {
		validator = NewWhitelistValidator(origins)
	}

	config := &CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: false,
		MaxAge:           maxAge,
		Validator:        validator,
		Logger:           logger, // Can be nil, caller can inject later
	}

	return config, nil
}
