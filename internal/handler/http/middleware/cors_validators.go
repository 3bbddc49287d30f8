package middleware

import (
	"strings"
)

// AllowAllValidator accepts every origin. The submission form is embedded on
// arbitrary partner sites, so this is the default when no whitelist is
// configured.
type AllowAllValidator struct{}

// IsAllowed returns true for any non-empty origin.
func (v *AllowAllValidator) IsAllowed(origin string) bool {
	return origin != ""
}

// GetAllowedOrigins returns the wildcard marker for logging.
func (v *AllowAllValidator) GetAllowedOrigins() []string {
	return []string{"*"}
}

// WhitelistValidator implements exact-match origin validation for CORS requests.
// It validates origins against a predefined whitelist using case-insensitive
// string comparison.
//
// Example usage:
//
//	validator := NewWhitelistValidator([]string{
//	    "http://localhost:3000",
//	    "https://example.com",
//	})
//	allowed := validator.IsAllowed("http://localhost:3000") // true
//	allowed = validator.IsAllowed("http://malicious.com")   // false
type WhitelistValidator struct {
	allowedOrigins []string
}

// NewWhitelistValidator creates a new WhitelistValidator with the given list of allowed origins.
//
// Implementation notes:
//   - Origins are normalized: converted to lowercase and trailing slashes removed
//   - Empty origins are filtered out
func NewWhitelistValidator(origins []string) *WhitelistValidator {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		origin = strings.ToLower(origin)
		origin = strings.TrimSuffix(origin, "/")
		normalized = append(normalized, origin)
	}

	return &WhitelistValidator{
		allowedOrigins: normalized,
	}
}

// IsAllowed checks if the given origin is in the whitelist.
// Comparison is case-insensitive and ignores trailing slashes.
// Empty origins return false.
func (v *WhitelistValidator) IsAllowed(origin string) bool {
	if origin == "" {
		return false
	}

	origin = strings.ToLower(strings.TrimSpace(origin))
	origin = strings.TrimSuffix(origin, "/")

	for _, allowed := range v.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// GetAllowedOrigins returns a defensive copy of the allowed origins list.
func (v *WhitelistValidator) GetAllowedOrigins() []string {
	out := make([]string, len(v.allowedOrigins))
	copy(out, v.allowedOrigins)
	return out
}
