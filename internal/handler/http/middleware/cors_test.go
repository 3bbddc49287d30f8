package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCORSHandler(config CORSConfig) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return CORS(config)(next)
}

func testCORSConfig(validator OriginValidator) CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
		Validator:      validator,
		Logger:         &NoOpLogger{},
	}
}

func TestCORS_SameOriginRequestSkipsProcessing(t *testing.T) {
	handler := newCORSHandler(testCORSConfig(&AllowAllValidator{}))

	req := httptest.NewRequest(http.MethodPost, "/api/vote", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusNoContent)
	}
}

func TestCORS_AllowedOriginActualRequest(t *testing.T) {
	handler := newCORSHandler(testCORSConfig(&AllowAllValidator{}))

	req := httptest.NewRequest(http.MethodPost, "/api/vote", nil)
	req.Header.Set("Origin", "https://awards.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://awards.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want request origin echoed", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want unset", got)
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusNoContent)
	}
}

func TestCORS_PreflightRequest(t *testing.T) {
	handler := newCORSHandler(testCORSConfig(&AllowAllValidator{}))

	req := httptest.NewRequest(http.MethodOptions, "/api/vote", nil)
	req.Header.Set("Origin", "https://awards.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Code = %v, want %v", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "POST, OPTIONS")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Request-ID" {
		t.Errorf("Access-Control-Allow-Headers = %q, want %q", got, "Content-Type, X-Request-ID")
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want %q", got, "86400")
	}
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	validator := NewWhitelistValidator([]string{"https://awards.example.com"})
	handler := newCORSHandler(testCORSConfig(validator))

	req := httptest.NewRequest(http.MethodPost, "/api/vote", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty for disallowed origin", got)
	}
	// The request itself still reaches the handler; the browser enforces the block.
	if w.Code != http.StatusNoContent {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusNoContent)
	}
}

func TestCORS_CredentialsHeaderWhenEnabled(t *testing.T) {
	config := testCORSConfig(&AllowAllValidator{})
	config.AllowCredentials = true
	handler := newCORSHandler(config)

	req := httptest.NewRequest(http.MethodPost, "/api/vote", nil)
	req.Header.Set("Origin", "https://awards.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}
}
