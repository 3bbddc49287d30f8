package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"votegate/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "default level", logLevel: ""},
		{name: "debug level", logLevel: "debug"},
		{name: "unknown level falls back to info", logLevel: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)
			assert.NotNil(t, NewLogger())
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("vote accepted",
		slog.String("identity", "203.0.113.5"),
		slog.Int("categories", 2))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "vote accepted", entry["msg"])
	assert.Equal(t, "203.0.113.5", entry["identity"])
	assert.Equal(t, float64(2), entry["categories"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("enriches when present", func(t *testing.T) {
		buf.Reset()
		ctx := requestid.WithRequestID(context.Background(), "req-42")

		WithRequestID(ctx, base).Info("throttled")

		assert.True(t, strings.Contains(buf.String(), `"request_id":"req-42"`))
	})

	t.Run("no-op when absent", func(t *testing.T) {
		buf.Reset()

		WithRequestID(context.Background(), base).Info("throttled")

		assert.False(t, strings.Contains(buf.String(), "request_id"))
	})
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithFields(base, map[string]interface{}{
		"component": "dedup",
		"window":    "24h",
	})
	logger.Info("gate check")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dedup", entry["component"])
	assert.Equal(t, "24h", entry["window"])
}

func TestLoggerContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := WithLogger(context.Background(), custom)
	assert.Equal(t, custom, FromContext(ctx))

	// Without a logger in context the default is returned.
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
