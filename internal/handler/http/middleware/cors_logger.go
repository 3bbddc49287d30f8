package middleware

import (
	"log/slog"
)

// SlogAdapter adapts log/slog to the CORSLogger interface, converting
// map-based fields to slog attributes.
type SlogAdapter struct {
	Logger *slog.Logger
}

func (a *SlogAdapter) log(fn func(string, ...any), msg string, fields map[string]interface{}) {
	if fields == nil {
		fn(msg)
		return
	}
	args := make([]interface{}, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	fn(msg, args...)
}

// Info logs informational messages using slog.Info.
func (a *SlogAdapter) Info(msg string, fields map[string]interface{}) {
	a.log(a.Logger.Info, msg, fields)
}

// Warn logs warning messages using slog.Warn.
func (a *SlogAdapter) Warn(msg string, fields map[string]interface{}) {
	a.log(a.Logger.Warn, msg, fields)
}

// Debug logs debug messages using slog.Debug.
func (a *SlogAdapter) Debug(msg string, fields map[string]interface{}) {
	a.log(a.Logger.Debug, msg, fields)
}

// NoOpLogger discards all CORS log output. Used in tests.
type NoOpLogger struct{}

func (l *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (l *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
