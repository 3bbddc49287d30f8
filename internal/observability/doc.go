// Package observability groups the gateway's logging, metrics, and tracing
// infrastructure.
//
// Subpackages:
//   - logging: slog JSON logger with request-ID and context propagation
//   - metrics: Prometheus registry; submission outcomes, gate rejections,
//     cache tier health, HTTP request metrics
//   - tracing: OpenTelemetry middleware and tracer access
//
//	logger := logging.NewLogger()
//	logger.Info("application started")
//
//	metrics.RecordSubmission("accepted", time.Since(start))
package observability
