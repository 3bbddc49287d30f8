// Package logging wraps log/slog with the helpers the gateway uses in
// every layer: a JSON logger configured from LOG_LEVEL, request-ID
// enrichment, and context propagation.
//
// Gate decisions are logged structured so a rejected vote can be traced
// from the access log to the pipeline stage that refused it:
//
//	logger := logging.WithRequestID(ctx, slog.Default())
//	logger.Info("vote accepted", slog.String("identity", identity))
package logging
