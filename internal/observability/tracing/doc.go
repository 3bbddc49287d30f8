// Package tracing provides OpenTelemetry tracing for the submission path.
//
// The HTTP middleware continues incoming W3C trace contexts, opens a
// server span per request, and echoes the trace ID in the X-Trace-Id
// response header. Pipeline stages can open child spans through GetTracer.
//
//	handler := tracing.Middleware(mux)
//
//	ctx, span := tracing.GetTracer().Start(ctx, "ledger.append")
//	defer span.End()
package tracing
