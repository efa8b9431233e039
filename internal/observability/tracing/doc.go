// Package tracing provides OpenTelemetry tracing integration.
//
// Middleware starts a server span per request and returns the trace id in
// the X-Trace-Id header; use cases open child spans through GetTracer.
//
//	shutdown := tracing.Init(1.0)
//	defer func() { _ = shutdown(context.Background()) }()
//	handler := tracing.Middleware(mux)
package tracing
