// Package observability groups the logging, metrics and tracing used by the blog server.
//
// Subpackages:
//   - logging: slog JSON logger and request-scoped loggers
//   - metrics: the Prometheus collectors for HTTP, database, auth and business events
//   - tracing: OpenTelemetry provider setup and the HTTP span middleware
//
// Example usage:
//
//	import (
//	    "blog/internal/observability/logging"
//	    "blog/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger(os.Stdout, "info")
//	    logger.Info("application started")
//
//	    metrics.RecordCommentCreated()
//	}
package observability
