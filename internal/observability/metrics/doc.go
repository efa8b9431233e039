// Package metrics provides the Prometheus metrics registry and recording helpers.
//
// It centralizes:
//   - HTTP request metrics (duration, count, size, in-flight)
//   - Comment activity (created, discarded by reason)
//   - Database connection pool gauges
//
// All metrics are registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	created, err := comments.Create(ctx, in)
//	if err == nil && created {
//	    metrics.RecordCommentCreated()
//	}
package metrics
