// Package resilience groups the fault tolerance helpers used around the database.
//
//   - circuitbreaker: a gobreaker-backed Querier wrapper for *sql.DB. Only
//     infrastructure faults count against it (IsFault); while it is open calls
//     fail fast with ErrUnavailable, which the pages turn into 503.
//   - retry: exponential backoff with jitter for transient Postgres and SQLite
//     errors, used for the startup ping.
//
// Usage:
//
//	q := circuitbreaker.NewDBCircuitBreaker(database)
//	repo := postgres.NewArticleRepo(q)
//
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return database.PingContext(ctx)
//	})
package resilience
