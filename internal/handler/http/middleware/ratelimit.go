package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"blog/internal/observability/logging"
	"blog/internal/observability/metrics"
)

// RateLimiter admits at most limit requests per client IP in any sliding
// window. It guards the credential endpoints against password guessing.
type RateLimiter struct {
	name      string
	limit     int
	window    time.Duration
	extractor IPExtractor
	now       func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

// RateLimiterOption customises a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithLimiterName sets the metrics label; the default is "login".
func WithLimiterName(name string) RateLimiterOption {
	return func(rl *RateLimiter) { rl.name = name }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter allows limit requests per IP within window. A nil extractor
// keys on the TCP peer.
func NewRateLimiter(limit int, window time.Duration, extractor IPExtractor, opts ...RateLimiterOption) *RateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	rl := &RateLimiter{
		name:      "login",
		limit:     limit,
		window:    window,
		extractor: extractor,
		now:       time.Now,
		hits:      make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware refuses requests over the limit with 429 and Retry-After in seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)

		wait, ok := rl.allow(key)
		if !ok {
			metrics.RecordRateLimited(rl.name)
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("limiter", rl.name),
				slog.String("ip", key),
				slog.String("path", r.URL.Path),
				slog.Int("limit", rl.limit),
				slog.Duration("window", rl.window))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// key falls back to the TCP peer, then to the raw RemoteAddr, so a request is
// always counted against something.
func (rl *RateLimiter) key(r *http.Request) string {
	ip, err := rl.extractor.ExtractIP(r)
	if err == nil {
		return ip
	}
	logging.FromContext(r.Context()).Warn("rate limiter: client ip unavailable",
		slog.String("error", err.Error()),
		slog.String("remote_addr", r.RemoteAddr))
	if peer, perr := peerAddr(r.RemoteAddr); perr == nil {
		return peer.String()
	}
	return r.RemoteAddr
}

// allow admits a request for key when fewer than limit fall inside the window.
// On refusal it returns how long until the oldest one leaves it.
func (rl *RateLimiter) allow(key string) (time.Duration, bool) {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := prune(rl.hits[key], cutoff)
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return recent[0].Sub(cutoff), false
	}
	rl.hits[key] = append(recent, now)
	return 0, true
}

// prune drops timestamps at or before cutoff, reusing ts.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return append(ts[:0], ts[i:]...)
}

// CleanupExpired forgets IPs with nothing inside the window.
func (rl *RateLimiter) CleanupExpired() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, ts := range rl.hits {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(rl.hits, key)
		}
	}
}

// Len returns the number of tracked IPs.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupExpired()
			slog.Debug("rate limiter cleanup", slog.String("limiter", rl.name), slog.Int("tracked_ips", rl.Len()))
		}
	}
}
