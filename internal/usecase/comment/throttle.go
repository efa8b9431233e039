package comment

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a per-user token bucket for comment submissions.
type Throttle struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	users     map[int64]*userLimiter
	lastSweep time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle allows perMinute comments per user per minute, with bursts of up to burst.
// A non-positive perMinute returns nil, which allows everything.
//
//	t := NewThrottle(10, 5) // 5 immediately, then one every 6s
func NewThrottle(perMinute float64, burst int) *Throttle {
	if perMinute <= 0 {
		return nil
	}
	return &Throttle{
		limit: rate.Limit(perMinute / 60),
		burst: burst,
		idle:  10 * time.Minute,
		now:   time.Now,
		users: make(map[int64]*userLimiter),
	}
}

// Allow consumes a token for userID, reporting false when none is left.
func (t *Throttle) Allow(userID int64) bool {
	return t.Reserve(userID) == 0
}

// Reserve consumes a token for userID and returns 0, or returns how long
// until the next token without consuming anything.
func (t *Throttle) Reserve(userID int64) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	u, ok := t.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.users[userID] = u
	}
	u.lastSeen = now

	r := u.limiter.ReserveN(now, 1)
	if !r.OK() {
		return t.idle
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait
	}
	return 0
}

// sweep drops limiters idle long enough to have refilled completely.
// Caller holds t.mu.
func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.idle {
		return
	}
	t.lastSweep = now
	for id, u := range t.users {
		if now.Sub(u.lastSeen) >= t.idle {
			delete(t.users, id)
		}
	}
}

// Len returns the number of users currently tracked.
func (t *Throttle) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}
