package vault

import (
	"sync"
	"time"
)

// Unlock attempt limits.
const (
	MaxAttempts  = 5
	baseLockout  = 30 * time.Second
	maxLockout   = 10 * time.Minute
	attemptReset = 5 * time.Minute
)

type attempt struct {
	count       int
	last        time.Time
	lockedUntil time.Time
	lockouts    int
}

// Verdict is the outcome of a rate-limit check or a recorded failure.
type Verdict struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter tracks failed unlock attempts per note. After MaxAttempts
// failures the note is locked out for 30s, doubling on every further
// lockout up to 10 minutes. Failures older than 5 minutes are forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string]*attempt
}

// NewRateLimiter returns an empty limiter reading time from now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{now: now, attempts: make(map[string]*attempt)}
}

// Check reports whether an attempt on key may proceed.
func (rl *RateLimiter) Check(key string) Verdict {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)
	a, ok := rl.attempts[key]
	if !ok {
		return Verdict{Allowed: true, Remaining: MaxAttempts}
	}
	if now.Before(a.lockedUntil) {
		left := a.lockedUntil.Sub(now)
		return Verdict{RetryAfter: left.Truncate(time.Second) + time.Second}
	}
	return Verdict{Allowed: true, Remaining: max(MaxAttempts-a.count, 0)}
}

// Fail records a failed attempt on key.
func (rl *RateLimiter) Fail(key string) Verdict {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	a, ok := rl.attempts[key]
	if !ok {
		a = &attempt{last: now}
		rl.attempts[key] = a
	}
	if now.Sub(a.last) > attemptReset {
		a.count = 0
		a.lockedUntil = time.Time{}
	}
	a.count++
	a.last = now
	if a.count >= MaxAttempts {
		lockout := maxLockout
		if a.lockouts < 5 {
			lockout = min(baseLockout<<a.lockouts, maxLockout)
		}
		a.lockedUntil = now.Add(lockout)
		a.lockouts++
		return Verdict{RetryAfter: lockout}
	}
	return Verdict{Allowed: true, Remaining: MaxAttempts - a.count}
}

// Succeed clears key's history.
func (rl *RateLimiter) Succeed(key string) {
	rl.mu.Lock()
	delete(rl.attempts, key)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for k, a := range rl.attempts {
		if now.Before(a.lockedUntil) || now.Sub(a.last) < 2*attemptReset {
			continue
		}
		delete(rl.attempts, k)
	}
}
