// Package ratelimit throttles the sign-in endpoints per client IP and locks
// accounts after repeated failed passwords.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultIPRequestsPerMinute = 10
	DefaultIPWindowDuration    = time.Minute
	DefaultMaxFailedAttempts   = 5
	DefaultLockoutDuration     = 15 * time.Minute
	MaxLockoutDuration         = time.Hour

	// cleanupEvery is how many calls pass between sweeps of expired state.
	cleanupEvery = 256
)

type ipBucket struct {
	count     int64
	resetTime time.Time
}

type accountLockout struct {
	failedAttempts int
	lockedUntil    time.Time
	lockoutCount   int
}

// AuthLimiter tracks request rates per IP and failed logins per username.
// Usernames are compared case-insensitively.
type AuthLimiter struct {
	mu              sync.Mutex
	ipBuckets       map[string]*ipBucket
	accountLockouts map[string]*accountLockout
	calls           int
	now             func() time.Time

	ipLimit             int64
	ipWindow            time.Duration
	maxFailedAttempts   int
	baseLockoutDuration time.Duration
}

// NewAuthLimiter creates a limiter with the default thresholds.
func NewAuthLimiter() *AuthLimiter {
	return &AuthLimiter{
		ipBuckets:           make(map[string]*ipBucket),
		accountLockouts:     make(map[string]*accountLockout),
		now:                 time.Now,
		ipLimit:             DefaultIPRequestsPerMinute,
		ipWindow:            DefaultIPWindowDuration,
		maxFailedAttempts:   DefaultMaxFailedAttempts,
		baseLockoutDuration: DefaultLockoutDuration,
	}
}

// SetClock replaces the time source. Used by tests.
func (l *AuthLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// SetIPLimit changes how many requests one IP may make per window.
func (l *AuthLimiter) SetIPLimit(limit int64, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ipLimit = limit
	l.ipWindow = window
}

// Middleware rejects requests from IPs over their budget with 429.
func (l *AuthLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allowIP(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}

func (l *AuthLimiter) allowIP(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	bucket, exists := l.ipBuckets[ip]
	if !exists || now.After(bucket.resetTime) {
		l.ipBuckets[ip] = &ipBucket{
			count:     1,
			resetTime: now.Add(l.ipWindow),
		}
		return true
	}

	if bucket.count >= l.ipLimit {
		return false
	}

	bucket.count++
	return true
}

// IsAccountLocked reports whether username is inside a lockout window.
func (l *AuthLimiter) IsAccountLocked(username string) bool {
	return l.LockoutRemaining(username) > 0
}

// LockoutRemaining returns how long username stays locked, or zero.
func (l *AuthLimiter) LockoutRemaining(username string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	lockout, exists := l.accountLockouts[key(username)]
	if !exists {
		return 0
	}

	remaining := lockout.lockedUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailedAttempt counts a wrong password. Each lockout lasts longer
// than the previous one, up to MaxLockoutDuration.
func (l *AuthLimiter) RecordFailedAttempt(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(username)
	lockout, exists := l.accountLockouts[k]
	if !exists {
		lockout = &accountLockout{}
		l.accountLockouts[k] = lockout
	}

	if now.After(lockout.lockedUntil) && lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.failedAttempts = 0
	}

	lockout.failedAttempts++

	if lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.lockoutCount++
		duration := l.baseLockoutDuration * time.Duration(lockout.lockoutCount)
		if duration > MaxLockoutDuration {
			duration = MaxLockoutDuration
		}
		lockout.lockedUntil = now.Add(duration)
	}
}

// RecordSuccessfulLogin forgets the failure history of username.
func (l *AuthLimiter) RecordSuccessfulLogin(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.accountLockouts, key(username))
}

// Cleanup drops expired IP buckets and settled lockouts.
func (l *AuthLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanup(l.now())
}

func (l *AuthLimiter) maybeCleanup(now time.Time) {
	l.calls++
	if l.calls%cleanupEvery == 0 {
		l.cleanup(now)
	}
}

func (l *AuthLimiter) cleanup(now time.Time) {
	for ip, bucket := range l.ipBuckets {
		if now.After(bucket.resetTime) {
			delete(l.ipBuckets, ip)
		}
	}

	for username, lockout := range l.accountLockouts {
		if now.After(lockout.lockedUntil) && lockout.failedAttempts < l.maxFailedAttempts {
			delete(l.accountLockouts, username)
		}
	}
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
