package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// loginAttempt tracks failed login attempts from one IP
type loginAttempt struct {
	Count    int
	FirstAt  time.Time
	LockedAt time.Time
	IsLocked bool
}

// RateLimiter locks out an IP after too many failed login attempts
type RateLimiter struct {
	mu           sync.Mutex
	attempts     map[string]*loginAttempt
	maxAttempts  int
	windowPeriod time.Duration
	lockDuration time.Duration
}

var loginRateLimiter *RateLimiter

// NewRateLimiter creates a rate limiter allowing maxAttempts failures within
// windowPeriod before locking the IP for lockDuration
func NewRateLimiter(maxAttempts int, windowPeriod, lockDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:     make(map[string]*loginAttempt),
		maxAttempts:  maxAttempts,
		windowPeriod: windowPeriod,
		lockDuration: lockDuration,
	}
}

// Check reports whether an IP may attempt a login and, when locked, how long
// the lock still holds
func (rl *RateLimiter) Check(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	attempt, exists := rl.attempts[ip]
	if !exists {
		return true, 0
	}

	now := time.Now()
	if attempt.IsLocked {
		remaining := rl.lockDuration - now.Sub(attempt.LockedAt)
		if remaining > 0 {
			return false, remaining
		}
		delete(rl.attempts, ip)
		return true, 0
	}

	if now.Sub(attempt.FirstAt) > rl.windowPeriod {
		delete(rl.attempts, ip)
		return true, 0
	}

	if attempt.Count >= rl.maxAttempts {
		return false, rl.windowPeriod - now.Sub(attempt.FirstAt)
	}
	return true, 0
}

// RecordAttempt records the outcome of a login attempt for an IP
func (rl *RateLimiter) RecordAttempt(ip string, success bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if success {
		delete(rl.attempts, ip)
		return
	}

	now := time.Now()
	attempt, exists := rl.attempts[ip]
	if !exists || now.Sub(attempt.FirstAt) > rl.windowPeriod {
		rl.attempts[ip] = &loginAttempt{Count: 1, FirstAt: now}
		return
	}

	attempt.Count++
	if attempt.Count >= rl.maxAttempts {
		attempt.IsLocked = true
		attempt.LockedAt = now
	}
}

// RecordLoginAttempt records a login outcome on the global limiter
func RecordLoginAttempt(ip string, success bool) {
	if loginRateLimiter != nil {
		loginRateLimiter.RecordAttempt(ip, success)
	}
}

// LoginRateLimitMiddleware rejects login attempts from locked-out IPs
func LoginRateLimitMiddleware() gin.HandlerFunc {
	if loginRateLimiter == nil {
		loginRateLimiter = NewRateLimiter(5, 15*time.Minute, 30*time.Minute)
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, retryAfter := loginRateLimiter.Check(ip)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "too_many_attempts",
				"message": "Too many failed login attempts, try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
