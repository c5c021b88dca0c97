package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

// rateLimitEntry tracks request counts for one key within a fixed window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware that allows at most maxRequests per client
// IP within window. Excess requests fail with 429. Used on move-day and
// publish, where a burst usually means a stuck mouse or a retry loop.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	limiter := &rateLimiter{
		max:     maxRequests,
		window:  window,
		entries: make(map[string]*rateLimitEntry),
	}
	go limiter.sweep()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.allow(c.RealIP(), time.Now()) {
				return apperror.NewTooManyRequests("Too many requests. Please wait a moment and try again.")
			}
			return next(c)
		}
	}
}

type rateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*rateLimitEntry
}

func (l *rateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) > l.window {
		l.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}
	entry.count++
	return entry.count <= l.max
}

// sweep drops expired entries once a minute for the life of the process.
func (l *rateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		for key, entry := range l.entries {
			if now.Sub(entry.windowStart) > l.window*2 {
				delete(l.entries, key)
			}
		}
		l.mu.Unlock()
	}
}
