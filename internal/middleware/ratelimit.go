package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowLimiter limits requests per key (e.g. client IP) in fixed
// windows. Cheap enough for a single-instance deployment; a shared limiter
// would live in redis.
type FixedWindowLimiter struct {
	mu     sync.Mutex
	seen   map[string]*window
	limit  int
	length time.Duration
}

func NewFixedWindowLimiter(limit int, length time.Duration) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		seen:   make(map[string]*window),
		limit:  limit,
		length: length,
	}
	go l.cleanup()
	return l
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.seen[key]
	if w == nil || now.Sub(w.start) >= l.length {
		l.seen[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *FixedWindowLimiter) cleanup() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		now := time.Now()
		l.mu.Lock()
		for k, w := range l.seen {
			if now.Sub(w.start) >= l.length {
				delete(l.seen, k)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit returns a middleware that limits by client IP. Not applied to
// the webhook route: throttling the processor only feeds its retry machinery.
func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
