package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ClientLimiter caps requests per client IP over a fixed window. Counters
// live in memory, which is enough for a single-instance deployment; the
// webhook endpoints sit behind it too, so the limit must stay above the
// gateways' retry bursts.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	span    time.Duration
}

type window struct {
	start time.Time
	count int
}

func NewClientLimiter(limit int, span time.Duration) *ClientLimiter {
	l := &ClientLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		span:    span,
	}
	go l.sweep()
	return l
}

// Allow counts one request for key and reports whether it fits the current
// window. A window that has elapsed resets rather than slides.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.span {
		l.clients[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *ClientLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.clients {
			if now.Sub(w.start) >= l.span {
				delete(l.clients, key)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit rejects clients over their window budget with a 429.
func RateLimit(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}
