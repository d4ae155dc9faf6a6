package middleware

import (
	"strconv"
	"sync"
	"time"

	"main/model"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count     int
	resetTime time.Time
}

// RateLimiter is a process-local fixed-window counter keyed by client IP.
// State is not shared between instances, so the limit applies per process.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow

	window      time.Duration
	maxRequests int
	audit       usecase.SecurityLogger
}

func NewRateLimiter(window time.Duration, maxRequests int, audit usecase.SecurityLogger) *RateLimiter {
	return &RateLimiter{
		windows:     make(map[string]*rateWindow),
		window:      window,
		maxRequests: maxRequests,
		audit:       audit,
	}
}

// take increments the counter for ip and reports whether the request is
// within the limit, plus the remaining budget and window reset time.
func (r *RateLimiter) take(ip string, now time.Time) (allowed bool, remaining int, reset time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[ip]
	if !ok || now.After(w.resetTime) {
		w = &rateWindow{resetTime: now.Add(r.window)}
		r.windows[ip] = w
	}
	w.count++

	remaining = r.maxRequests - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= r.maxRequests, remaining, w.resetTime
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		allowed, remaining, reset := r.take(ip, now)

		c.Header("X-RateLimit-Limit", strconv.Itoa(r.maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", reset.UTC().Format(time.RFC3339))

		if !allowed {
			if r.audit != nil {
				r.audit.LogSecurity(model.SecurityEvent{
					UserID:      c.GetString("user_id"),
					EventType:   "rate_limit_exceeded",
					Description: "Rate limit exceeded from IP " + ip,
					Severity:    model.SeverityWarning,
					Metadata: map[string]any{
						"ip_address":   ip,
						"max_requests": r.maxRequests,
						"path":         c.Request.URL.Path,
					},
				})
			}
			utils.TooManyRequests(c, "Too many requests, please try again later", gin.H{
				"retryAfter": int(time.Until(reset).Seconds()) + 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
