package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterWindow(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 3, nil)
	now := time.Now()

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := limiter.take("10.0.0.1", now)
		if !allowed {
			t.Fatalf("request %d blocked, want allowed", i+1)
		}
		if remaining != 3-(i+1) {
			t.Errorf("request %d remaining = %d, want %d", i+1, remaining, 3-(i+1))
		}
	}

	if allowed, _, _ := limiter.take("10.0.0.1", now); allowed {
		t.Error("request 4 allowed, want blocked")
	}

	// Another client has its own window
	if allowed, _, _ := limiter.take("10.0.0.2", now); !allowed {
		t.Error("different IP blocked, want allowed")
	}

	// The window resets after it elapses
	if allowed, _, _ := limiter.take("10.0.0.1", now.Add(2*time.Minute)); !allowed {
		t.Error("request after window reset blocked, want allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 2, &captureAudit{})

	router := gin.New()
	router.GET("/r", limiter.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/r", nil))
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if last.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", last.Header().Get("X-RateLimit-Limit"))
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", last.Header().Get("X-RateLimit-Remaining"))
	}
	if last.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing")
	}

	var body struct {
		Error string `json:"error"`
		Data  struct {
			RetryAfter int `json:"retryAfter"`
		} `json:"data"`
	}
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("429 body not JSON: %v (%s)", err, last.Body.String())
	}
	if body.Error == "" {
		t.Error("429 body missing error message")
	}
	if body.Data.RetryAfter < 1 {
		t.Errorf("retryAfter = %d, want at least 1", body.Data.RetryAfter)
	}
}
