package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("client-a", 3), "request %d should pass", i)
	}
	assert.False(t, l.Allow("client-a", 3), "bucket should be exhausted")

	// Other clients have independent buckets.
	assert.True(t, l.Allow("client-b", 3))
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewLimiter(time.Minute)
	handler := RateLimit(l, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/v1/rosters/1/lookup"))
	assert.Equal(t, http.StatusOK, do("/api/v1/rosters/1/lookup"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/rosters/1/lookup"))

	// Health probes are never throttled.
	assert.Equal(t, http.StatusOK, do("/health/ready"))
}

func TestClientIPForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.1", clientIP(req))
}
