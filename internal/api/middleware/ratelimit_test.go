package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"credit-approval/internal/api/middleware"
	"credit-approval/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("should pass requests through when disabled", func(t *testing.T) {
		rl := middleware.NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false}, testLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rl.Middleware(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should allow bursts up to the configured size", func(t *testing.T) {
		rl := middleware.NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 3}, testLogger())
		h := rl.Middleware(okHandler())

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1"
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1"
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("should track clients independently", func(t *testing.T) {
		rl := middleware.NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, testLogger())
		h := rl.Middleware(okHandler())

		first := httptest.NewRecorder()
		reqA := httptest.NewRequest(http.MethodGet, "/", nil)
		reqA.RemoteAddr = "10.0.0.1"
		h.ServeHTTP(first, reqA)
		assert.Equal(t, http.StatusOK, first.Code)

		blocked := httptest.NewRecorder()
		reqA2 := httptest.NewRequest(http.MethodGet, "/", nil)
		reqA2.RemoteAddr = "10.0.0.1"
		h.ServeHTTP(blocked, reqA2)
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

		other := httptest.NewRecorder()
		reqB := httptest.NewRequest(http.MethodGet, "/", nil)
		reqB.RemoteAddr = "10.0.0.2"
		h.ServeHTTP(other, reqB)
		assert.Equal(t, http.StatusOK, other.Code)
	})
}
