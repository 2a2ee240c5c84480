package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/school-locator/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max int, window time.Duration, trustProxy bool) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(max, window, trustProxy)
	l.now = clock.now
	return l, clock
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

func TestRateLimiter_Limit(t *testing.T) {
	t.Run("rate limit not exceeded", func(t *testing.T) {
		l, _ := newTestLimiter(5, time.Minute, false)
		req := httptest.NewRequest("GET", "/api/schools/nearest", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		l.Limit(okHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		l, clock := newTestLimiter(1, time.Minute, false)
		h := l.Limit(okHandler())
		req := httptest.NewRequest("GET", "/api/schools/nearest", nil)
		req.RemoteAddr = "192.168.1.2:12345"

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		clock.advance(20 * time.Second)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "40", w.Header().Get("Retry-After"))

		clock.advance(41 * time.Second)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		l, _ := newTestLimiter(0, time.Minute, false)
		h := l.Limit(okHandler())
		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
		assert.Zero(t, l.Keys())
	})
}

func TestRateLimiter_IgnoresForwardedHeadersByDefault(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute, false)
	h := l.Limit(okHandler())

	allowed := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("POST", "/api/schools/nearest", nil)
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
	assert.Equal(t, 1, l.Keys())
}

func TestRateLimiter_TrustedProxy(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, true)
	h := l.Limit(okHandler())

	for _, fwd := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fwd+", 10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, fwd)
	}
	assert.Equal(t, 2, l.Keys())
}

func TestRateLimiter_KeysByClient(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, false)
	h := l.Limit(okHandler())

	send := func(clientID, remote string) int {
		req := httptest.NewRequest("POST", "/api/schools/nearest", nil)
		req.RemoteAddr = remote
		ctx := context.WithValue(req.Context(), ClientContextKey, &models.Claims{ClientID: clientID})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req.WithContext(ctx))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("mapper", "198.51.100.1:1"))
	// same client from another address shares the budget
	assert.Equal(t, http.StatusTooManyRequests, send("mapper", "198.51.100.2:1"))
	// another client behind the same address has its own
	assert.Equal(t, http.StatusOK, send("atlas", "198.51.100.1:1"))
}

func TestRateLimiter_SweepsIdleKeys(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute, false)
	h := l.Limit(okHandler())

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1000", i)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 20, l.Keys())

	clock.advance(2 * time.Minute)
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.200:1000"
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 1, l.Keys())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req, false))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.1", clientIP(req, false))
	assert.Equal(t, "10.0.0.2", clientIP(req, true))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", clientIP(req, true))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req, false))
}
