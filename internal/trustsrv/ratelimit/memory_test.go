package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

func TestMain(m *testing.M) {
	config.TestInit()
	m.Run()
}

func TestMemoryLimiterFixedWindow(t *testing.T) {
	now := time.Now()
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(context.Background(), "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 3-i-1, decision.Remaining)
	}

	decision, err := limiter.Allow(context.Background(), "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)

	// Separate keys get separate windows.
	decision, err = limiter.Allow(context.Background(), "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// The window resets once it elapses.
	now = now.Add(61 * time.Second)
	decision, err = limiter.Allow(context.Background(), "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLimiterZeroLimitAllows(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	decision, err := limiter.Allow(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLimiterCapacity(t *testing.T) {
	now := time.Now()
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }, MaxKeys: 2})

	_, err := limiter.Allow(context.Background(), "a", 1, time.Minute)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "b", 1, time.Minute)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "c", 1, time.Minute)
	require.Error(t, err)

	// Expired buckets are collected to make room.
	now = now.Add(2 * time.Minute)
	_, err = limiter.Allow(context.Background(), "c", 1, time.Minute)
	require.NoError(t, err)
}

func TestMiddlewareThrottles(t *testing.T) {
	now := time.Now()
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})

	cfg := &config.Config().RateLimit
	origMax := cfg.MaxRequests
	cfg.MaxRequests = 2
	defer func() { cfg.MaxRequests = origMax }()

	handler := Middleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v/abc?h=deadbeef", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7:1111").Code)
	assert.Equal(t, http.StatusOK, send("203.0.113.7:2222").Code)

	rec := send("203.0.113.7:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, send("198.51.100.9:1111").Code)
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	handler := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewLimiterFromConfig(t *testing.T) {
	limiter, err := NewLimiter(&config.RateLimitConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, limiter)

	limiter, err = NewLimiter(&config.RateLimitConfig{Enabled: true, Backend: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, limiter)

	_, err = NewLimiter(&config.RateLimitConfig{Enabled: true, Backend: "bogus"})
	require.Error(t, err)
}
