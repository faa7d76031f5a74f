// Package ratelimit throttles the public verification endpoints. Two
// backends are available: a fixed-window in-memory counter for single-node
// deployments, and a Redis counter for multi-node ones.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

var (
	ErrRateLimit apperrors.Error = apperrors.New("rate limiter error").SetStatusCode(http.StatusInternalServerError)

	ErrInvalidBackend apperrors.Error = ErrRateLimit.New("unknown rate limit backend")
)

// NewLimiter builds the limiter named by the rate limit config. Returns nil
// when rate limiting is disabled.
func NewLimiter(cfg *config.RateLimitConfig) (Limiter, apperrors.Error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryLimiter(MemoryLimiterConfig{}), nil
	case "redis":
		return NewRedisLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, nil)
	default:
		return nil, ErrInvalidBackend.Msg("unknown rate limit backend: " + cfg.Backend)
	}
}
