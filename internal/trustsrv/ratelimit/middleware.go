package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

// limitExceededRsp mirrors the verification verdict envelope so throttled
// clients get the same response shape as any other verification outcome.
type limitExceededRsp struct {
	Verdict string `json:"verdict"`
	Message string `json:"message"`
}

// Middleware throttles requests per client IP. A nil limiter disables
// throttling. Limiter backend failures fail open: verification availability
// is worth more than strict enforcement.
func Middleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cfg := config.Config().RateLimit

			decision, err := limiter.Allow(ctx, clientKey(r), cfg.MaxRequests, cfg.Window())
			if err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			writeLimitHeaders(w, decision)
			if !decision.Allowed {
				sendLimitExceeded(w, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey derives the counter key from the client IP. The IP is hashed so
// raw addresses never reach the limiter backend.
func clientKey(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	sum := sha256.Sum256([]byte(ip))
	return "verify:ip:" + hex.EncodeToString(sum[:16])
}

func writeLimitHeaders(w http.ResponseWriter, decision Decision) {
	if decision.Limit > 0 {
		w.Header().Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		w.Header().Set("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	}
}

func sendLimitExceeded(w http.ResponseWriter, decision Decision) {
	if !decision.ResetAt.IsZero() {
		retryAfter := int64(time.Until(decision.ResetAt).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	body, _ := json.Marshal(limitExceededRsp{
		Verdict: "RATE_LIMITED",
		Message: "too many verification requests",
	})
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write rate limit response")
	}
}
