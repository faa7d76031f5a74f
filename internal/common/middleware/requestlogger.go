// Package middleware holds the HTTP middleware shared by the server:
// request logging, panic recovery, and request timeouts.
package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/common/logtrace"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
)

// RequestLogger assigns a request ID, attaches a scoped logger to the
// request context and logs one line per request with the outcome.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-BlockTrust-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := logtrace.WithRequestID(r.Context(), requestID)
		logger := log.With().Str("request_id", requestID).Logger()
		ctx = logger.WithContext(ctx)

		rw := httpx.NewResponseWriter(w)
		rw.Header().Set("X-BlockTrust-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(rw, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", rw.StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
