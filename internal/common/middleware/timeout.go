package middleware

import (
	"context"
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

// SetTimeout bounds each request by the configured handler timeout and
// returns 408 if the deadline fires before the handler responds.
func SetTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), config.Config().HandlerTimeout())
		defer cancel()

		rw, ok := w.(*httpx.ResponseWriter)
		if !ok {
			rw = httpx.NewResponseWriter(w)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			next.ServeHTTP(rw, r.WithContext(ctx))
		}()

		select {
		case <-done:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded && !rw.Written() {
				httpx.ErrRequestTimeout().Send(rw)
			}
			<-done
		}
	})
}
