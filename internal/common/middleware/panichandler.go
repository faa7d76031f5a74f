package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
)

// PanicHandler recovers from panics in downstream handlers, logs the stack
// and returns a 500 if nothing has been written yet.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*httpx.ResponseWriter)
		if !ok {
			rw = httpx.NewResponseWriter(w)
		}
		defer func() {
			if rec := recover(); rec != nil {
				log.Ctx(r.Context()).Error().
					Any("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic in handler")
				if !rw.Written() {
					httpx.ErrApplicationError().Send(rw)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
