package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// OperatorAuthMiddleware authenticates management API requests with a bearer
// access token and loads the tenant and operator into the request context.
func OperatorAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.Ctx(ctx).Warn().Msg("missing or invalid authorization header")
			httpx.ErrUnAuthorized("missing or invalid authorization header").Send(w)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		ctx, err := ValidateToken(ctx, token)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Unit test mode accepts a fixed token bound to the default tenant.
		if config.IsTest() && token == config.Config().Auth.TestOperatorToken {
			next.ServeHTTP(w, r.WithContext(testOperatorContext(ctx)))
			return
		}

		log.Ctx(ctx).Warn().Err(err).Msg("token validation failed")
		httpx.ErrUnAuthorized("invalid authorization. login required").Send(w)
	})
}

func testOperatorContext(ctx context.Context) context.Context {
	ctx = trustcommon.WithTenantID(ctx, trustcommon.TenantId(config.Config().DefaultTenantID))
	return trustcommon.WithOperator(ctx, &trustcommon.OperatorContext{
		Subject: config.Config().Auth.OperatorName,
		Admin:   true,
	})
}
