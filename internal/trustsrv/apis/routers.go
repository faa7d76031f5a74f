// Package apis wires the HTTP routes of the trust server: the management
// surface behind operator auth, and the public verification surface behind
// the rate limiter.
package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/auth"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/ratelimit"
)

type routeParam struct {
	Method  string
	Path    string
	Handler httpx.RequestHandler
}

// managementRoutes require an operator access token.
var managementRoutes = []routeParam{
	{Method: http.MethodPost, Path: "/v2/sign", Handler: signContent},
	{Method: http.MethodPost, Path: "/v2/issue", Handler: issueEmail},
	{Method: http.MethodPost, Path: "/entities", Handler: createEntity},
	{Method: http.MethodGet, Path: "/entities", Handler: listEntities},
	{Method: http.MethodGet, Path: "/entities/{entityId}", Handler: getEntity},
	{Method: http.MethodGet, Path: "/entities/{entityId}/certificates", Handler: listEntityCertificates},
	{Method: http.MethodGet, Path: "/certificates/{certId}", Handler: getCertificate},
	{Method: http.MethodPost, Path: "/certificates/{certId}/activate", Handler: activateCertificate},
	{Method: http.MethodPost, Path: "/certificates/{certId}/revoke", Handler: revokeCertificate},
	{Method: http.MethodPost, Path: "/signatures/{jti}/revoke", Handler: revokeSignature},
	{Method: http.MethodGet, Path: "/signatures/{jti}/events", Handler: getSignatureEvents},
}

// publicRoutes carry no credentials; they are what badge links resolve to.
var publicRoutes = []routeParam{
	{Method: http.MethodGet, Path: "/v2/verify/{jti}", Handler: verifyBadge},
	{Method: http.MethodGet, Path: "/v/{jti}", Handler: verifyBadge},
	{Method: http.MethodPost, Path: "/v2/verify", Handler: verifyContext},
	{Method: http.MethodPost, Path: "/auth/token", Handler: createToken},
}

// Router mounts all API routes. limiter may be nil when rate limiting is
// disabled.
func Router(r chi.Router, limiter ratelimit.Limiter) {
	r.Group(func(r chi.Router) {
		r.Use(auth.OperatorAuthMiddleware)
		for _, route := range managementRoutes {
			r.Method(route.Method, route.Path, httpx.WrapHttpRsp(route.Handler))
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(limiter))
		for _, route := range publicRoutes {
			r.Method(route.Method, route.Path, httpx.WrapHttpRsp(route.Handler))
		}
	})
}
