// Package server assembles the trust server: middleware stack, API routes,
// and the unauthenticated service endpoints.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	commonmiddleware "github.com/brnbtech770/blocktrust/internal/common/middleware"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/apis"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/auth"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/ratelimit"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
)

type TrustServer struct {
	Router  *chi.Mux
	km      keymanager.KeyManager
	limiter ratelimit.Limiter
}

func CreateNewServer() (*TrustServer, error) {
	s := &TrustServer{
		Router: chi.NewRouter(),
		km:     keymanager.GetKeyManager(),
	}

	limiter, err := ratelimit.NewLimiter(&config.Config().RateLimit)
	if err != nil {
		return nil, err
	}
	s.limiter = limiter

	return s, nil
}

func (s *TrustServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	s.Router.Use(commonmiddleware.SetTimeout)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-BlockTrust-Request-ID"},
			MaxAge:         300,
		}))
	}
	s.Router.Use(db.LoadScopedDBMiddleware)

	apis.Router(s.Router, s.limiter)
	s.Router.Get("/version", s.getVersion)
	s.Router.Get("/ready", s.getReadiness)
	s.Router.Get("/.well-known/jwks.json", auth.GetJWKSHandler(s.km))
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *TrustServer) getVersion(w http.ResponseWriter, r *http.Request) {
	rsp := &GetVersionRsp{
		ServerVersion: "BlockTrust Trust Server: " + config.ServerVersion,
		ApiVersion:    config.Version,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

func (s *TrustServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, err := db.ConnCtx(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("database connection failed during readiness check")
		httpx.SendJsonRsp(r.Context(), w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database connection failed",
		})
		return
	}
	defer db.DB(ctx).Close(ctx)

	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
