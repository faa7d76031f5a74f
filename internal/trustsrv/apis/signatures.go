package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// revokeSignature handles POST /signatures/{jti}/revoke.
func revokeSignature(r *http.Request) (*httpx.Response, error) {
	jti := chi.URLParam(r, "jti")
	if jti == "" {
		return nil, httpx.ErrInvalidRequest("signature id is required")
	}

	if err := newRegistry(r).RevokeSignature(r.Context(), jti); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"status": "revoked"},
	}, nil
}

// getSignatureEvents handles GET /signatures/{jti}/events: the verification
// trail, newest first.
func getSignatureEvents(r *http.Request) (*httpx.Response, error) {
	jti := chi.URLParam(r, "jti")
	if jti == "" {
		return nil, httpx.ErrInvalidRequest("signature id is required")
	}

	// The signature must exist; an empty trail on a real signature is a
	// valid response, a trail for a phantom jti is not.
	if _, err := db.DB(r.Context()).GetSignature(r.Context(), jti); err != nil {
		return nil, err
	}

	events, err := db.DB(r.Context()).ListVerificationEvents(r.Context(), jti, 0)
	if err != nil {
		return nil, err
	}

	rsp := make([]api.VerificationEventRsp, 0, len(events))
	for _, event := range events {
		rsp = append(rsp, eventRsp(event))
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}
