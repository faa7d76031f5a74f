package apis

import (
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/auth"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// createToken handles POST /auth/token: operator login.
func createToken(r *http.Request) (*httpx.Response, error) {
	req := &api.TokenRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	token, expiry, err := auth.LoginSingleOperator(r.Context(), req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.TokenRsp{
			Token:     token,
			ExpiresAt: expiry,
		},
	}, nil
}
