package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/verification"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// verifyBadge handles GET /v2/verify/{jti}?h= and its public badge alias
// GET /v/{jti}?h=. The hash prefix is mandatory in this flow; its absence is
// itself a fraud signal, not a client error.
func verifyBadge(r *http.Request) (*httpx.Response, error) {
	jti := chi.URLParam(r, "jti")
	hash := r.URL.Query().Get("h")

	result := newVerifier(r).VerifyBadge(r.Context(), jti, hash,
		verification.RequesterFromRequest(r))

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   verdictRsp(result),
	}, nil
}

// verifyContext handles POST /v2/verify: the caller supplies the full
// context so the hash can be recomputed, catching any tampering of the
// underlying content. A relying party that only holds the issued token can
// send it in place of the jti; the verified claims name the record.
func verifyContext(r *http.Request) (*httpx.Response, error) {
	req := &api.VerifyContextRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}
	if req.Jti == "" && req.Token == "" {
		return nil, httpx.ErrInvalidRequest("either jti or token is required")
	}

	build := func(sig *models.Signature) (signing.Context, apperrors.Error) {
		if trustcommon.ContextType(req.ContextType) != sig.CtxType {
			return nil, signing.ErrInvalidContextType.Msg("context type does not match the signature")
		}
		// A withheld context or content leaves only the hash prefix to
		// check; the verdict carries hash_only so the caller knows.
		if sig.CtxType == trustcommon.ContextTypeEmail {
			if req.Context == nil {
				return nil, nil
			}
			return emailContextFrom(req.Context)
		}
		if req.Content == "" {
			return nil, nil
		}
		// Content contexts are recomputed against the stored issuance
		// time; a different timestamp would change the hash.
		return &signing.ContentContext{
			EntityID:    sig.EntityID,
			ContextType: sig.CtxType,
			ContentData: req.Content,
			IssuedAt:    sig.IssuedAt,
		}, nil
	}

	result := newVerifier(r).VerifyContext(r.Context(), req.Jti, req.Hash, req.Token, build,
		verification.RequesterFromRequest(r))

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   verdictRsp(result),
	}, nil
}
