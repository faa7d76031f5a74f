package apis

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// getCertificate handles GET /certificates/{certId}.
func getCertificate(r *http.Request) (*httpx.Response, error) {
	certID, err := parseUUID(chi.URLParam(r, "certId"), "certificate id")
	if err != nil {
		return nil, err
	}

	cert, aerr := db.DB(r.Context()).GetCertificate(r.Context(), certID)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   certificateRsp(cert),
	}, nil
}

// activateCertificate handles POST /certificates/{certId}/activate. The
// entity's KYC flips to verified and its identity badge is minted in the
// same step.
func activateCertificate(r *http.Request) (*httpx.Response, error) {
	certID, err := parseUUID(chi.URLParam(r, "certId"), "certificate id")
	if err != nil {
		return nil, err
	}

	req := &api.ActivateCertificateRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	validity := time.Duration(req.ValidityDays) * 24 * time.Hour
	issued, aerr := newRegistry(r).ActivateCertificate(r.Context(), certID, validity)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.ActivateCertificateRsp{
			CertificateID: certID.String(),
			Status:        string(trustcommon.CertificateStatusActive),
			Badge:         *signatureRsp(issued),
		},
	}, nil
}

// revokeCertificate handles POST /certificates/{certId}/revoke.
func revokeCertificate(r *http.Request) (*httpx.Response, error) {
	certID, err := parseUUID(chi.URLParam(r, "certId"), "certificate id")
	if err != nil {
		return nil, err
	}

	req := &api.RevokeRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	if aerr := newRegistry(r).RevokeCertificate(r.Context(), certID, req.Reason); aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"status": "revoked"},
	}, nil
}
