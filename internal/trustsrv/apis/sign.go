package apis

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/h2non/filetype"
	"github.com/tidwall/sjson"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// signContent handles POST /v2/sign: sign free-form content under an owned
// ACTIVE certificate.
func signContent(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &api.SignRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	certID, err := parseUUID(req.CertificateID, "certificate id")
	if err != nil {
		return nil, err
	}
	ctxType := trustcommon.ContextType(req.ContextType)
	if !ctxType.IsValid() {
		return nil, httpx.ErrInvalidRequest("invalid context type")
	}

	cert, aerr := db.DB(ctx).GetCertificate(ctx, certID)
	if aerr != nil {
		return nil, aerr
	}

	content := &signing.ContentContext{
		EntityID:    cert.EntityID,
		ContextType: ctxType,
		ContentData: req.Content,
		IssuedAt:    time.Now(),
	}

	metadata := req.Metadata
	if ctxType == trustcommon.ContextTypeDocument {
		metadata = withDetectedKind(metadata, req.Content)
	}

	issued, aerr := newSigner(r).IssueNew(ctx, cert, content, metadata, validityFromSeconds(req.ValiditySeconds))
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/signatures/" + issued.Signature.Jti,
		Response:   signatureRsp(issued),
	}, nil
}

// issueEmail handles POST /v2/issue: sign a structured email context.
// Every call mints a fresh signature; reuse only happens on certificate
// activation, where the auto-issued badge is idempotent.
func issueEmail(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &api.IssueRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	certID, err := parseUUID(req.CertificateID, "certificate id")
	if err != nil {
		return nil, err
	}
	emailCtx, aerr := emailContextFrom(req.Context)
	if aerr != nil {
		return nil, aerr
	}

	cert, aerr := db.DB(ctx).GetCertificate(ctx, certID)
	if aerr != nil {
		return nil, aerr
	}

	issued, aerr := newSigner(r).IssueNew(ctx, cert, emailCtx, req.Metadata, validityFromSeconds(req.ValiditySeconds))
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/signatures/" + issued.Signature.Jti,
		Response:   signatureRsp(issued),
	}, nil
}

// withDetectedKind records the sniffed document type in the signature
// metadata so the badge page can label the document without storing it.
func withDetectedKind(metadata json.RawMessage, content string) json.RawMessage {
	kind, err := filetype.Match([]byte(content))
	if err != nil || kind == filetype.Unknown {
		return metadata
	}

	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	merged, err := sjson.SetBytes(metadata, "detectedType", kind.MIME.Value)
	if err != nil {
		return metadata
	}
	return merged
}
