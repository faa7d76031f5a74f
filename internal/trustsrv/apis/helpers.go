package apis

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/registry"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/verification"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func newSigner(r *http.Request) *signing.Signer {
	return signing.NewSigner(db.DB(r.Context()), keymanager.GetKeyManager())
}

func newVerifier(r *http.Request) *verification.Verifier {
	store := db.DB(r.Context())
	return verification.NewVerifier(store, keymanager.GetKeyManager(), verification.NewEventLogger(store))
}

func newRegistry(r *http.Request) *registry.Registry {
	store := db.DB(r.Context())
	return registry.NewRegistry(store, signing.NewSigner(store, keymanager.GetKeyManager()))
}

// decodeRequest decodes and validates a JSON request body.
func decodeRequest(r *http.Request, req any) error {
	if err := httpx.GetRequestData(r, req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return httpx.ErrInvalidRequest(err.Error())
	}
	return nil
}

func parseUUID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, httpx.ErrInvalidRequest("invalid " + what)
	}
	return id, nil
}

// emailContextFrom builds an email context from a request payload, checking
// the payload shape first so unknown fields are rejected up front.
func emailContextFrom(payload map[string]any) (*signing.EmailContext, apperrors.Error) {
	if err := signing.ValidateContextShape(trustcommon.ContextTypeEmail, payload); err != nil {
		return nil, err
	}
	emailCtx := &signing.EmailContext{}
	if err := mapstructure.Decode(payload, emailCtx); err != nil {
		return nil, signing.ErrInvalidContext.Msg("malformed email context")
	}
	return emailCtx, nil
}

func signatureRsp(issued *signing.IssuedSignature) *api.SignatureRsp {
	return &api.SignatureRsp{
		Jti:       issued.Signature.Jti,
		Token:     issued.Signature.Token,
		VerifyURL: issued.VerifyURL,
		CtxHash:   issued.Signature.CtxHash,
		CtxType:   string(issued.Signature.CtxType),
		IssuedAt:  issued.Signature.IssuedAt,
		ExpiresAt: issued.Signature.ExpiresAt,
		Reused:    issued.Reused,
	}
}

func verdictRsp(result *verification.Result) *api.VerdictRsp {
	rsp := &api.VerdictRsp{
		Verdict:  string(result.Verdict),
		Reason:   string(result.Reason),
		Message:  result.Message,
		HashOnly: result.HashOnly,
	}
	if result.Badge != nil {
		rsp.Badge = &api.BadgeRsp{
			Jti:             result.Badge.Jti,
			EntityName:      result.Badge.EntityName,
			EntityType:      result.Badge.EntityType,
			ValidationLevel: result.Badge.ValidationLevel,
			CtxType:         result.Badge.CtxType,
			IssuedAt:        result.Badge.IssuedAt,
			ExpiresAt:       result.Badge.ExpiresAt,
		}
	}
	return rsp
}

func entityRsp(entity *models.Entity) *api.EntityRsp {
	return &api.EntityRsp{
		EntityID:        entity.EntityID.String(),
		Type:            string(entity.Type),
		DisplayName:     entity.DisplayName(),
		Email:           entity.Email,
		Website:         entity.Website,
		Description:     entity.Description,
		ValidationLevel: string(entity.ValidationLevel),
		KYCStatus:       entity.KYCStatus,
		CreatedAt:       entity.CreatedAt,
	}
}

func certificateRsp(cert *models.Certificate) *api.CertificateRsp {
	rsp := &api.CertificateRsp{
		CertificateID: cert.CertificateID.String(),
		EntityID:      cert.EntityID.String(),
		Status:        string(cert.Status),
		Level:         string(cert.Level),
	}
	if cert.IssuedAt.Valid {
		t := cert.IssuedAt.Time
		rsp.IssuedAt = &t
	}
	if cert.ExpiresAt.Valid {
		t := cert.ExpiresAt.Time
		rsp.ExpiresAt = &t
	}
	if cert.RevokedAt.Valid {
		t := cert.RevokedAt.Time
		rsp.RevokedAt = &t
	}
	rsp.RevocationReason = cert.RevocationReason
	return rsp
}

func eventRsp(event *models.VerificationEvent) api.VerificationEventRsp {
	rsp := api.VerificationEventRsp{
		EventID:    event.EventID,
		HashPrefix: event.HashPrefix,
		IPHash:     event.IPHash,
		UserAgent:  event.UserAgent,
		Verdict:    event.Verdict,
		CreatedAt:  event.CreatedAt,
	}
	if event.Jti.Valid {
		rsp.Jti = event.Jti.String
	}
	if event.Country.Valid {
		rsp.Country = event.Country.String
	}
	if event.Reason.Valid {
		rsp.Reason = event.Reason.String
	}
	return rsp
}

func validityFromSeconds(seconds int64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
