package signing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// maxJtiAttempts bounds jti regeneration on primary key collisions.
const maxJtiAttempts = 5

// SignatureStore is the subset of the trust store the signer needs.
type SignatureStore interface {
	CreateSignature(ctx context.Context, sig *models.Signature) apperrors.Error
	GetSignature(ctx context.Context, jti string) (*models.Signature, apperrors.Error)
	GetReusableSignature(ctx context.Context, certID uuid.UUID, ctxType trustcommon.ContextType) (*models.Signature, apperrors.Error)
	RevokeSignature(ctx context.Context, jti string) apperrors.Error
}

// IssuedSignature is the result of an issuance: the persisted record, the
// public verify URL, and whether an existing record was reused.
type IssuedSignature struct {
	Signature *models.Signature
	VerifyURL string
	Reused    bool
}

// Signer issues context-bound signatures. It always signs with the
// process-wide active key from the key manager.
type Signer struct {
	store SignatureStore
	keys  keymanager.KeyManager
}

func NewSigner(store SignatureStore, keys keymanager.KeyManager) *Signer {
	return &Signer{store: store, keys: keys}
}

// VerifyURL returns the public verification link for a signature: the jti
// plus the leading hash prefix as an integrity check on the link itself.
func VerifyURL(jti, ctxHash string) string {
	base := strings.TrimRight(config.Config().BaseURL, "/")
	return fmt.Sprintf("%s/v/%s?h=%s", base, jti, HashPrefix(ctxHash))
}

// IssueNew creates a fresh signature binding the certificate and entity to
// the given context. Every call creates a new record; use IssueOrReuse for
// the at-most-one-active issuance policy.
func (s *Signer) IssueNew(ctx context.Context, cert *models.Certificate, c Context, metadata json.RawMessage, validity time.Duration) (*IssuedSignature, apperrors.Error) {
	return s.issue(ctx, cert, c, metadata, validity, false)
}

// IssueOrReuse returns the existing live reusable signature for the
// certificate and context type, or creates one. The partial unique index on
// reusable signatures makes the check-then-create race safe: a concurrent
// insert surfaces as a conflict and the winner's record is returned.
func (s *Signer) IssueOrReuse(ctx context.Context, cert *models.Certificate, c Context, validity time.Duration) (*IssuedSignature, apperrors.Error) {
	existing, err := s.store.GetReusableSignature(ctx, cert.CertificateID, c.Type())
	if err == nil {
		if !existing.IsExpired(time.Now()) {
			return &IssuedSignature{
				Signature: existing,
				VerifyURL: VerifyURL(existing.Jti, existing.CtxHash),
				Reused:    true,
			}, nil
		}
		// The expired record still occupies the unique index slot; retire
		// it before issuing a replacement.
		if rerr := s.store.RevokeSignature(ctx, existing.Jti); rerr != nil {
			return nil, rerr
		}
	} else if !errors.Is(err, dberror.ErrNotFound) {
		return nil, err
	}

	issued, err := s.issue(ctx, cert, c, nil, validity, true)
	if err == nil || !errors.Is(err, dberror.ErrActiveSignatureExists) {
		return issued, err
	}

	// Lost the race; return the winner's record.
	existing, err = s.store.GetReusableSignature(ctx, cert.CertificateID, c.Type())
	if err != nil {
		return nil, err
	}
	return &IssuedSignature{
		Signature: existing,
		VerifyURL: VerifyURL(existing.Jti, existing.CtxHash),
		Reused:    true,
	}, nil
}

func (s *Signer) issue(ctx context.Context, cert *models.Certificate, c Context, metadata json.RawMessage, validity time.Duration, reusable bool) (*IssuedSignature, apperrors.Error) {
	now := time.Now()

	if cert == nil || !cert.IsActive(now) {
		return nil, ErrCertificateNotActive
	}
	if !c.Type().IsValid() {
		return nil, ErrInvalidContextType
	}

	verification := &config.Config().Verification
	if validity <= 0 {
		validity = verification.GetDefaultSignatureValidityOrDefault()
	}
	if maxValidity := verification.GetMaxSignatureValidityOrDefault(); validity > maxValidity {
		return nil, ErrInvalidValidity.Msg("requested validity exceeds the maximum")
	}

	canonical, err := c.Canonicalize()
	if err != nil {
		return nil, err
	}
	ctxHash := HashContent(canonical)
	expiresAt := now.Add(validity)

	nonce, goerr := NewNonce()
	if goerr != nil {
		return nil, ErrTokenGeneration.Err(goerr)
	}

	for attempt := 0; attempt < maxJtiAttempts; attempt++ {
		jti, goerr := NewJti()
		if goerr != nil {
			return nil, ErrTokenGeneration.Err(goerr)
		}

		claims := &TokenClaims{
			CertificateID: cert.CertificateID,
			EntityID:      cert.EntityID,
			CtxType:       c.Type(),
			CtxHash:       ctxHash,
			Nonce:         nonce,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        jti,
				Issuer:    config.Config().BaseURL,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		}

		token, err := signToken(ctx, s.keys, claims)
		if err != nil {
			return nil, err
		}

		sig := &models.Signature{
			Jti:           jti,
			CertificateID: cert.CertificateID,
			EntityID:      cert.EntityID,
			CtxType:       c.Type(),
			CtxHash:       ctxHash,
			CtxMetadata:   metadata,
			Token:         token,
			Nonce:         nonce,
			IssuedAt:      now,
			ExpiresAt:     expiresAt,
			Reusable:      reusable,
		}

		if err := s.store.CreateSignature(ctx, sig); err != nil {
			if errors.Is(err, dberror.ErrDuplicateJti) {
				log.Ctx(ctx).Info().Str("jti", jti).Msg("jti collision, regenerating")
				continue
			}
			return nil, err
		}

		return &IssuedSignature{
			Signature: sig,
			VerifyURL: VerifyURL(jti, ctxHash),
		}, nil
	}

	return nil, ErrJtiExhausted
}
