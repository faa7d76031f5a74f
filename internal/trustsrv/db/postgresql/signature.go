package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

const signatureColumns = `jti, tenant_id, certificate_id, entity_id, ctx_type, ctx_hash,
		ctx_metadata, token, nonce, issued_at, expires_at, revoked, revoked_at, reusable, created_at`

func scanSignature(row interface{ Scan(...any) error }) (*models.Signature, error) {
	var s models.Signature
	err := row.Scan(&s.Jti, &s.TenantID, &s.CertificateID, &s.EntityID, &s.CtxType, &s.CtxHash,
		&s.CtxMetadata, &s.Token, &s.Nonce, &s.IssuedAt, &s.ExpiresAt, &s.Revoked, &s.RevokedAt,
		&s.Reusable, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSignature inserts a new signature record. A primary key collision
// on the generated jti is reported as ErrDuplicateJti so callers can retry
// with a fresh jti; a conflict on the one-reusable-signature index is
// reported as ErrActiveSignatureExists so the idempotent issuance path can
// fetch and reuse the existing record.
func (sm *signatureManager) CreateSignature(ctx context.Context, sig *models.Signature) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}
	if err := sig.Validate(); err != nil {
		return err
	}
	if len(sig.CtxMetadata) == 0 {
		sig.CtxMetadata = []byte("{}")
	}
	sig.TenantID = tenantID

	query := `
		INSERT INTO signatures (jti, tenant_id, certificate_id, entity_id, ctx_type, ctx_hash,
			ctx_metadata, token, nonce, issued_at, expires_at, reusable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at;
	`

	row := sm.conn().QueryRowContext(ctx, query, sig.Jti, tenantID, sig.CertificateID,
		sig.EntityID, sig.CtxType, sig.CtxHash, sig.CtxMetadata, sig.Token, sig.Nonce,
		sig.IssuedAt, sig.ExpiresAt, sig.Reusable)
	err := row.Scan(&sig.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "signatures_pkey":
				return dberror.ErrDuplicateJti
			case pgErr.Code == "23505" && pgErr.ConstraintName == "idx_one_reusable_signature":
				return dberror.ErrActiveSignatureExists
			case pgErr.Code == "23503":
				return dberror.ErrNotFound.Msg("certificate not found")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("jti", sig.Jti).Msg("failed to insert signature")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// GetSignature retrieves a signature by jti. jtis are unique across tenants
// and the verification surface is public, so an unauthenticated context gets
// a global lookup; an authenticated one is scoped to its tenant.
func (sm *signatureManager) GetSignature(ctx context.Context, jti string) (*models.Signature, apperrors.Error) {
	query := `
		SELECT ` + signatureColumns + `
		FROM signatures
		WHERE jti = $1 AND (tenant_id = $2 OR $2 = '');
	`

	sig, err := scanSignature(sm.conn().QueryRowContext(ctx, query, jti, trustcommon.GetTenantID(ctx)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("signature not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("jti", jti).Msg("failed to get signature")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return sig, nil
}

// GetReusableSignature returns the live reusable signature for a
// certificate and context type, if one exists.
func (sm *signatureManager) GetReusableSignature(ctx context.Context, certID uuid.UUID, ctxType trustcommon.ContextType) (*models.Signature, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + signatureColumns + `
		FROM signatures
		WHERE tenant_id = $1 AND certificate_id = $2 AND ctx_type = $3
			AND reusable = true AND revoked = false;
	`

	sig, err := scanSignature(sm.conn().QueryRowContext(ctx, query, tenantID, certID, ctxType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no reusable signature")
		}
		log.Ctx(ctx).Error().Err(err).Str("certificate_id", certID.String()).Msg("failed to get reusable signature")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return sig, nil
}

// ListSignaturesByCertificate returns all signatures for a certificate,
// newest first.
func (sm *signatureManager) ListSignaturesByCertificate(ctx context.Context, certID uuid.UUID) ([]*models.Signature, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + signatureColumns + `
		FROM signatures
		WHERE tenant_id = $1 AND certificate_id = $2
		ORDER BY issued_at DESC;
	`

	rows, err := sm.conn().QueryContext(ctx, query, tenantID, certID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list signatures")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var sigs []*models.Signature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan signature")
			return nil, dberror.ErrDatabase.Err(err)
		}
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return sigs, nil
}

// RevokeSignature marks a single signature revoked. Revoking an already
// revoked signature is a no-op.
func (sm *signatureManager) RevokeSignature(ctx context.Context, jti string) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		UPDATE signatures
		SET revoked = true, revoked_at = NOW()
		WHERE tenant_id = $1 AND jti = $2 AND revoked = false
		RETURNING jti;
	`

	var returnedJti string
	err := sm.conn().QueryRowContext(ctx, query, tenantID, jti).Scan(&returnedJti)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, gerr := sm.GetSignature(ctx, jti); gerr != nil {
				return gerr
			}
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("jti", jti).Msg("failed to revoke signature")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}
