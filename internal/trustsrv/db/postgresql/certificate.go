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

const certificateColumns = `certificate_id, tenant_id, entity_id, status, level,
		issued_at, expires_at, revoked_at, revocation_reason, created_at, updated_at`

func scanCertificate(row interface{ Scan(...any) error }) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.CertificateID, &c.TenantID, &c.EntityID, &c.Status, &c.Level,
		&c.IssuedAt, &c.ExpiresAt, &c.RevokedAt, &c.RevocationReason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCertificate inserts a new certificate for an entity.
func (rm *registryManager) CreateCertificate(ctx context.Context, cert *models.Certificate) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}
	if err := cert.Validate(); err != nil {
		return err
	}
	if cert.CertificateID == uuid.Nil {
		cert.CertificateID = uuid.New()
	}
	if cert.Status == "" {
		cert.Status = trustcommon.CertificateStatusPending
	}
	if cert.Level == "" {
		cert.Level = trustcommon.ValidationLevelBronze
	}
	cert.TenantID = tenantID

	query := `
		INSERT INTO certificates (certificate_id, tenant_id, entity_id, status, level, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at;
	`

	row := rm.conn().QueryRowContext(ctx, query, cert.CertificateID, tenantID, cert.EntityID,
		cert.Status, cert.Level, cert.IssuedAt, cert.ExpiresAt)
	err := row.Scan(&cert.CreatedAt, &cert.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505":
				return dberror.ErrAlreadyExists.Msg("certificate already exists")
			case pgErr.Code == "23503":
				return dberror.ErrNotFound.Msg("entity not found")
			case pgErr.Code == "23514":
				return dberror.ErrInvalidInput.Msg("invalid certificate attributes")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("certificate_id", cert.CertificateID.String()).Msg("failed to insert certificate")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// GetCertificate retrieves a certificate by its ID.
func (rm *registryManager) GetCertificate(ctx context.Context, certID uuid.UUID) (*models.Certificate, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + certificateColumns + `
		FROM certificates
		WHERE tenant_id = $1 AND certificate_id = $2;
	`

	cert, err := scanCertificate(rm.conn().QueryRowContext(ctx, query, tenantID, certID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("certificate not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("certificate_id", certID.String()).Msg("failed to get certificate")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return cert, nil
}

// ListCertificatesByEntity returns all certificates for an entity, newest first.
func (rm *registryManager) ListCertificatesByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Certificate, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + certificateColumns + `
		FROM certificates
		WHERE tenant_id = $1 AND entity_id = $2
		ORDER BY created_at DESC;
	`

	rows, err := rm.conn().QueryContext(ctx, query, tenantID, entityID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list certificates")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan certificate")
			return nil, dberror.ErrDatabase.Err(err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return certs, nil
}

// ActivateCertificate transitions a PENDING certificate to ACTIVE and stamps
// its issuance and expiry timestamps.
func (rm *registryManager) ActivateCertificate(ctx context.Context, certID uuid.UUID, expiresAt sql.NullTime) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		UPDATE certificates
		SET status = 'ACTIVE', issued_at = NOW(), expires_at = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND certificate_id = $3 AND status = 'PENDING'
		RETURNING certificate_id;
	`

	var returnedID uuid.UUID
	err := rm.conn().QueryRowContext(ctx, query, expiresAt, tenantID, certID).Scan(&returnedID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Either missing or not PENDING; disambiguate for the caller.
			if _, gerr := rm.GetCertificate(ctx, certID); gerr != nil {
				return gerr
			}
			return dberror.ErrInvalidInput.Msg("certificate is not pending activation")
		}
		log.Ctx(ctx).Error().Err(err).Str("certificate_id", certID.String()).Msg("failed to activate certificate")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// RevokeCertificate marks a certificate REVOKED and revokes all of its
// signatures in the same transaction, so there is no window where the
// certificate is revoked but a signature still reads as live.
func (rm *registryManager) RevokeCertificate(ctx context.Context, certID uuid.UUID, reason string) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	tx, errdb := rm.conn().BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return dberror.ErrDatabase.Err(errdb)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Ctx(ctx).Error().Err(rollbackErr).Msg("failed to rollback transaction")
			}
		}
	}()

	query := `
		UPDATE certificates
		SET status = 'REVOKED', revoked_at = NOW(), revocation_reason = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND certificate_id = $3 AND status != 'REVOKED'
		RETURNING certificate_id;
	`

	var returnedID uuid.UUID
	txErr = tx.QueryRowContext(ctx, query, reason, tenantID, certID).Scan(&returnedID)
	if txErr != nil {
		if txErr == sql.ErrNoRows {
			// Revocation is monotonic: revoking an already revoked
			// certificate is a no-op, missing ones are an error.
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Ctx(ctx).Error().Err(rollbackErr).Msg("failed to rollback transaction")
			}
			txErr = nil
			if _, gerr := rm.GetCertificate(ctx, certID); gerr != nil {
				return gerr
			}
			return nil
		}
		log.Ctx(ctx).Error().Err(txErr).Str("certificate_id", certID.String()).Msg("failed to revoke certificate")
		return dberror.ErrDatabase.Err(txErr)
	}

	_, txErr = tx.ExecContext(ctx, `
		UPDATE signatures
		SET revoked = true, revoked_at = NOW()
		WHERE tenant_id = $1 AND certificate_id = $2 AND revoked = false`,
		tenantID, certID)
	if txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Str("certificate_id", certID.String()).Msg("failed to revoke certificate signatures")
		return dberror.ErrDatabase.Err(txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(txErr)
	}

	return nil
}
