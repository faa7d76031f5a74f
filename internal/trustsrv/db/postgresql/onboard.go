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

// OnboardEntity inserts an entity together with its first certificate in a
// single transaction. The certificate starts PENDING; activation is a
// separate step once vetting completes.
func (rm *registryManager) OnboardEntity(ctx context.Context, entity *models.Entity, cert *models.Certificate) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}
	if err := entity.Validate(); err != nil {
		return err
	}
	if entity.EntityID == uuid.Nil {
		entity.EntityID = uuid.New()
	}
	if entity.ValidationLevel == "" {
		entity.ValidationLevel = trustcommon.ValidationLevelBronze
	}
	if entity.KYCStatus == "" {
		entity.KYCStatus = models.KYCStatusPending
	}
	entity.TenantID = tenantID

	if cert.CertificateID == uuid.Nil {
		cert.CertificateID = uuid.New()
	}
	cert.EntityID = entity.EntityID
	cert.Status = trustcommon.CertificateStatusPending
	if cert.Level == "" {
		cert.Level = entity.ValidationLevel
	}
	cert.TenantID = tenantID
	if err := cert.Validate(); err != nil {
		return err
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

	txErr = tx.QueryRowContext(ctx, `
		INSERT INTO entities (entity_id, tenant_id, entity_type, legal_name, first_name, last_name,
			email, website, description, validation_level, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		entity.EntityID, tenantID, entity.Type, entity.LegalName, entity.FirstName,
		entity.LastName, entity.Email, entity.Website, entity.Description,
		entity.ValidationLevel, entity.KYCStatus).Scan(&entity.CreatedAt, &entity.UpdatedAt)
	if txErr != nil {
		if pgErr, ok := txErr.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505":
				return dberror.ErrAlreadyExists.Msg("entity already exists")
			case pgErr.Code == "23514":
				return dberror.ErrInvalidInput.Msg("invalid entity attributes")
			}
		}
		log.Ctx(ctx).Error().Err(txErr).Str("entity_id", entity.EntityID.String()).Msg("failed to insert entity")
		return dberror.ErrDatabase.Err(txErr)
	}

	txErr = tx.QueryRowContext(ctx, `
		INSERT INTO certificates (certificate_id, tenant_id, entity_id, status, level, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		cert.CertificateID, tenantID, cert.EntityID, cert.Status, cert.Level,
		cert.IssuedAt, cert.ExpiresAt).Scan(&cert.CreatedAt, &cert.UpdatedAt)
	if txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Str("certificate_id", cert.CertificateID.String()).Msg("failed to insert certificate")
		return dberror.ErrDatabase.Err(txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		log.Ctx(ctx).Error().Err(txErr).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(txErr)
	}

	return nil
}
