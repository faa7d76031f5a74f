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

const entityColumns = `entity_id, tenant_id, entity_type, legal_name, first_name, last_name,
		email, website, description, validation_level, kyc_status, created_at, updated_at`

func scanEntity(row interface{ Scan(...any) error }) (*models.Entity, error) {
	var e models.Entity
	err := row.Scan(&e.EntityID, &e.TenantID, &e.Type, &e.LegalName, &e.FirstName, &e.LastName,
		&e.Email, &e.Website, &e.Description, &e.ValidationLevel, &e.KYCStatus, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntity inserts a new entity.
func (rm *registryManager) CreateEntity(ctx context.Context, entity *models.Entity) apperrors.Error {
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

	query := `
		INSERT INTO entities (entity_id, tenant_id, entity_type, legal_name, first_name, last_name,
			email, website, description, validation_level, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at;
	`

	row := rm.conn().QueryRowContext(ctx, query, entity.EntityID, tenantID, entity.Type,
		entity.LegalName, entity.FirstName, entity.LastName, entity.Email, entity.Website,
		entity.Description, entity.ValidationLevel, entity.KYCStatus)
	err := row.Scan(&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505":
				return dberror.ErrAlreadyExists.Msg("entity already exists")
			case pgErr.Code == "23514":
				return dberror.ErrInvalidInput.Msg("invalid entity attributes")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entity.EntityID.String()).Msg("failed to insert entity")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// GetEntity retrieves an entity by its ID.
func (rm *registryManager) GetEntity(ctx context.Context, entityID uuid.UUID) (*models.Entity, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE tenant_id = $1 AND entity_id = $2;
	`

	entity, err := scanEntity(rm.conn().QueryRowContext(ctx, query, tenantID, entityID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("entity not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to get entity")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return entity, nil
}

// ListEntities returns all entities for the tenant, newest first.
func (rm *registryManager) ListEntities(ctx context.Context) ([]*models.Entity, apperrors.Error) {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return nil, dberror.ErrMissingTenantID
	}

	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE tenant_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := rm.conn().QueryContext(ctx, query, tenantID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list entities")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan entity")
			return nil, dberror.ErrDatabase.Err(err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return entities, nil
}

// UpdateEntityKYCStatus sets the KYC status of an entity.
func (rm *registryManager) UpdateEntityKYCStatus(ctx context.Context, entityID uuid.UUID, status string) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		UPDATE entities
		SET kyc_status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND entity_id = $3
		RETURNING entity_id;
	`

	var returnedID uuid.UUID
	err := rm.conn().QueryRowContext(ctx, query, status, tenantID, entityID).Scan(&returnedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("entity not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to update entity kyc status")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

// UpdateEntityValidationLevel sets the validation level of an entity.
func (rm *registryManager) UpdateEntityValidationLevel(ctx context.Context, entityID uuid.UUID, level trustcommon.ValidationLevel) apperrors.Error {
	tenantID := trustcommon.GetTenantID(ctx)
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}
	if !level.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid validation level")
	}

	query := `
		UPDATE entities
		SET validation_level = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND entity_id = $3
		RETURNING entity_id;
	`

	var returnedID uuid.UUID
	err := rm.conn().QueryRowContext(ctx, query, level, tenantID, entityID).Scan(&returnedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return dberror.ErrNotFound.Msg("entity not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to update entity validation level")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}
