package models

import (
	"strings"
	"time"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

/*
      Column      |    Type     | Collation | Nullable |      Default
------------------+-------------+-----------+----------+--------------------
 entity_id        | uuid        |           | not null | uuid_generate_v4()
 tenant_id        | varchar(10) |           | not null |
 entity_type      | text        |           | not null |
 legal_name       | text        |           | not null | ''
 first_name       | text        |           | not null | ''
 last_name        | text        |           | not null | ''
 email            | text        |           | not null |
 website          | text        |           | not null | ''
 description      | text        |           | not null | ''
 validation_level | text        |           | not null | 'BRONZE'
 kyc_status       | text        |           | not null | 'PENDING'
 created_at       | timestamptz |           | not null | now()
 updated_at       | timestamptz |           | not null | now()
Indexes:
    "entities_pkey" PRIMARY KEY, btree (tenant_id, entity_id)
    "idx_entities_email" btree (tenant_id, email)
Check constraints:
    "entities_entity_type_check" CHECK (entity_type IN ('BUSINESS', 'INDIVIDUAL'))
    "entities_validation_level_check" CHECK (validation_level IN ('BRONZE', 'SILVER', 'GOLD'))
*/

// KYC status values for an entity.
const (
	KYCStatusPending  = "PENDING"
	KYCStatusVerified = "VERIFIED"
	KYCStatusRejected = "REJECTED"
)

type Entity struct {
	EntityID        uuid.UUID                   `db:"entity_id"`
	TenantID        trustcommon.TenantId        `db:"tenant_id"`
	Type            trustcommon.EntityType      `db:"entity_type"`
	LegalName       string                      `db:"legal_name"`
	FirstName       string                      `db:"first_name"`
	LastName        string                      `db:"last_name"`
	Email           string                      `db:"email"`
	Website         string                      `db:"website"`
	Description     string                      `db:"description"`
	ValidationLevel trustcommon.ValidationLevel `db:"validation_level"`
	KYCStatus       string                      `db:"kyc_status"`
	CreatedAt       time.Time                   `db:"created_at"`
	UpdatedAt       time.Time                   `db:"updated_at"`
}

// DisplayName returns the name to present for this entity: the legal name
// for businesses, first+last for individuals.
func (e *Entity) DisplayName() string {
	if e.Type == trustcommon.EntityTypeBusiness {
		return e.LegalName
	}
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e *Entity) Validate() apperrors.Error {
	if !e.Type.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid entity type")
	}
	if e.Email == "" {
		return dberror.ErrInvalidInput.Msg("entity email is required")
	}
	if e.Type == trustcommon.EntityTypeBusiness && e.LegalName == "" {
		return dberror.ErrInvalidInput.Msg("legal name is required for business entities")
	}
	if e.Type == trustcommon.EntityTypeIndividual && e.FirstName == "" && e.LastName == "" {
		return dberror.ErrInvalidInput.Msg("name is required for individual entities")
	}
	if e.ValidationLevel != "" && !e.ValidationLevel.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid validation level")
	}
	return nil
}
