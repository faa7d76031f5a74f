package models

import (
	"database/sql"
	"time"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

/*
      Column       |    Type     | Collation | Nullable |      Default
-------------------+-------------+-----------+----------+--------------------
 certificate_id    | uuid        |           | not null | uuid_generate_v4()
 tenant_id         | varchar(10) |           | not null |
 entity_id         | uuid        |           | not null |
 status            | text        |           | not null | 'PENDING'
 level             | text        |           | not null | 'BRONZE'
 issued_at         | timestamptz |           |          |
 expires_at        | timestamptz |           |          |
 revoked_at        | timestamptz |           |          |
 revocation_reason | text        |           | not null | ''
 created_at        | timestamptz |           | not null | now()
 updated_at        | timestamptz |           | not null | now()
Indexes:
    "certificates_pkey" PRIMARY KEY, btree (tenant_id, certificate_id)
    "idx_certificates_entity" btree (tenant_id, entity_id)
Check constraints:
    "certificates_status_check" CHECK (status IN ('PENDING', 'ACTIVE', 'REVOKED', 'EXPIRED'))
Foreign-key constraints:
    "certificates_entity_id_fkey" FOREIGN KEY (tenant_id, entity_id) REFERENCES entities(tenant_id, entity_id)
*/

type Certificate struct {
	CertificateID    uuid.UUID                     `db:"certificate_id"`
	TenantID         trustcommon.TenantId          `db:"tenant_id"`
	EntityID         uuid.UUID                     `db:"entity_id"`
	Status           trustcommon.CertificateStatus `db:"status"`
	Level            trustcommon.ValidationLevel   `db:"level"`
	IssuedAt         sql.NullTime                  `db:"issued_at"`
	ExpiresAt        sql.NullTime                  `db:"expires_at"`
	RevokedAt        sql.NullTime                  `db:"revoked_at"`
	RevocationReason string                        `db:"revocation_reason"`
	CreatedAt        time.Time                     `db:"created_at"`
	UpdatedAt        time.Time                     `db:"updated_at"`
}

// IsActive reports whether the certificate can sign: status is ACTIVE and
// the certificate itself has not passed its own expiry.
func (c *Certificate) IsActive(now time.Time) bool {
	if c.Status != trustcommon.CertificateStatusActive {
		return false
	}
	if c.ExpiresAt.Valid && now.After(c.ExpiresAt.Time) {
		return false
	}
	return true
}

func (c *Certificate) Validate() apperrors.Error {
	if c.EntityID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("certificate entity is required")
	}
	if c.Status != "" && !c.Status.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid certificate status")
	}
	if c.Level != "" && !c.Level.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid certificate level")
	}
	return nil
}
