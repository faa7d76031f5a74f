package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

/*
     Column     |    Type     | Collation | Nullable |  Default
----------------+-------------+-----------+----------+-----------
 jti            | varchar(32) |           | not null |
 tenant_id      | varchar(10) |           | not null |
 certificate_id | uuid        |           | not null |
 entity_id      | uuid        |           | not null |
 ctx_type       | varchar(64) |           | not null |
 ctx_hash       | char(64)    |           | not null |
 ctx_metadata   | jsonb       |           | not null | '{}'
 token          | text        |           | not null |
 nonce          | char(32)    |           | not null |
 issued_at      | timestamptz |           | not null | now()
 expires_at     | timestamptz |           | not null |
 revoked        | boolean     |           | not null | false
 revoked_at     | timestamptz |           |          |
 reusable       | boolean     |           | not null | false
 created_at     | timestamptz |           | not null | now()
Indexes:
    "signatures_pkey" PRIMARY KEY, btree (jti)
    "idx_signatures_certificate" btree (tenant_id, certificate_id)
    "idx_one_reusable_signature" UNIQUE, btree (tenant_id, certificate_id, ctx_type)
        WHERE reusable = true AND revoked = false
Foreign-key constraints:
    "signatures_certificate_id_fkey" FOREIGN KEY (tenant_id, certificate_id) REFERENCES certificates(tenant_id, certificate_id)

The partial unique index enforces at most one live reusable signature per
certificate and context type. Only the idempotent issuance path sets
reusable; explicit signing requests always insert reusable = false.
*/

type Signature struct {
	Jti           string               `db:"jti"`
	TenantID      trustcommon.TenantId `db:"tenant_id"`
	CertificateID uuid.UUID            `db:"certificate_id"`
	EntityID      uuid.UUID            `db:"entity_id"`
	CtxType       trustcommon.ContextType `db:"ctx_type"`
	CtxHash       string               `db:"ctx_hash"`
	CtxMetadata   json.RawMessage      `db:"ctx_metadata"`
	Token         string               `db:"token"`
	Nonce         string               `db:"nonce"`
	IssuedAt      time.Time            `db:"issued_at"`
	ExpiresAt     time.Time            `db:"expires_at"`
	Revoked       bool                 `db:"revoked"`
	RevokedAt     sql.NullTime         `db:"revoked_at"`
	Reusable      bool                 `db:"reusable"`
	CreatedAt     time.Time            `db:"created_at"`
}

// IsExpired reports whether the signature has passed its expiry.
func (s *Signature) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *Signature) Validate() apperrors.Error {
	if s.Jti == "" {
		return dberror.ErrInvalidInput.Msg("jti is required")
	}
	if s.CertificateID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("signature certificate is required")
	}
	if s.EntityID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("signature entity is required")
	}
	if !s.CtxType.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid context type")
	}
	if len(s.CtxHash) != 64 {
		return dberror.ErrInvalidInput.Msg("context hash must be 64 hex characters")
	}
	if s.Token == "" {
		return dberror.ErrInvalidInput.Msg("signed token is required")
	}
	if s.ExpiresAt.IsZero() {
		return dberror.ErrInvalidInput.Msg("expiry is required")
	}
	return nil
}
