// Package db provides the trust store access layer. It defines three
// interfaces:
// - RegistryManager: entities, certificates, and signing keys
// - SignatureManager: signature records and verification events
// - ConnectionManager: connection and tenant scope management
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dbmanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/postgresql"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// RegistryManager handles entities, certificates and signing keys.
// All operations require a valid context and may return apperrors.Error for
// various failure cases.
type RegistryManager interface {
	// Entity
	CreateEntity(ctx context.Context, entity *models.Entity) apperrors.Error
	OnboardEntity(ctx context.Context, entity *models.Entity, cert *models.Certificate) apperrors.Error
	GetEntity(ctx context.Context, entityID uuid.UUID) (*models.Entity, apperrors.Error)
	ListEntities(ctx context.Context) ([]*models.Entity, apperrors.Error)
	UpdateEntityKYCStatus(ctx context.Context, entityID uuid.UUID, status string) apperrors.Error
	UpdateEntityValidationLevel(ctx context.Context, entityID uuid.UUID, level trustcommon.ValidationLevel) apperrors.Error

	// Certificate
	CreateCertificate(ctx context.Context, cert *models.Certificate) apperrors.Error
	GetCertificate(ctx context.Context, certID uuid.UUID) (*models.Certificate, apperrors.Error)
	ListCertificatesByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Certificate, apperrors.Error)
	ActivateCertificate(ctx context.Context, certID uuid.UUID, expiresAt sql.NullTime) apperrors.Error
	RevokeCertificate(ctx context.Context, certID uuid.UUID, reason string) apperrors.Error

	// SigningKey
	CreateSigningKey(ctx context.Context, key *models.SigningKey) apperrors.Error
	GetSigningKey(ctx context.Context, keyID uuid.UUID) (*models.SigningKey, apperrors.Error)
	GetActiveSigningKey(ctx context.Context) (*models.SigningKey, apperrors.Error)
	UpdateSigningKeyActive(ctx context.Context, keyID uuid.UUID, isActive bool) apperrors.Error
	DeleteSigningKey(ctx context.Context, keyID uuid.UUID) apperrors.Error
}

// SignatureManager handles signature records and verification events.
type SignatureManager interface {
	CreateSignature(ctx context.Context, sig *models.Signature) apperrors.Error
	GetSignature(ctx context.Context, jti string) (*models.Signature, apperrors.Error)
	GetReusableSignature(ctx context.Context, certID uuid.UUID, ctxType trustcommon.ContextType) (*models.Signature, apperrors.Error)
	ListSignaturesByCertificate(ctx context.Context, certID uuid.UUID) ([]*models.Signature, apperrors.Error)
	RevokeSignature(ctx context.Context, jti string) apperrors.Error

	CreateVerificationEvent(ctx context.Context, event *models.VerificationEvent) apperrors.Error
	ListVerificationEvents(ctx context.Context, jti string, limit int) ([]*models.VerificationEvent, apperrors.Error)
	GetLatestSuccessEvent(ctx context.Context, jti string) (*models.VerificationEvent, apperrors.Error)
}

// ConnectionManager handles connection and tenant scope management.
type ConnectionManager interface {
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error

	// Close the connection to the database.
	Close(ctx context.Context)
}

// Database interface combines all three managers into a single interface.
type Database interface {
	RegistryManager
	SignatureManager
	ConnectionManager
}

// Scope constants define the available scopes for database operations
const (
	// Scope_TenantId is used to filter data by tenant
	Scope_TenantId string = "blocktrust.curr_tenantid"
)

var configuredScopes = []string{
	Scope_TenantId,
}

var pool dbmanager.ScopedDb

// Init initializes the database connection pool.
func Init() {
	ctx := log.Logger.WithContext(context.Background())
	pg := dbmanager.NewScopedDb(ctx, "postgresql", configuredScopes)
	if pg == nil {
		panic("unable to create db pool")
	}
	pool = pg
}

// Conn returns a new database connection from the pool.
func Conn(ctx context.Context) (dbmanager.ScopedConn, error) {
	if pool != nil {
		conn, err := pool.Conn(ctx)
		if err == nil {
			return conn, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
		return nil, err
	}
	return nil, fmt.Errorf("database pool not initialized")
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "BlockTrustDb"

// ConnCtx adds a database connection to the context.
func ConnCtx(ctx context.Context) (context.Context, error) {
	conn, err := Conn(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type trustStoreDb struct {
	RegistryManager
	SignatureManager
	ConnectionManager
}

// DB returns a new database instance from the context. It expects a valid
// database connection in the context and returns nil if none is found.
func DB(ctx context.Context) Database {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		rm, sm, cm := postgresql.NewTrustStoreDb(conn)
		return &trustStoreDb{
			RegistryManager:   rm,
			SignatureManager:  sm,
			ConnectionManager: cm,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
