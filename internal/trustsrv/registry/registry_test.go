package registry

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

func TestMain(m *testing.M) {
	config.TestInit()
	m.Run()
}

// fakeStore backs both the registry and the signer in tests.
type fakeStore struct {
	entities map[uuid.UUID]*models.Entity
	certs    map[uuid.UUID]*models.Certificate
	sigs     map[string]*models.Signature
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities: make(map[uuid.UUID]*models.Entity),
		certs:    make(map[uuid.UUID]*models.Certificate),
		sigs:     make(map[string]*models.Signature),
	}
}

func (s *fakeStore) OnboardEntity(_ context.Context, entity *models.Entity, cert *models.Certificate) apperrors.Error {
	if err := entity.Validate(); err != nil {
		return err
	}
	if entity.EntityID == uuid.Nil {
		entity.EntityID = uuid.New()
	}
	if entity.KYCStatus == "" {
		entity.KYCStatus = models.KYCStatusPending
	}
	if cert.CertificateID == uuid.Nil {
		cert.CertificateID = uuid.New()
	}
	cert.EntityID = entity.EntityID
	cert.Status = trustcommon.CertificateStatusPending
	ecp, ccp := *entity, *cert
	s.entities[entity.EntityID] = &ecp
	s.certs[cert.CertificateID] = &ccp
	return nil
}

func (s *fakeStore) GetEntity(_ context.Context, entityID uuid.UUID) (*models.Entity, apperrors.Error) {
	entity, ok := s.entities[entityID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("entity not found")
	}
	cp := *entity
	return &cp, nil
}

func (s *fakeStore) GetCertificate(_ context.Context, certID uuid.UUID) (*models.Certificate, apperrors.Error) {
	cert, ok := s.certs[certID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("certificate not found")
	}
	cp := *cert
	return &cp, nil
}

func (s *fakeStore) ActivateCertificate(_ context.Context, certID uuid.UUID, expiresAt sql.NullTime) apperrors.Error {
	cert, ok := s.certs[certID]
	if !ok {
		return dberror.ErrNotFound.Msg("certificate not found")
	}
	if cert.Status != trustcommon.CertificateStatusPending {
		return dberror.ErrInvalidInput.Msg("certificate is not pending activation")
	}
	cert.Status = trustcommon.CertificateStatusActive
	cert.IssuedAt = sql.NullTime{Time: time.Now(), Valid: true}
	cert.ExpiresAt = expiresAt
	return nil
}

func (s *fakeStore) RevokeCertificate(_ context.Context, certID uuid.UUID, reason string) apperrors.Error {
	cert, ok := s.certs[certID]
	if !ok {
		return dberror.ErrNotFound.Msg("certificate not found")
	}
	if cert.Status == trustcommon.CertificateStatusRevoked {
		return nil
	}
	cert.Status = trustcommon.CertificateStatusRevoked
	cert.RevocationReason = reason
	for _, sig := range s.sigs {
		if sig.CertificateID == certID {
			sig.Revoked = true
		}
	}
	return nil
}

func (s *fakeStore) UpdateEntityKYCStatus(_ context.Context, entityID uuid.UUID, status string) apperrors.Error {
	entity, ok := s.entities[entityID]
	if !ok {
		return dberror.ErrNotFound.Msg("entity not found")
	}
	entity.KYCStatus = status
	return nil
}

func (s *fakeStore) CreateSignature(_ context.Context, sig *models.Signature) apperrors.Error {
	if _, ok := s.sigs[sig.Jti]; ok {
		return dberror.ErrDuplicateJti
	}
	cp := *sig
	s.sigs[sig.Jti] = &cp
	return nil
}

func (s *fakeStore) GetSignature(_ context.Context, jti string) (*models.Signature, apperrors.Error) {
	sig, ok := s.sigs[jti]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("signature not found")
	}
	cp := *sig
	return &cp, nil
}

func (s *fakeStore) GetReusableSignature(_ context.Context, certID uuid.UUID, ctxType trustcommon.ContextType) (*models.Signature, apperrors.Error) {
	for _, sig := range s.sigs {
		if sig.Reusable && !sig.Revoked && sig.CertificateID == certID && sig.CtxType == ctxType {
			cp := *sig
			return &cp, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no reusable signature")
}

func (s *fakeStore) RevokeSignature(_ context.Context, jti string) apperrors.Error {
	sig, ok := s.sigs[jti]
	if !ok {
		return dberror.ErrNotFound.Msg("signature not found")
	}
	sig.Revoked = true
	return nil
}

type testKeys struct {
	key *keymanager.SigningKey
}

func newTestKeys(t *testing.T) *testKeys {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &testKeys{key: &keymanager.SigningKey{
		KeyID:      uuid.New(),
		PrivateKey: priv,
		PublicKey:  pub,
	}}
}

func (k *testKeys) GetActiveKey(context.Context) (*keymanager.SigningKey, apperrors.Error) {
	return k.key, nil
}

func newTestRegistry(t *testing.T) (*Registry, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewRegistry(store, signing.NewSigner(store, newTestKeys(t))), store
}

func businessEntity() *models.Entity {
	return &models.Entity{
		Type:      trustcommon.EntityTypeBusiness,
		LegalName: "Acme Corp",
		Email:     "ops@acme.example",
	}
}

func TestCreateEntityOnboardsWithPendingCertificate(t *testing.T) {
	reg, store := newTestRegistry(t)

	entity := businessEntity()
	cert, err := reg.CreateEntity(context.Background(), entity)
	require.NoError(t, err)
	require.NotNil(t, cert)

	assert.NotEqual(t, uuid.Nil, entity.EntityID)
	assert.Equal(t, entity.EntityID, cert.EntityID)
	assert.Equal(t, trustcommon.CertificateStatusPending, cert.Status)
	assert.Equal(t, models.KYCStatusPending, store.entities[entity.EntityID].KYCStatus)
}

func TestActivateCertificateMintsIdentityBadge(t *testing.T) {
	reg, store := newTestRegistry(t)

	entity := businessEntity()
	cert, err := reg.CreateEntity(context.Background(), entity)
	require.NoError(t, err)

	issued, err := reg.ActivateCertificate(context.Background(), cert.CertificateID, 0)
	require.NoError(t, err)
	require.NotNil(t, issued)

	assert.Equal(t, trustcommon.CertificateStatusActive, store.certs[cert.CertificateID].Status)
	assert.Equal(t, models.KYCStatusVerified, store.entities[entity.EntityID].KYCStatus)
	assert.Equal(t, trustcommon.ContextTypeIdentityBadge, issued.Signature.CtxType)
	assert.True(t, issued.Signature.Reusable)
	assert.Contains(t, issued.VerifyURL, issued.Signature.Jti)
}

func TestActivateCertificateTwiceFails(t *testing.T) {
	reg, _ := newTestRegistry(t)

	cert, err := reg.CreateEntity(context.Background(), businessEntity())
	require.NoError(t, err)

	_, err = reg.ActivateCertificate(context.Background(), cert.CertificateID, 0)
	require.NoError(t, err)

	_, err = reg.ActivateCertificate(context.Background(), cert.CertificateID, 0)
	require.Error(t, err)
}

func TestActivateCertificateSetsExpiry(t *testing.T) {
	reg, store := newTestRegistry(t)

	cert, err := reg.CreateEntity(context.Background(), businessEntity())
	require.NoError(t, err)

	_, err = reg.ActivateCertificate(context.Background(), cert.CertificateID, 365*24*time.Hour)
	require.NoError(t, err)

	activated := store.certs[cert.CertificateID]
	require.True(t, activated.ExpiresAt.Valid)
	assert.True(t, activated.ExpiresAt.Time.After(time.Now().Add(364*24*time.Hour)))
}

func TestRevokeCertificateCascadesToSignatures(t *testing.T) {
	reg, store := newTestRegistry(t)

	cert, err := reg.CreateEntity(context.Background(), businessEntity())
	require.NoError(t, err)
	issued, err := reg.ActivateCertificate(context.Background(), cert.CertificateID, 0)
	require.NoError(t, err)

	require.NoError(t, reg.RevokeCertificate(context.Background(), cert.CertificateID, "compromised"))
	assert.Equal(t, trustcommon.CertificateStatusRevoked, store.certs[cert.CertificateID].Status)
	assert.True(t, store.sigs[issued.Signature.Jti].Revoked)

	// Monotonic.
	require.NoError(t, reg.RevokeCertificate(context.Background(), cert.CertificateID, "again"))
}

func TestRevokeSignature(t *testing.T) {
	reg, store := newTestRegistry(t)

	cert, err := reg.CreateEntity(context.Background(), businessEntity())
	require.NoError(t, err)
	issued, err := reg.ActivateCertificate(context.Background(), cert.CertificateID, 0)
	require.NoError(t, err)

	require.NoError(t, reg.RevokeSignature(context.Background(), issued.Signature.Jti))
	assert.True(t, store.sigs[issued.Signature.Jti].Revoked)

	err = reg.RevokeSignature(context.Background(), "AAAAAAAAAAAA")
	require.Error(t, err)
}
