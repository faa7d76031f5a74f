package signing

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/dberror"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

func TestMain(m *testing.M) {
	config.TestInit()
	m.Run()
}

// memStore is an in-memory SignatureStore mirroring the database
// constraints the signer relies on.
type memStore struct {
	sigs map[string]*models.Signature
}

func newMemStore() *memStore {
	return &memStore{sigs: make(map[string]*models.Signature)}
}

func (s *memStore) CreateSignature(_ context.Context, sig *models.Signature) apperrors.Error {
	if _, ok := s.sigs[sig.Jti]; ok {
		return dberror.ErrDuplicateJti
	}
	if sig.Reusable {
		for _, existing := range s.sigs {
			if existing.Reusable && !existing.Revoked &&
				existing.CertificateID == sig.CertificateID && existing.CtxType == sig.CtxType {
				return dberror.ErrActiveSignatureExists
			}
		}
	}
	cp := *sig
	s.sigs[sig.Jti] = &cp
	return nil
}

func (s *memStore) GetSignature(_ context.Context, jti string) (*models.Signature, apperrors.Error) {
	sig, ok := s.sigs[jti]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("signature not found")
	}
	cp := *sig
	return &cp, nil
}

func (s *memStore) GetReusableSignature(_ context.Context, certID uuid.UUID, ctxType trustcommon.ContextType) (*models.Signature, apperrors.Error) {
	for _, sig := range s.sigs {
		if sig.Reusable && !sig.Revoked && sig.CertificateID == certID && sig.CtxType == ctxType {
			cp := *sig
			return &cp, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no reusable signature")
}

func (s *memStore) RevokeSignature(_ context.Context, jti string) apperrors.Error {
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

func activeCert() *models.Certificate {
	return &models.Certificate{
		CertificateID: uuid.New(),
		EntityID:      uuid.New(),
		Status:        trustcommon.CertificateStatusActive,
	}
}

func emailCtx() *EmailContext {
	return &EmailContext{
		From: "a@x.com", To: "b@y.com", Subject: "Invoice",
		Date: "2024-01-01T00:00:00Z",
	}
}

func TestIssueNewCreatesDistinctSignatures(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	keys := newTestKeys(t)
	signer := NewSigner(store, keys)
	cert := activeCert()

	first, err := signer.IssueNew(ctx, cert, emailCtx(), nil, 0)
	require.NoError(t, err)
	second, err := signer.IssueNew(ctx, cert, emailCtx(), nil, 0)
	require.NoError(t, err)

	assert.NotEqual(t, first.Signature.Jti, second.Signature.Jti)
	assert.Equal(t, first.Signature.CtxHash, second.Signature.CtxHash)
	assert.False(t, first.Reused)
	assert.Len(t, store.sigs, 2)

	assert.Contains(t, first.VerifyURL, "/v/"+first.Signature.Jti)
	assert.Contains(t, first.VerifyURL, "?h="+HashPrefix(first.Signature.CtxHash))

	claims, perr := ParseToken(ctx, keys, first.Signature.Token)
	require.NoError(t, perr)
	assert.Equal(t, first.Signature.Jti, claims.ID)
	assert.Equal(t, cert.CertificateID, claims.CertificateID)
	assert.Equal(t, first.Signature.CtxHash, claims.CtxHash)
	assert.Equal(t, first.Signature.Nonce, claims.Nonce)
}

func TestIssueOrReuseReturnsExisting(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	signer := NewSigner(store, newTestKeys(t))
	cert := activeCert()

	first, err := signer.IssueOrReuse(ctx, cert, emailCtx(), 0)
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.True(t, first.Signature.Reusable)

	second, err := signer.IssueOrReuse(ctx, cert, emailCtx(), 0)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.Signature.Jti, second.Signature.Jti)
	assert.Len(t, store.sigs, 1)
}

func TestIssueOrReuseReplacesExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	signer := NewSigner(store, newTestKeys(t))
	cert := activeCert()

	first, err := signer.IssueOrReuse(ctx, cert, emailCtx(), 0)
	require.NoError(t, err)
	store.sigs[first.Signature.Jti].ExpiresAt = time.Now().Add(-time.Hour)

	second, err := signer.IssueOrReuse(ctx, cert, emailCtx(), 0)
	require.NoError(t, err)
	assert.False(t, second.Reused)
	assert.NotEqual(t, first.Signature.Jti, second.Signature.Jti)
	assert.True(t, store.sigs[first.Signature.Jti].Revoked)
}

func TestIssueRejectsInactiveCertificate(t *testing.T) {
	ctx := context.Background()
	signer := NewSigner(newMemStore(), newTestKeys(t))

	cert := activeCert()
	cert.Status = trustcommon.CertificateStatusPending
	_, err := signer.IssueNew(ctx, cert, emailCtx(), nil, 0)
	assert.ErrorIs(t, err, ErrCertificateNotActive)

	cert.Status = trustcommon.CertificateStatusRevoked
	_, err = signer.IssueNew(ctx, cert, emailCtx(), nil, 0)
	assert.ErrorIs(t, err, ErrCertificateNotActive)
}

func TestIssueRejectsExcessiveValidity(t *testing.T) {
	ctx := context.Background()
	signer := NewSigner(newMemStore(), newTestKeys(t))

	_, err := signer.IssueNew(ctx, activeCert(), emailCtx(), nil, 20*365*24*time.Hour)
	assert.ErrorIs(t, err, ErrInvalidValidity)
}
