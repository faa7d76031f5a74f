package verification

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
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

func TestMain(m *testing.M) {
	config.TestInit()
	m.Run()
}

// memStore is an in-memory trust store covering what the signer, verifier
// and event logger need.
type memStore struct {
	sigs     map[string]*models.Signature
	entities map[uuid.UUID]*models.Entity
	events   []*models.VerificationEvent
}

func newMemStore() *memStore {
	return &memStore{
		sigs:     make(map[string]*models.Signature),
		entities: make(map[uuid.UUID]*models.Entity),
	}
}

func (s *memStore) CreateSignature(_ context.Context, sig *models.Signature) apperrors.Error {
	if _, ok := s.sigs[sig.Jti]; ok {
		return dberror.ErrDuplicateJti
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

func (s *memStore) GetEntity(_ context.Context, entityID uuid.UUID) (*models.Entity, apperrors.Error) {
	entity, ok := s.entities[entityID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("entity not found")
	}
	return entity, nil
}

func (s *memStore) CreateVerificationEvent(_ context.Context, event *models.VerificationEvent) apperrors.Error {
	cp := *event
	cp.CreatedAt = time.Now()
	s.events = append(s.events, &cp)
	return nil
}

func (s *memStore) GetLatestSuccessEvent(_ context.Context, jti string) (*models.VerificationEvent, apperrors.Error) {
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.Jti.Valid && e.Jti.String == jti &&
			(e.Verdict == string(VerdictValid) || e.Verdict == string(VerdictValidWithWarning)) {
			return e, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no prior successful verification")
}

func (s *memStore) lastEvent() *models.VerificationEvent {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
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

type fixture struct {
	store    *memStore
	signer   *signing.Signer
	verifier *Verifier
	cert     *models.Certificate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	keys := newTestKeys(t)

	entityID := uuid.New()
	store.entities[entityID] = &models.Entity{
		EntityID:        entityID,
		Type:            trustcommon.EntityTypeBusiness,
		LegalName:       "Acme Corp",
		Email:           "ops@acme.example",
		ValidationLevel: trustcommon.ValidationLevelGold,
	}

	return &fixture{
		store:  store,
		signer: signing.NewSigner(store, keys),
		verifier: NewVerifier(store, keys, NewEventLogger(store)),
		cert: &models.Certificate{
			CertificateID: uuid.New(),
			EntityID:      entityID,
			Status:        trustcommon.CertificateStatusActive,
		},
	}
}

func emailCtx() *signing.EmailContext {
	return &signing.EmailContext{
		From: "a@x.com", To: "b@y.com", Subject: "Invoice",
		Date: "2024-01-01T00:00:00Z",
	}
}

func emailBuilder(c *signing.EmailContext) ContextBuilder {
	return func(*models.Signature) (signing.Context, apperrors.Error) {
		return c, nil
	}
}

var requester = Requester{IP: "203.0.113.7", UserAgent: "test-agent"}

func (f *fixture) issue(t *testing.T) *signing.IssuedSignature {
	t.Helper()
	issued, err := f.signer.IssueNew(context.Background(), f.cert, emailCtx(), nil, 0)
	require.NoError(t, err)
	return issued
}

func TestVerifyBadgeRoundTrip(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	result := f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti,
		signing.HashPrefix(issued.Signature.CtxHash), requester)

	assert.Equal(t, VerdictValid, result.Verdict)
	assert.True(t, result.HashOnly)
	require.NotNil(t, result.Badge)
	assert.Equal(t, "Acme Corp", result.Badge.EntityName)
	assert.Equal(t, "GOLD", result.Badge.ValidationLevel)

	event := f.store.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, string(VerdictValid), event.Verdict)
	assert.Equal(t, issued.Signature.Jti, event.Jti.String)
	assert.NotEqual(t, requester.IP, event.IPHash, "raw IP must not be stored")
	assert.Len(t, event.IPHash, IPHashLength)
}

func TestVerifyBadgeNotFound(t *testing.T) {
	f := newFixture(t)

	result := f.verifier.VerifyBadge(context.Background(), "AAAAAAAAAAAA", "0123456789abcdef", requester)
	assert.Equal(t, VerdictNotFound, result.Verdict)
	assert.Nil(t, result.Badge)

	event := f.store.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, string(VerdictNotFound), event.Verdict)
	assert.False(t, event.Jti.Valid)
}

func TestVerifyBadgeInvalidInput(t *testing.T) {
	f := newFixture(t)

	result := f.verifier.VerifyBadge(context.Background(), "", "0123456789abcdef", requester)
	assert.Equal(t, VerdictInvalidInput, result.Verdict)

	result = f.verifier.VerifyBadge(context.Background(), "bad jti!", "0123456789abcdef", requester)
	assert.Equal(t, VerdictInvalidInput, result.Verdict)

	issued := f.issue(t)
	result = f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti, "XYZ", requester)
	assert.Equal(t, VerdictInvalidInput, result.Verdict)
}

func TestVerifyBadgeMissingHash(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	result := f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti, "", requester)
	assert.Equal(t, VerdictFraudAlert, result.Verdict)
	assert.Equal(t, ReasonMissingHash, result.Reason)
}

func TestVerifyBadgeHashMismatch(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	wrong := "0000000000000000"
	if signing.HashPrefix(issued.Signature.CtxHash) == wrong {
		wrong = "1111111111111111"
	}
	result := f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti, wrong, requester)
	assert.Equal(t, VerdictFraudAlert, result.Verdict)
	assert.Equal(t, ReasonHashMismatch, result.Reason)
}

func TestVerifyBadgeRevokedPrecedesHashMismatch(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	f.store.sigs[issued.Signature.Jti].Revoked = true

	result := f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti, "0000000000000000", requester)
	assert.Equal(t, VerdictRevoked, result.Verdict)
}

func TestVerifyBadgeExpired(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	f.store.sigs[issued.Signature.Jti].ExpiresAt = time.Now().Add(-time.Minute)

	result := f.verifier.VerifyBadge(context.Background(), issued.Signature.Jti,
		signing.HashPrefix(issued.Signature.CtxHash), requester)
	assert.Equal(t, VerdictExpired, result.Verdict)
}

func TestVerifyContextWhitespaceInsensitive(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	variant := emailCtx()
	variant.Subject = "Invoice "
	result := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti, "", "",
		emailBuilder(variant), requester)
	assert.Equal(t, VerdictValid, result.Verdict)
}

func TestVerifyContextTampered(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	tampered := emailCtx()
	tampered.Subject = "Invoice!"
	result := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti, "", "",
		emailBuilder(tampered), requester)
	assert.Equal(t, VerdictTampered, result.Verdict)

	event := f.store.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, string(VerdictTampered), event.Verdict)
}

func TestVerifyContextReplayDowngrade(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	first := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti, "", "",
		emailBuilder(emailCtx()), requester)
	require.Equal(t, VerdictValid, first.Verdict)

	other := Requester{IP: "198.51.100.9", UserAgent: "another-agent"}
	second := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti, "", "",
		emailBuilder(emailCtx()), other)
	assert.Equal(t, VerdictValidWithWarning, second.Verdict)
	assert.Equal(t, ReasonReplaySuspected, second.Reason)
	require.NotNil(t, second.Badge)

	// The latest success now belongs to the other client, so the
	// original requester gets flagged too.
	third := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti, "", "",
		emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictValidWithWarning, third.Verdict)
}

func TestVerifyContextWithMatchingPrefix(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	result := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti,
		signing.HashPrefix(issued.Signature.CtxHash), "", emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictValid, result.Verdict)

	result = f.verifier.VerifyContext(context.Background(), issued.Signature.Jti,
		"0000000000000000", "", emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictTampered, result.Verdict)
}

func TestVerifyContextWithoutContent(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	withheld := func(*models.Signature) (signing.Context, apperrors.Error) {
		return nil, nil
	}

	result := f.verifier.VerifyContext(context.Background(), issued.Signature.Jti,
		signing.HashPrefix(issued.Signature.CtxHash), "", withheld, requester)
	assert.Equal(t, VerdictValid, result.Verdict)
	assert.True(t, result.HashOnly)

	// No prefix and no content leaves nothing to check.
	result = f.verifier.VerifyContext(context.Background(), issued.Signature.Jti,
		"", "", withheld, requester)
	assert.Equal(t, VerdictFraudAlert, result.Verdict)
	assert.Equal(t, ReasonMissingHash, result.Reason)
}

func TestVerifyContextByToken(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	// No jti and no hash: the verified token claims supply both.
	result := f.verifier.VerifyContext(context.Background(), "", "", issued.Signature.Token,
		emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictValid, result.Verdict)
	require.NotNil(t, result.Badge)
	assert.Equal(t, issued.Signature.Jti, result.Badge.Jti)
}

func TestVerifyContextTokenRejections(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	result := f.verifier.VerifyContext(context.Background(), "", "", "not-a-token",
		emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictFraudAlert, result.Verdict)
	assert.Equal(t, ReasonInvalidSignature, result.Reason)

	event := f.store.lastEvent()
	require.NotNil(t, event)
	assert.Equal(t, string(VerdictFraudAlert), event.Verdict)

	// A valid token presented alongside somebody else's jti.
	other := f.issue(t)
	result = f.verifier.VerifyContext(context.Background(), other.Signature.Jti, "",
		issued.Signature.Token, emailBuilder(emailCtx()), requester)
	assert.Equal(t, VerdictFraudAlert, result.Verdict)
	assert.Equal(t, ReasonInvalidSignature, result.Reason)
}
