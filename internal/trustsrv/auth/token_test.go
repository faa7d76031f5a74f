package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

func TestMain(m *testing.M) {
	config.TestInit()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	keymanager.SetTestKey(&keymanager.SigningKey{
		KeyID:      uuid.New(),
		PrivateKey: priv,
		PublicKey:  pub,
	})
	m.Run()
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ctx := context.Background()

	token, expiry, err := CreateAccessToken(ctx, "operator", "TLOCAL", true, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)

	authCtx, err := ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, trustcommon.TenantId("TLOCAL"), trustcommon.GetTenantID(authCtx))

	op := trustcommon.GetOperator(authCtx)
	require.NotNil(t, op)
	assert.Equal(t, "operator", op.Subject)
	assert.True(t, op.Admin)
}

func TestCreateAccessTokenValidation(t *testing.T) {
	ctx := context.Background()

	_, _, err := CreateAccessToken(ctx, "", "TLOCAL", false, time.Hour)
	require.Error(t, err)

	_, _, err = CreateAccessToken(ctx, "operator", "", false, time.Hour)
	require.Error(t, err)
}

func TestCreateAccessTokenClampsValidity(t *testing.T) {
	maxAge := config.Config().Auth.GetMaxTokenAgeOrDefault()

	_, expiry, err := CreateAccessToken(context.Background(), "operator", "TLOCAL", false, maxAge+24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(maxAge), expiry, time.Minute)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	ctx := context.Background()

	_, err := ValidateToken(ctx, "")
	require.Error(t, err)

	_, err = ValidateToken(ctx, "invalid.token.string")
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	_, otherPriv, goerr := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, goerr)

	claims := &AccessClaims{
		TenantID: "TLOCAL",
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Config().BaseURL,
			Subject:   "operator",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, goerr := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(otherPriv)
	require.NoError(t, goerr)

	_, err := ValidateToken(context.Background(), forged)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	skew := config.Config().Auth.GetClockSkewOrDefault()

	key, err := keymanager.GetKeyManager().GetActiveKey(context.Background())
	require.NoError(t, err)

	claims := &AccessClaims{
		TenantID: "TLOCAL",
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Config().BaseURL,
			Subject:   "operator",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-skew - time.Hour)),
		},
	}
	expired, goerr := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key.PrivateKey)
	require.NoError(t, goerr)

	_, aerr := ValidateToken(context.Background(), expired)
	require.Error(t, aerr)
}

func TestLoginSingleOperator(t *testing.T) {
	hash, goerr := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	require.NoError(t, goerr)
	config.Config().OperatorPasswordHash = string(hash)

	token, _, err := LoginSingleOperator(context.Background(), "operator", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = LoginSingleOperator(context.Background(), "operator", "wrong")
	require.Error(t, err)

	_, _, err = LoginSingleOperator(context.Background(), "nobody", "hunter2")
	require.Error(t, err)
}

func TestOperatorAuthMiddleware(t *testing.T) {
	var gotTenant trustcommon.TenantId
	var gotOperator *trustcommon.OperatorContext
	handler := OperatorAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = trustcommon.GetTenantID(r.Context())
		gotOperator = trustcommon.GetOperator(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entities", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/entities", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := CreateAccessToken(context.Background(), "operator", "TLOCAL", true, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/entities", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, trustcommon.TenantId("TLOCAL"), gotTenant)
		require.NotNil(t, gotOperator)
		assert.Equal(t, "operator", gotOperator.Subject)
	})

	t.Run("test operator token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/entities", nil)
		req.Header.Set("Authorization", "Bearer "+config.Config().Auth.TestOperatorToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, trustcommon.TenantId(config.Config().DefaultTenantID), gotTenant)
	})
}

func TestJWKSHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	GetJWKSHandler(keymanager.GetKeyManager())(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kty":"OKP"`)
	assert.Contains(t, rec.Body.String(), `"alg":"EdDSA"`)
}
