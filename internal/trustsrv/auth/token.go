// Package auth issues and validates operator access tokens. Tokens are
// EdDSA-signed JWTs minted against the active signing key; in single
// operator mode the credential is a bcrypt hash carried in runtime config.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// AccessClaims is the claim set carried by operator access tokens.
type AccessClaims struct {
	TenantID string `json:"tenant_id"`
	Admin    bool   `json:"admin"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

const tokenUseAccess = "access"

// CreateAccessToken mints an access token for an operator. validity zero
// uses the configured default.
func CreateAccessToken(ctx context.Context, subject string, tenantID trustcommon.TenantId, admin bool, validity time.Duration) (string, time.Time, apperrors.Error) {
	if subject == "" {
		return "", time.Time{}, ErrInvalidCredentials.Msg("subject is required")
	}
	if tenantID == "" {
		return "", time.Time{}, ErrMissingTenantID
	}
	if validity <= 0 {
		validity = config.Config().Auth.GetDefaultTokenValidityOrDefault()
	}
	if maxAge := config.Config().Auth.GetMaxTokenAgeOrDefault(); validity > maxAge {
		validity = maxAge
	}

	now := time.Now()
	expiry := now.Add(validity)
	claims := &AccessClaims{
		TenantID: string(tenantID),
		Admin:    admin,
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    config.Config().BaseURL,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	key, err := keymanager.GetKeyManager().GetActiveKey(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to get active signing key")
		return "", time.Time{}, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = key.KeyID.String()
	signed, goerr := token.SignedString(key.PrivateKey)
	if goerr != nil {
		log.Ctx(ctx).Error().Err(goerr).Msg("unable to sign access token")
		return "", time.Time{}, ErrTokenGeneration.Err(goerr)
	}

	return signed, expiry, nil
}

// ValidateToken parses and verifies an access token and returns a context
// carrying the tenant and operator identity.
func ValidateToken(ctx context.Context, tokenStr string) (context.Context, apperrors.Error) {
	if tokenStr == "" {
		return ctx, ErrInvalidToken.Msg("empty token")
	}

	key, err := keymanager.GetKeyManager().GetActiveKey(ctx)
	if err != nil {
		return ctx, err
	}

	claims := &AccessClaims{}
	_, goerr := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithLeeway(config.Config().Auth.GetClockSkewOrDefault()),
		jwt.WithIssuer(config.Config().BaseURL),
		jwt.WithExpirationRequired(),
	)
	if goerr != nil {
		return ctx, ErrInvalidToken.Err(goerr)
	}
	if claims.TokenUse != tokenUseAccess {
		return ctx, ErrInvalidToken.Msg("not an access token")
	}
	if claims.TenantID == "" {
		return ctx, ErrMissingTenantID
	}

	ctx = trustcommon.WithTenantID(ctx, trustcommon.TenantId(claims.TenantID))
	ctx = trustcommon.WithOperator(ctx, &trustcommon.OperatorContext{
		Subject: claims.Subject,
		Admin:   claims.Admin,
	})
	return ctx, nil
}
