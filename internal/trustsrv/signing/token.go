package signing

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/common/uuid"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// TokenClaims is the payload of a signed badge token. The token binds the
// token id to the certificate, entity, context type, context hash, and
// anti-replay nonce.
type TokenClaims struct {
	CertificateID uuid.UUID               `json:"cert_id"`
	EntityID      uuid.UUID               `json:"entity_id"`
	CtxType       trustcommon.ContextType `json:"ctx_type"`
	CtxHash       string                  `json:"ctx_hash"`
	Nonce         string                  `json:"nonce"`
	jwt.RegisteredClaims
}

// signToken signs badge claims with the active EdDSA key. The key id goes
// in the kid header so verifiers can select the right public key.
func signToken(ctx context.Context, keys keymanager.KeyManager, claims *TokenClaims) (string, apperrors.Error) {
	signingKey, err := keys.GetActiveKey(ctx)
	if err != nil {
		return "", ErrTokenGeneration.Err(err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = signingKey.KeyID.String()

	signed, goerr := token.SignedString(signingKey.PrivateKey)
	if goerr != nil {
		return "", ErrTokenGeneration.Err(goerr)
	}
	return signed, nil
}

// ParseToken parses and verifies a badge token against the active signing
// key, enforcing the EdDSA signing method and expiry with the configured
// clock skew.
func ParseToken(ctx context.Context, keys keymanager.KeyManager, tokenString string) (*TokenClaims, apperrors.Error) {
	signingKey, err := keys.GetActiveKey(ctx)
	if err != nil {
		return nil, ErrTokenGeneration.Err(err)
	}

	claims := &TokenClaims{}
	_, goerr := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return signingKey.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithLeeway(config.Config().Auth.GetClockSkewOrDefault()),
		jwt.WithIssuer(config.Config().BaseURL),
	)
	if goerr != nil {
		return nil, ErrSigning.New("invalid token signature").MsgErr("unable to verify token", goerr)
	}

	return claims, nil
}
