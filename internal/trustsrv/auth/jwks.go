package auth

import (
	"encoding/base64"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/signing/keymanager"
)

// JWKS represents a JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Crv string `json:"crv"`
	X   string `json:"x"`
}

// GetJWKSHandler serves the public verification keys so third parties can
// check signature tokens offline.
func GetJWKSHandler(km keymanager.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := km.GetActiveKey(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("no active key available")
			httpx.SendJsonRsp(r.Context(), w, http.StatusInternalServerError, map[string]string{
				"error": "no active key available",
			})
			return
		}

		jwks := JWKS{Keys: []JWK{{
			Kty: "OKP",
			Kid: key.KeyID.String(),
			Use: "sig",
			Alg: "EdDSA",
			Crv: "Ed25519",
			X:   base64.RawURLEncoding.EncodeToString(key.PublicKey),
		}}}

		httpx.SendJsonRsp(r.Context(), w, http.StatusOK, jwks)
	}
}
