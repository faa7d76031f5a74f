package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

func TestVersionEndpoint(t *testing.T) {
	setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rr := executeTestRequest(t, req, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, config.Version, gjson.Get(rr.Body.String(), "apiVersion").String())
}

func TestManagementRoutesRequireAuth(t *testing.T) {
	setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	rr := executeTestRequest(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/entities", nil)
	rr = executeTestRequest(t, req, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerificationFlow(t *testing.T) {
	ts := setupTest(t)

	// Onboard a business entity; the certificate starts out PENDING.
	req := httptest.NewRequest(http.MethodPost, "/entities", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"type":      "BUSINESS",
		"legalName": "Meridian Freight Ltd",
		"email":     "ops@meridianfreight.example",
		"website":   "https://meridianfreight.example",
	})
	rr := executeTestRequest(t, req, ts.operatorToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := rr.Body.String()
	certID := gjson.Get(body, "certificate.certificateId").String()
	require.NotEmpty(t, certID)
	assert.Equal(t, "PENDING", gjson.Get(body, "certificate.status").String())
	assert.Equal(t, "PENDING", gjson.Get(body, "entity.kycStatus").String())

	// Activation mints the identity badge.
	req = httptest.NewRequest(http.MethodPost, "/certificates/"+certID+"/activate", nil)
	setRequestBodyAndHeader(t, req, map[string]any{"validityDays": 365})
	rr = executeTestRequest(t, req, ts.operatorToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body = rr.Body.String()
	assert.Equal(t, "ACTIVE", gjson.Get(body, "status").String())
	badgeJti := gjson.Get(body, "badge.jti").String()
	verifyURL := gjson.Get(body, "badge.verifyUrl").String()
	require.NotEmpty(t, badgeJti)
	require.NotEmpty(t, verifyURL)

	// The badge link resolves without credentials.
	u, err := url.Parse(verifyURL)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, u.Path+"?"+u.RawQuery, nil)
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "VALID", gjson.Get(rr.Body.String(), "verdict").String())
	assert.Equal(t, "Meridian Freight Ltd", gjson.Get(rr.Body.String(), "badge.entityName").String())

	// A badge link with no hash is treated as a stripped link.
	req = httptest.NewRequest(http.MethodGet, "/v2/verify/"+badgeJti, nil)
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "FRAUD_ALERT", gjson.Get(rr.Body.String(), "verdict").String())
	assert.Equal(t, "MISSING_HASH", gjson.Get(rr.Body.String(), "reason").String())

	// A wrong hash prefix means the link was tampered with.
	req = httptest.NewRequest(http.MethodGet, "/v/"+badgeJti+"?h=0000000000000000", nil)
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "FRAUD_ALERT", gjson.Get(rr.Body.String(), "verdict").String())
	assert.Equal(t, "HASH_MISMATCH", gjson.Get(rr.Body.String(), "reason").String())

	// Issue an email signature against the active certificate.
	emailCtx := map[string]any{
		"from":    "ops@meridianfreight.example",
		"to":      "billing@customer.example",
		"subject": "Invoice 4471",
		"date":    "2026-08-01T09:30:00Z",
	}
	req = httptest.NewRequest(http.MethodPost, "/v2/issue", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"certificateId": certID,
		"context":       emailCtx,
	})
	rr = executeTestRequest(t, req, ts.operatorToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	emailJti := gjson.Get(rr.Body.String(), "jti").String()
	require.NotEmpty(t, emailJti)
	emailToken := gjson.Get(rr.Body.String(), "token").String()
	require.NotEmpty(t, emailToken)

	// A relying party holding only the issued token can verify without
	// the jti; the verified claims name the record.
	req = httptest.NewRequest(http.MethodPost, "/v2/verify", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"token":       emailToken,
		"contextType": "email",
		"context":     emailCtx,
	})
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, []string{"VALID", "VALID_WITH_WARNING"},
		gjson.Get(rr.Body.String(), "verdict").String())
	assert.Equal(t, emailJti, gjson.Get(rr.Body.String(), "badge.jti").String())

	// A request naming neither a jti nor a token is malformed, not a verdict.
	req = httptest.NewRequest(http.MethodPost, "/v2/verify", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"contextType": "email",
		"context":     emailCtx,
	})
	rr = executeTestRequest(t, req, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Recomputing the context hash tolerates whitespace differences.
	req = httptest.NewRequest(http.MethodPost, "/v2/verify", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"jti":         emailJti,
		"contextType": "email",
		"context": map[string]any{
			"from":    "ops@meridianfreight.example",
			"to":      "billing@customer.example",
			"subject": "  Invoice   4471 ",
			"date":    "2026-08-01T09:30:00Z",
		},
	})
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	verdict := gjson.Get(rr.Body.String(), "verdict").String()
	assert.Contains(t, []string{"VALID", "VALID_WITH_WARNING"}, verdict)

	// An altered subject is flagged as tampered.
	tampered := map[string]any{
		"from":    "ops@meridianfreight.example",
		"to":      "billing@customer.example",
		"subject": "Invoice 4471 PAID",
		"date":    "2026-08-01T09:30:00Z",
	}
	req = httptest.NewRequest(http.MethodPost, "/v2/verify", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"jti":         emailJti,
		"contextType": "email",
		"context":     tampered,
	})
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "TAMPERED", gjson.Get(rr.Body.String(), "verdict").String())

	// Revocation wins over everything on subsequent checks.
	req = httptest.NewRequest(http.MethodPost, "/signatures/"+emailJti+"/revoke", nil)
	setRequestBodyAndHeader(t, req, map[string]any{"reason": "sender compromise"})
	rr = executeTestRequest(t, req, ts.operatorToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/v2/verify", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"jti":         emailJti,
		"contextType": "email",
		"context":     emailCtx,
	})
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "REVOKED", gjson.Get(rr.Body.String(), "verdict").String())

	// Every attempt above left a trail entry.
	req = httptest.NewRequest(http.MethodGet, "/signatures/"+emailJti+"/events", nil)
	rr = executeTestRequest(t, req, ts.operatorToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	events := gjson.Parse(rr.Body.String()).Array()
	require.GreaterOrEqual(t, len(events), 3)
	verdicts := make([]string, 0, len(events))
	for _, ev := range events {
		verdicts = append(verdicts, ev.Get("verdict").String())
	}
	assert.Contains(t, verdicts, "TAMPERED")
	assert.Contains(t, verdicts, "REVOKED")
}

func TestOperatorLoginFlow(t *testing.T) {
	setupTest(t)

	cfg := config.Config()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	prevMode, prevHash := cfg.SingleOperatorMode, cfg.OperatorPasswordHash
	cfg.SingleOperatorMode = true
	cfg.OperatorPasswordHash = string(hash)
	t.Cleanup(func() {
		cfg.SingleOperatorMode = prevMode
		cfg.OperatorPasswordHash = prevHash
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"username": cfg.Auth.OperatorName,
		"password": "wrong",
	})
	rr := executeTestRequest(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"username": cfg.Auth.OperatorName,
		"password": "correct horse",
	})
	rr = executeTestRequest(t, req, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := gjson.Get(rr.Body.String(), "token").String()
	require.NotEmpty(t, token)

	// The minted token opens the management surface.
	req = httptest.NewRequest(http.MethodGet, "/entities", nil)
	rr = executeTestRequest(t, req, token)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}
