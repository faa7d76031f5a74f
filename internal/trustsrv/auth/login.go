package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// LoginSingleOperator checks the operator password against the bcrypt hash
// from runtime config and mints an access token for the default tenant.
func LoginSingleOperator(ctx context.Context, username, password string) (string, time.Time, apperrors.Error) {
	cfg := config.Config()
	if !cfg.SingleOperatorMode {
		return "", time.Time{}, ErrInvalidCredentials.Msg("password login is disabled")
	}
	if username != cfg.Auth.OperatorName {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if cfg.OperatorPasswordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials.Msg("no operator password configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.OperatorPasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return CreateAccessToken(ctx, username, trustcommon.TenantId(cfg.DefaultTenantID), true, 0)
}
