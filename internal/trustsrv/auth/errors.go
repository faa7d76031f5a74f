package auth

import (
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
)

var (
	ErrAuth apperrors.Error = apperrors.New("authentication error").SetStatusCode(http.StatusUnauthorized)

	ErrInvalidToken       apperrors.Error = ErrAuth.New("invalid or expired token")
	ErrInvalidCredentials apperrors.Error = ErrAuth.New("invalid credentials")
	ErrMissingTenantID    apperrors.Error = ErrAuth.New("token carries no tenant")
	ErrTokenGeneration    apperrors.Error = apperrors.New("failed to generate token").SetStatusCode(http.StatusInternalServerError)
)
