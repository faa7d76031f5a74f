package registry

import (
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
)

var (
	ErrRegistry apperrors.Error = apperrors.New("registry error").SetStatusCode(http.StatusInternalServerError)

	ErrInvalidEntity apperrors.Error = ErrRegistry.New("invalid entity").SetStatusCode(http.StatusBadRequest)
	ErrBadgeIssuance apperrors.Error = ErrRegistry.New("certificate activated but badge issuance failed").SetStatusCode(http.StatusInternalServerError)
)
