package signing

import (
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
)

// Base signing error
var (
	ErrSigning apperrors.Error = apperrors.New("signing error").SetStatusCode(http.StatusInternalServerError)
)

// Validation errors
var (
	ErrInvalidContext     apperrors.Error = ErrSigning.New("invalid context").SetStatusCode(http.StatusBadRequest)
	ErrInvalidContextType apperrors.Error = ErrSigning.New("invalid context type").SetStatusCode(http.StatusBadRequest)
	ErrInvalidDate        apperrors.Error = ErrInvalidContext.New("unparseable date").SetStatusCode(http.StatusBadRequest)
	ErrEmptyContent       apperrors.Error = ErrInvalidContext.New("empty content").SetStatusCode(http.StatusBadRequest)
	ErrInvalidValidity    apperrors.Error = ErrSigning.New("invalid validity period").SetStatusCode(http.StatusBadRequest)
)

// Issuance errors
var (
	ErrCertificateNotActive apperrors.Error = ErrSigning.New("certificate is not active").SetStatusCode(http.StatusForbidden)
	ErrTokenGeneration      apperrors.Error = ErrSigning.New("failed to generate token").SetStatusCode(http.StatusInternalServerError)
	ErrJtiExhausted         apperrors.Error = ErrSigning.New("unable to allocate a unique token id").SetStatusCode(http.StatusInternalServerError)
)
