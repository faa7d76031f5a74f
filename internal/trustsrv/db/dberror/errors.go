package dberror

import (
	"net/http"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
)

var (
	ErrDatabase        apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists   apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound        apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput    apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrMissingTenantID apperrors.Error = ErrInvalidInput.New("missing tenant ID").SetStatusCode(http.StatusBadRequest)

	// ErrDuplicateJti indicates a primary key collision on a generated jti;
	// callers regenerate and retry.
	ErrDuplicateJti apperrors.Error = ErrAlreadyExists.New("jti already exists").SetStatusCode(http.StatusConflict)
	// ErrActiveSignatureExists indicates another live reusable signature for
	// the same certificate and context type; callers fetch and reuse it.
	ErrActiveSignatureExists apperrors.Error = ErrAlreadyExists.New("active signature already exists").SetStatusCode(http.StatusConflict)
)
