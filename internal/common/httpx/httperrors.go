package httpx

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON error envelope sent to API clients.
type Error struct {
	StatusCode  int    `json:"-"`
	Description string `json:"error"`
}

func (e *Error) Error() string {
	return e.Description
}

// Send writes the error as a JSON response with its status code.
func (e *Error) Send(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

func newError(statusCode int, defaultMsg string, msg ...string) *Error {
	description := defaultMsg
	if len(msg) > 0 && msg[0] != "" {
		description = msg[0]
	}
	return &Error{StatusCode: statusCode, Description: description}
}

func ErrInvalidRequest(msg ...string) *Error {
	return newError(http.StatusBadRequest, "invalid request", msg...)
}

func ErrUnAuthorized(msg ...string) *Error {
	return newError(http.StatusUnauthorized, "unauthorized", msg...)
}

func ErrForbidden(msg ...string) *Error {
	return newError(http.StatusForbidden, "forbidden", msg...)
}

func ErrNotFound(msg ...string) *Error {
	return newError(http.StatusNotFound, "not found", msg...)
}

func ErrConflict(msg ...string) *Error {
	return newError(http.StatusConflict, "conflict", msg...)
}

func ErrTooManyRequests(msg ...string) *Error {
	return newError(http.StatusTooManyRequests, "too many requests", msg...)
}

func ErrApplicationError(msg ...string) *Error {
	return newError(http.StatusInternalServerError, "application error", msg...)
}

func ErrRequestTimeout(msg ...string) *Error {
	return newError(http.StatusRequestTimeout, "request timed out", msg...)
}

func ErrReqMethodNotSupported(msg ...string) *Error {
	return newError(http.StatusMethodNotAllowed, "method not supported", msg...)
}

func ErrUnableToParseReqData(msg ...string) *Error {
	return newError(http.StatusBadRequest, "unable to parse request data", msg...)
}
