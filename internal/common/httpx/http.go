// Package httpx provides the HTTP request/response plumbing shared by all
// API handlers: JSON body parsing, a uniform response envelope, and the
// translation of application errors into HTTP error responses.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
)

// GetRequestData decodes the JSON request body into data. Only POST, PUT
// and PATCH requests carry bodies in this API.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response is the result of a request handler: a status code, an optional
// Location for 201 responses, and a JSON-marshalable body.
type Response struct {
	StatusCode int
	Location   string
	Response   any
}

// RequestHandler is the handler signature used throughout the API layer.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp adapts a RequestHandler into an http.HandlerFunc, turning
// returned errors into JSON error responses with the right status code.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			sendHandlerError(w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
	}
}

func sendHandlerError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *Error:
		e.Send(w)
	case apperrors.Error:
		statusCode := e.StatusCode()
		if statusCode == 0 {
			statusCode = http.StatusInternalServerError
		}
		(&Error{StatusCode: statusCode, Description: e.ErrorAll()}).Send(w)
	default:
		ErrApplicationError(err.Error()).Send(w)
	}
}
