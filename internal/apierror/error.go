// Package apierror provides the API error types and HTTP responses.
//
// All errors returned by the API share a single JSON envelope so that
// clients (including the conversational agent that consumes this API)
// can handle failures uniformly.
package apierror

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Type constants classify errors on the wire.
const (
	TypeInvalidRequest = "invalid_request_error"
	TypeNotFound       = "not_found_error"
	TypeAuthentication = "authentication_error"
	TypeRateLimit      = "rate_limit_error"
	TypeUpstream       = "upstream_error"
	TypeServer         = "server_error"
)

// Error represents an API error.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// response wraps an Error in the envelope format.
type response struct {
	Error *Error `json:"error"`
}

// Write sends an Error as a JSON HTTP response.
func Write(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(response{Error: err}); encErr != nil {
		slog.Error("failed to encode error response", "err", encErr)
	}
}

// InvalidRequest returns a 400 error for malformed requests.
func InvalidRequest(msg string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: msg,
		Type:    TypeInvalidRequest,
	}
}

// InvalidParam returns a 400 error for a specific invalid parameter.
func InvalidParam(param, msg string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: msg,
		Type:    TypeInvalidRequest,
		Param:   param,
	}
}

// NotFound returns a 404 error when no restaurants match.
func NotFound(msg string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Message: msg,
		Type:    TypeNotFound,
		Code:    "no_results",
	}
}

// Unauthorized returns a 401 error for authentication failures.
func Unauthorized(msg string) *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: msg,
		Type:    TypeAuthentication,
		Code:    "invalid_api_key",
	}
}

// RateLimited returns a 429 error when rate limits are exceeded.
func RateLimited() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Message: "Rate limit exceeded. Please retry after a brief wait.",
		Type:    TypeRateLimit,
		Code:    "rate_limit_exceeded",
	}
}

// Upstream returns a 502 error when a data provider fails.
func Upstream(provider string) *Error {
	return &Error{
		Status:  http.StatusBadGateway,
		Message: "Upstream provider " + provider + " failed to answer.",
		Type:    TypeUpstream,
		Code:    "upstream_failure",
	}
}

// Internal returns a 500 error for unexpected server failures.
func Internal(msg string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: msg,
		Type:    TypeServer,
	}
}
