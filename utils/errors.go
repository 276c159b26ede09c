package utils

import (
	"errors"
	"net/http"
)

// APIError carries a message plus the HTTP status it should surface with.
// The workflow layers return these; the handlers map anything else to 500.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message)
}

func Forbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message)
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message)
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, message)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, message)
}

// Upstream wraps a dependency failure that must surface to the caller,
// e.g. the payment processor rejecting a request.
func Upstream(message string) *APIError {
	return NewAPIError(http.StatusBadGateway, message)
}

// StatusCode extracts the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return http.StatusInternalServerError
}
