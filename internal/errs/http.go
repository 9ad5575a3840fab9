package errs

import (
	"net/http"
)

func newHTTPError(status int, message string, override bool) *HTTPError {
	return &HTTPError{
		Message:  message,
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Status:   status,
		Override: override,
	}
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override)
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override)
}

// NewBadRequestError creates a 400 error.
//
// code replaces the default BAD_REQUEST when non-nil; errors carries
// per-field validation details.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message, override)
	if code != nil {
		err.Code = *code
	}
	err.Errors = errors
	err.Action = action
	return err
}

// NewNotFoundError creates a 404 error with an optional custom code.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	err := newHTTPError(http.StatusNotFound, message, override)
	if code != nil {
		err.Code = *code
	}
	return err
}

// NewConflictError creates a 409 error.
func NewConflictError(message string) *HTTPError {
	return newHTTPError(http.StatusConflict, message, true)
}

// NewTooManyRequestsError creates a 429 error telling the client how long to wait.
func NewTooManyRequestsError(message, retryAfter string) *HTTPError {
	err := newHTTPError(http.StatusTooManyRequests, message, true)
	err.Action = &Action{
		Type:    ActionTypeRetry,
		Message: "Retry after the rate limit window",
		Value:   retryAfter,
	}
	return err
}

// NewServiceUnavailableError creates a 503 error.
func NewServiceUnavailableError(message string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message, true)
}

// NewInternalServerError creates a 500 error with the generic status text.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false)
}

// NewInternalError creates a 500 error whose message is meant for clients,
// e.g. "Failed to process message".
func NewInternalError(message string) *HTTPError {
	return newHTTPError(http.StatusInternalServerError, message, true)
}

// ValidationError converts a generic validation error into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// Code helpers for NewBadRequestError / NewNotFoundError.
var (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
)
