// Package apperr carries the typed errors every component returns instead
// of raising transport-level responses itself. Only the outermost handler
// boundary converts them to HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

func Conflict(message string) *Error { return New(http.StatusConflict, message) }

func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// StatusOf extracts the HTTP status from err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the client-facing message from err. Unexpected errors
// are masked so internals never leak to clients.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred on the server"
}

// IsOperational reports whether err carries a 4xx status.
func IsOperational(err error) bool {
	status := StatusOf(err)
	return status >= 400 && status < 500
}
