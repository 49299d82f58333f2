// Package apperrors classifies failures surfaced by the chat API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of a failure. Codes map one-to-one onto HTTP
// statuses at the handler boundary.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeRateLimit    Code = "rate_limit"
	CodeInternal     Code = "internal"
)

// HTTPStatus returns the status for the code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a classified failure across domain boundaries.
type Error struct {
	Code    Code   `json:"code"`
	Surface string `json:"surface,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:%s: %s: %v", e.Code, e.Surface, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s:%s: %s", e.Code, e.Surface, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a classified error. Surface names the subsystem the failure belongs
// to ("chat", "stream", "vote", ...) and ends up in logs, not responses.
func New(code Code, surface, message string) *Error {
	return &Error{Code: code, Surface: surface, Message: message}
}

// Wrap attaches a cause to a classified error.
func Wrap(code Code, surface, message string, cause error) *Error {
	return &Error{Code: code, Surface: surface, Message: message, Cause: cause}
}

// CodeOf extracts the classification of err, defaulting to internal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return CodeOf(err).HTTPStatus()
}

// PublicMessage returns the response body message for err. Internal failures
// are masked so storage and provider details never leak to clients.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	return "something went wrong, please try again"
}

// IsCode reports whether err classifies as code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
