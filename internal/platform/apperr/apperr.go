// Package apperr defines the error taxonomy shared by services, middleware
// and handlers. Every Error carries the HTTP status it should surface as,
// so handlers translate service failures without inspecting messages.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a classified application error.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input (400).
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized reports bad credentials, an invalid or expired token, or a
// blocked account (401).
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports an authenticated but disallowed request (403).
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// NotFound reports a missing resource (404).
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict reports a uniqueness violation (409).
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Internal wraps an unclassified failure (500).
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// From extracts an *Error from err's chain, or nil if none is present.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
