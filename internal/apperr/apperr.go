// Package apperr defines the error kinds shared by the domain services and
// translated to HTTP responses by the api package.
package apperr

import "errors"

// Error kinds. Any error that does not wrap one of these is treated as an
// unexpected server error.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries a caller-facing message alongside its kind.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// ConflictCode is Conflict with a machine-readable code other than "conflict".
func ConflictCode(code, msg string) error {
	return &Error{Kind: ErrConflict, Code: code, Message: msg}
}

func Invalid(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

// Message returns the caller-facing message of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// Code returns the explicit code attached to err, if any.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
