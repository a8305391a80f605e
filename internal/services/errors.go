package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by the services. Compare with errors.Is.
var (
	ErrTenantSelectorMissing = errors.New("tenant selector missing")
	ErrTenantNotFound        = errors.New("tenant not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserInactive          = errors.New("user inactive")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
)

// Internal causes of ErrInvalidCredentials. They are logged, never returned to clients.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// Error carries a kind, a client-safe message and an optional internal cause
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the kind as well as anything in the cause chain
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// Forbidden builds the error returned when a caller lacks every required permission
func Forbidden(message string) error {
	return newError(ErrForbidden, "%s", message)
}

// Unauthenticated builds the error returned when a credential is missing or rejected
func Unauthenticated(message string, cause error) error {
	return &Error{Kind: ErrUnauthenticated, Message: message, Cause: cause}
}

// TenantSelectorMissing is returned by the resolver when no tenant is named
func TenantSelectorMissing(header string) error {
	return newError(ErrTenantSelectorMissing, "%s header is required", header)
}

// ErrorMessage returns the client-safe message of err, or "" if err carries none
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and passes anything else through
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(format, args...)
	}
	return err
}

// conflictOr maps unique violations to a Conflict error and passes anything else through
func conflictOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...), Cause: err}
	}
	return err
}
