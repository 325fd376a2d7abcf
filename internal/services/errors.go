package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers translate to transport status codes. Services
// never leak store internals past these; handlers match with errors.Is or
// errors.As, not by message.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken signals a registration against an email already in use.
	ErrEmailTaken = errors.New("email already in use")

	// ErrNotAdmin signals an authenticated caller without the admin flag.
	ErrNotAdmin = errors.New("admin privileges required")

	// ErrNotFound signals a missing record on a read path.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
