package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
)

// Session cookie decode outcomes. Both are absorbed into "no session" at the
// request boundary; they stay distinct so tests and logs can tell structure
// problems from integrity problems.
var (
	ErrMalformedSession = errors.New("malformed session payload")
	ErrTamperedSession  = errors.New("session integrity check failed")
)

// Key material and token errors.
var (
	ErrKeyStore     = errors.New("key store failure")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// One-time verification code errors.
var (
	ErrCodeAlreadyIssued = errors.New("verification code already issued")
	ErrCodeDelivery      = errors.New("verification code delivery failed")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
