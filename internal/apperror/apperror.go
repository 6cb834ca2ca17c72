// Package apperror defines the error kinds shared by every layer.
//
// Each kind is a sentinel (ErrLookupFailed, ErrNotFound, ...) wrapped in an
// *AppError that carries the human-readable message. Callers match kinds with
// errors.Is and pull the message out with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrLookupFailed = errors.New("lookup failed")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
)

// LookupFailedMessage is the only text users ever see for an upstream failure.
// A missing user, a rate limit and an unreachable API all read the same.
const LookupFailedMessage = "user not found or API error"

type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable error message
	Field   string // optional: field causing the error
	Cause   error  // optional: underlying failure, for logs only
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// LookupFailed wraps any failure of the listing or metadata request.
// The username stays out of the error; callers log it.
func LookupFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrLookupFailed,
		Message: LookupFailedMessage,
		Field:   "username",
		Cause:   cause,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
