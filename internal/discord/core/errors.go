package core

import (
	"errors"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// HandlerError represents an error that occurred during handler execution
type HandlerError struct {
	// The underlying error
	Err error

	// User-friendly message to display
	UserMessage string

	// Whether this error should be shown to the user
	ShowToUser bool

	// HTTP-like status code for categorization
	Code int
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrorCodeBadRequest    = 400
	ErrorCodeUnauthorized  = 401
	ErrorCodeForbidden     = 403
	ErrorCodeNotFound      = 404
	ErrorCodeConflict      = 409
	ErrorCodeUnprocessable = 422
	ErrorCodeInternal      = 500
	ErrorCodeUnavailable   = 503
)

// NewHandlerError creates a new handler error
func NewHandlerError(err error, userMessage string, code int) *HandlerError {
	return &HandlerError{
		Err:         err,
		UserMessage: userMessage,
		ShowToUser:  true,
		Code:        code,
	}
}

// NewInternalError creates an internal error whose cause stays out of the reply
func NewInternalError(err error) *HandlerError {
	return &HandlerError{
		Err:         err,
		UserMessage: "An internal error occurred. Please try again later.",
		ShowToUser:  true,
		Code:        ErrorCodeInternal,
	}
}

// NewUserError creates an error with a user-friendly message
func NewUserError(message string, code int) *HandlerError {
	return &HandlerError{
		UserMessage: message,
		ShowToUser:  true,
		Code:        code,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *HandlerError {
	return NewUserError(resource+" not found", ErrorCodeNotFound)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *HandlerError {
	return NewUserError(message, ErrorCodeForbidden)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *HandlerError {
	return NewUserError(message, ErrorCodeBadRequest)
}

// FromError converts any error into a HandlerError. Application error codes
// choose the status and whether the innermost message is safe to show.
func FromError(err error) *HandlerError {
	if err == nil {
		return nil
	}

	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	message := apperr.RootMessage(err)
	switch apperr.GetCode(err) {
	case apperr.CodeInvalidArgument:
		return NewHandlerError(err, message, ErrorCodeBadRequest)
	case apperr.CodeValidation:
		return NewHandlerError(err, message, ErrorCodeUnprocessable)
	case apperr.CodeUnauthenticated:
		return NewHandlerError(err, "Please sign in again and retry.", ErrorCodeUnauthorized)
	case apperr.CodePermissionDenied:
		return NewHandlerError(err, message, ErrorCodeForbidden)
	case apperr.CodeNotFound:
		return NewHandlerError(err, message, ErrorCodeNotFound)
	case apperr.CodeAlreadyExists, apperr.CodeFailedPrecondition, apperr.CodeInvalidStepMutation:
		return NewHandlerError(err, message, ErrorCodeConflict)
	case apperr.CodeUnavailable:
		return NewHandlerError(err, "The profile store is unavailable right now. Your answers are kept; try again in a moment.", ErrorCodeUnavailable)
	default:
		return NewInternalError(err)
	}
}
