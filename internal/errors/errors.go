package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Validation
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Capability dispatch
	ErrCodeUnknownCapability ErrorCode = "UNKNOWN_CAPABILITY"
	ErrCodeInvalidArguments  ErrorCode = "INVALID_ARGUMENTS"

	// Storage
	ErrCodeTransientStore   ErrorCode = "TRANSIENT_STORE_ERROR"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Upstream collaborators
	ErrCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeExternal        ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func UnknownCapability(name string) *AppError {
	return New(ErrCodeUnknownCapability, fmt.Sprintf("Unknown capability: %s", name))
}

func InvalidArguments(message string) *AppError {
	return New(ErrCodeInvalidArguments, message)
}

// TransientStore marks a database failure the caller may treat as retryable.
func TransientStore(cause error) *AppError {
	return Wrap(ErrCodeTransientStore, "Storage temporarily unavailable", cause)
}

// StoreUnavailable marks the conversation store as unreachable.
func StoreUnavailable(cause error) *AppError {
	return Wrap(ErrCodeStoreUnavailable, "Conversation store unavailable", cause)
}

func UpstreamTimeout(service string) *AppError {
	return New(ErrCodeUpstreamTimeout, fmt.Sprintf("%s did not respond in time", service))
}

func External(service string, cause error) *AppError {
	return Wrap(ErrCodeExternal, fmt.Sprintf("External service error: %s", service), cause)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
