// Package errors provides error code definitions shared across the core.
package errors

import "fmt"

// ErrorCode represents a unique error code that can be surfaced to the
// host application alongside a human-readable message.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Database errors
	ErrDatabase   ErrorCode = "DATABASE_ERROR"
	ErrConstraint ErrorCode = "CONSTRAINT_VIOLATION"

	// Schedule errors
	ErrTimeParse ErrorCode = "TIME_PARSE_ERROR"

	// Upload validation errors (rejected immediately, never queued)
	ErrUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	ErrPayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrEmptyPayload     ErrorCode = "EMPTY_PAYLOAD"

	// Sync errors
	ErrSyncNotConfigured ErrorCode = "SYNC_NOT_CONFIGURED"
	ErrSyncFailed        ErrorCode = "SYNC_FAILED"
	ErrSyncInProgress    ErrorCode = "SYNC_IN_PROGRESS"
	ErrSyncAuthFailed    ErrorCode = "SYNC_AUTH_FAILED"
	ErrRetryExhausted    ErrorCode = "RETRY_EXHAUSTED"
	ErrQueueClosed       ErrorCode = "QUEUE_CLOSED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// Code extracts the error code from an error, or ErrInternal when the
// error does not carry one.
func Code(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
