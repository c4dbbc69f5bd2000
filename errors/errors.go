package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the unified error type for coordinator and task failures.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the failed operation can be retried by its owner.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code when the error is served.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Task errors ---

// TaskFailed creates a new AppError for a task that reported a failure.
func TaskFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTaskFailed, Message: fmt.Sprintf("task %s failed", key),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"task": key}, Cause: cause,
	}
}

// TaskTimeout creates a new AppError for a task that missed its deadline.
func TaskTimeout(key string, after time.Duration) *AppError {
	return &AppError{
		Code: ErrCodeTaskTimeout, Message: fmt.Sprintf("task %s did not complete within %s", key, after),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"task": key, "timeout_ms": after.Milliseconds()},
	}
}

// TaskPanic creates a new AppError for a task whose start function panicked.
func TaskPanic(key string, recovered any) *AppError {
	return &AppError{
		Code: ErrCodeTaskPanic, Message: fmt.Sprintf("task %s panicked: %v", key, recovered),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"task": key},
	}
}

// MultipleFailures creates a new AppError summarising a collect-all run with failures.
func MultipleFailures(failed, total int) *AppError {
	return &AppError{
		Code: ErrCodeMultipleFailures, Message: fmt.Sprintf("%d of %d tasks failed", failed, total),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"failed": failed, "total": total},
	}
}

// --- Coordination errors ---

// DuplicateCompletion creates a new AppError for a task that reported twice.
func DuplicateCompletion(key string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateCompletion, Message: fmt.Sprintf("task %s reported completion more than once", key),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"task": key},
	}
}

// Cancelled creates a new AppError for a run that was cancelled before finishing.
func Cancelled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "run cancelled before all tasks completed",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: false, Cause: cause,
	}
}

// --- Validation errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// DuplicateKey creates a new AppError for two tasks submitted under one key.
func DuplicateKey(key string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateKey, Message: fmt.Sprintf("task key %q is used more than once", key),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"task": key},
	}
}

// --- Upstream errors ---

// Upstream creates a new AppError for an upstream that answered with an error status.
func Upstream(name string, status int) *AppError {
	return &AppError{
		Code: ErrCodeUpstream, Message: fmt.Sprintf("upstream %s answered with status %d", name, status),
		HTTPStatus: http.StatusBadGateway, Retryable: status >= http.StatusInternalServerError,
		Details: map[string]any{"upstream": name, "status": status},
	}
}

// Unavailable creates a new AppError for an upstream that could not be reached.
func Unavailable(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUnavailable, Message: fmt.Sprintf("upstream %s is unavailable", name),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"upstream": name}, Cause: cause,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
