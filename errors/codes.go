package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Task outcome errors
const (
	// ErrCodeTaskFailed indicates a task reported a failure.
	ErrCodeTaskFailed ErrorCode = "TASK_FAILED"
	// ErrCodeTaskTimeout indicates a task did not report before its deadline.
	ErrCodeTaskTimeout ErrorCode = "TASK_TIMEOUT"
	// ErrCodeTaskPanic indicates a task's start function panicked.
	ErrCodeTaskPanic ErrorCode = "TASK_PANIC"
	// ErrCodeMultipleFailures indicates more than one task failed in a collect-all run.
	ErrCodeMultipleFailures ErrorCode = "MULTIPLE_FAILURES"
)

// Coordination errors
const (
	// ErrCodeDuplicateCompletion indicates a task reported completion more than once.
	ErrCodeDuplicateCompletion ErrorCode = "DUPLICATE_COMPLETION"
	// ErrCodeCancelled indicates the run was cancelled before it finished.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeDuplicateKey indicates two tasks share the same key.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Upstream errors
const (
	// ErrCodeUpstream indicates an upstream dependency returned an error.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrCodeUnavailable indicates an upstream dependency could not be reached.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTaskTimeout: true,
	ErrCodeUpstream:    true,
	ErrCodeUnavailable: true,
	ErrCodeTaskPanic:   false,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
