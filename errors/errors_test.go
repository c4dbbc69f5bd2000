package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeDuplicateKey, "dup", http.StatusBadRequest)
	if err.Code != ErrCodeDuplicateKey {
		t.Errorf("expected code %s, got %s", ErrCodeDuplicateKey, err.Code)
	}
	if err.Message != "dup" {
		t.Errorf("expected message 'dup', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("DUPLICATE_KEY should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTaskTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TASK_TIMEOUT should be retryable")
	}
}

func TestAppError_TaskFailed_Success(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := TaskFailed("b", cause)
	if err.Code != ErrCodeTaskFailed {
		t.Errorf("expected TASK_FAILED, got %s", err.Code)
	}
	if err.Details["task"] != "b" {
		t.Errorf("expected task=b, got %v", err.Details["task"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_TaskTimeout_Success(t *testing.T) {
	err := TaskTimeout("slow", 250*time.Millisecond)
	if err.Code != ErrCodeTaskTimeout {
		t.Errorf("expected TASK_TIMEOUT, got %s", err.Code)
	}
	if err.Details["timeout_ms"] != int64(250) {
		t.Errorf("expected timeout_ms=250, got %v", err.Details["timeout_ms"])
	}
	if !strings.Contains(err.Message, "250ms") {
		t.Errorf("expected message to mention the deadline, got %q", err.Message)
	}
}

func TestAppError_TaskPanic_Success(t *testing.T) {
	err := TaskPanic("k", "boom")
	if err.Code != ErrCodeTaskPanic {
		t.Errorf("expected TASK_PANIC, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "boom") {
		t.Errorf("expected panic value in message, got %q", err.Message)
	}
	if err.Retryable {
		t.Error("TASK_PANIC should not be retryable")
	}
}

func TestAppError_Cancelled_WrapsContextError(t *testing.T) {
	err := Cancelled(context.Canceled)
	if !stderrors.Is(err, context.Canceled) {
		t.Error("expected Cancelled to unwrap to context.Canceled")
	}
	if err.Code != ErrCodeCancelled {
		t.Errorf("expected CANCELLED, got %s", err.Code)
	}
}

func TestAppError_InvalidInput_Success(t *testing.T) {
	err := InvalidInput("tasks[0].start", "must not be nil")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Details["field"] != "tasks[0].start" {
		t.Errorf("expected field=tasks[0].start, got %v", err.Details["field"])
	}
}

func TestAppError_InvalidInput_EmptyField(t *testing.T) {
	err := InvalidInput("", "bad")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
}

func TestAppError_Upstream_RetryableOnServerError(t *testing.T) {
	if !Upstream("users", http.StatusBadGateway).Retryable {
		t.Error("5xx upstream errors should be retryable")
	}
	if Upstream("users", http.StatusNotFound).Retryable {
		t.Error("4xx upstream errors should not be retryable")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := DuplicateKey("a").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	s := DuplicateCompletion("c").Error()
	if !strings.Contains(s, "DUPLICATE_COMPLETION") {
		t.Errorf("expected error string to contain code, got %q", s)
	}
	if !strings.Contains(s, "more than once") {
		t.Errorf("expected error string to contain message, got %q", s)
	}
}

func TestErrorCode_IsRetryableCode(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeTaskTimeout, ErrCodeUpstream, ErrCodeUnavailable} {
		if !IsRetryableCode(code) {
			t.Errorf("expected %s to be retryable", code)
		}
	}
	for _, code := range []ErrorCode{ErrCodeTaskPanic, ErrCodeInvalidInput, ErrCodeDuplicateKey, ErrCodeCancelled, ErrCodeInternal} {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := MultipleFailures(2, 3).ToResponse()
	if resp.Error.Code != ErrCodeMultipleFailures {
		t.Errorf("expected MULTIPLE_FAILURES in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["failed"] != 2 {
		t.Errorf("expected failed=2 in response details, got %v", resp.Error.Details["failed"])
	}
}

func TestAppError_IsAppError_Success(t *testing.T) {
	appErr := TaskPanic("x", "p")
	if !IsAppError(appErr) {
		t.Error("expected IsAppError to return true for AppError")
	}
	if !IsAppError(fmt.Errorf("wrapped: %w", appErr)) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}
	if IsAppError(fmt.Errorf("plain error")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", TaskTimeout("a", time.Second))
	if !HasCode(err, ErrCodeTaskTimeout) {
		t.Error("expected HasCode to find TASK_TIMEOUT through wrapping")
	}
	if HasCode(err, ErrCodeTaskPanic) {
		t.Error("expected HasCode to reject a different code")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("expected HasCode to be false for plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("network blip")) {
		t.Error("plain errors should be treated as retryable")
	}
	if IsRetryable(InvalidInput("x", "y")) {
		t.Error("INVALID_INPUT should not be retryable")
	}
	if !IsRetryable(Unavailable("svc", nil)) {
		t.Error("UNAVAILABLE should be retryable")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrap_AppErrorPassthrough(t *testing.T) {
	orig := DuplicateKey("a")
	if got := Wrap(fmt.Errorf("outer: %w", orig)); got != orig {
		t.Error("Wrap should return the wrapped AppError unchanged")
	}
}

func TestWrap_PlainError(t *testing.T) {
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
