package resilience

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/fanin/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func(context.Context, int) (string, error) {
		callCount++
		return "success", nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_SucceedsAfterRetry(t *testing.T) {
	var attempts []int
	result, err := Retry(context.Background(), fastRetry(3), func(_ context.Context, attempt int) (string, error) {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return "", errors.Unavailable("users", nil)
		}
		return "success", nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if len(attempts) != 3 || attempts[2] != 3 {
		t.Errorf("expected attempts [1 2 3], got %v", attempts)
	}
}

func TestRetry_ExceedsMaxAttempts(t *testing.T) {
	callCount := 0
	testErr := stderrors.New("persistent error")
	_, err := Retry(context.Background(), fastRetry(3), func(context.Context, int) (string, error) {
		callCount++
		return "", testErr
	})
	if !stderrors.Is(err, testErr) {
		t.Errorf("expected testErr, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestRetry_DoesNotRetryNonRetryableAppError(t *testing.T) {
	callCount := 0
	_, err := Retry(context.Background(), fastRetry(5), func(context.Context, int) (string, error) {
		callCount++
		return "", errors.Upstream("users", http.StatusNotFound)
	})
	if callCount != 1 {
		t.Errorf("expected 1 call for a 4xx upstream error, got %d", callCount)
	}
	if !errors.HasCode(err, errors.ErrCodeUpstream) {
		t.Errorf("expected UPSTREAM_ERROR, got %v", err)
	}
}

func TestRetry_RetriesServerErrors(t *testing.T) {
	callCount := 0
	_, _ = Retry(context.Background(), fastRetry(3), func(context.Context, int) (string, error) {
		callCount++
		return "", errors.Upstream("users", http.StatusBadGateway)
	})
	if callCount != 3 {
		t.Errorf("expected 3 calls for a 5xx upstream error, got %d", callCount)
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: 100 * time.Millisecond, BackoffFactor: 2.0}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	callCount := 0
	lastErr := stderrors.New("error")
	_, err := Retry(ctx, cfg, func(context.Context, int) (string, error) {
		callCount++
		return "", lastErr
	})
	if !stderrors.Is(err, lastErr) {
		t.Errorf("expected the last attempt's error, got %v", err)
	}
	if callCount >= 10 {
		t.Errorf("expected fewer than 10 calls, got %d", callCount)
	}
}

func TestRetry_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, fastRetry(3), func(context.Context, int) (int, error) {
		t.Error("fn should not be called on a cancelled context")
		return 0, nil
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_RetryIfFilter(t *testing.T) {
	retryableErr := stderrors.New("retryable")
	nonRetryableErr := stderrors.New("non-retryable")
	cfg := fastRetry(3)
	cfg.RetryIf = func(err error) bool { return stderrors.Is(err, retryableErr) }

	callCount := 0
	_, _ = Retry(context.Background(), cfg, func(context.Context, int) (string, error) {
		callCount++
		return "", retryableErr
	})
	if callCount != 3 {
		t.Errorf("expected 3 calls for retryable error, got %d", callCount)
	}

	callCount = 0
	_, err := Retry(context.Background(), cfg, func(context.Context, int) (string, error) {
		callCount++
		return "", nonRetryableErr
	})
	if callCount != 1 {
		t.Errorf("expected 1 call for non-retryable error, got %d", callCount)
	}
	if !stderrors.Is(err, nonRetryableErr) {
		t.Errorf("expected nonRetryableErr, got %v", err)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var mu sync.Mutex
	var retries []int
	var waits []time.Duration
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error, backoff time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		retries = append(retries, attempt)
		waits = append(waits, backoff)
	}

	_, _ = Retry(context.Background(), cfg, func(context.Context, int) (string, error) {
		return "", stderrors.New("error")
	})

	mu.Lock()
	defer mu.Unlock()
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Fatalf("expected OnRetry for attempts [1 2], got %v", retries)
	}
	if waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond {
		t.Errorf("expected exponential waits [1ms 2ms], got %v", waits)
	}
}

func TestRetryFunc(t *testing.T) {
	callCount := 0
	err := RetryFunc(context.Background(), fastRetry(3), func(context.Context, int) error {
		callCount++
		if callCount < 2 {
			return stderrors.New("error")
		}
		return nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls, got %d", callCount)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", stderrors.New("x"), true},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"timeout", errors.TaskTimeout("a", time.Second), true},
		{"invalid input", errors.InvalidInput("f", "r"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultRetryIf(tc.err); got != tc.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNewBackOff_CapsAtMax(t *testing.T) {
	b := newBackOff(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	})
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Errorf("retry %d: expected %v, got %v", i+1, w, got)
		}
	}
}

func TestRetryConfigApplyDefaults(t *testing.T) {
	cfg := RetryConfig{}
	cfg.ApplyDefaults()
	if cfg.MaxAttempts != 3 || cfg.InitialBackoff != 100*time.Millisecond || cfg.RetryIf == nil {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Jitter != 0 {
		t.Errorf("expected zero jitter to be kept, got %v", cfg.Jitter)
	}
}
