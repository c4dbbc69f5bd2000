package httpclient

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/resilience"
)

const maxErrorBody = 512

// ClassifyStatusCode converts an HTTP status code into an UPSTREAM_ERROR.
// Returns nil for 2xx status codes. Server errors and 429 are retryable.
func ClassifyStatusCode(name string, statusCode int, body []byte) *errors.AppError {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	appErr := errors.Upstream(name, statusCode)
	if statusCode == http.StatusTooManyRequests {
		appErr.Retryable = true
	}
	if len(body) > 0 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		appErr.WithDetail("body", string(body))
	}
	return appErr
}

// connectionError wraps a transport failure. Context errors stay in the
// chain so retries stop once the caller gives up.
func connectionError(name string, err error) *errors.AppError {
	appErr := errors.Unavailable(name, err)
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		appErr.Retryable = false
	}
	return appErr
}

// IsCircuitOpen reports whether err was returned without calling the
// upstream because its circuit is open.
func IsCircuitOpen(err error) bool {
	return stderrors.Is(err, resilience.ErrCircuitOpen)
}

// retryIf retries what the default policy retries, except open circuits.
func retryIf(next func(error) bool) func(error) bool {
	return func(err error) bool {
		return !IsCircuitOpen(err) && next(err)
	}
}
