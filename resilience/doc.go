// Package resilience provides caller-side fault handling for work that runs
// inside fan-in tasks: retry with exponential backoff and a circuit breaker.
//
// The coordinator never retries; a task that wants retries wraps its own
// work:
//
//	task := fanin.Func("users", func(ctx context.Context) (Body, error) {
//	    return resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) (Body, error) {
//	        return breaker.Call(ctx, fetchUsers)
//	    })
//	})
package resilience
