// Package httpclient fetches upstream URLs with retry, a circuit breaker and
// a span per call. Every failure is an *errors.AppError: UPSTREAM_ERROR for
// an error status, UNAVAILABLE when the upstream could not be reached or its
// circuit is open.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:           "users",
//	    Timeout:        5 * time.Second,
//	    Retry:          &retryCfg,
//	    CircuitBreaker: &breakerCfg,
//	})
//	resp, err := client.Get(ctx, "http://users.internal/v1/users")
package httpclient
