package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/observability"
	"github.com/kbukum/fanin/resilience"
)

// Client is the HTTP client of one upstream.
type Client struct {
	httpClient *http.Client
	config     Config
	cb         *resilience.CircuitBreaker
	tracer     trace.Tracer
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		tracer: observability.Tracer(observability.TracerName),
	}

	if cfg.Retry != nil {
		retry := *cfg.Retry
		retry.ApplyDefaults()
		retry.RetryIf = retryIf(retry.RetryIf)
		c.config.Retry = &retry
	}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		cbCfg.Name = cfg.Name
		c.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	return c, nil
}

// Name returns the upstream name.
func (c *Client) Name() string { return c.config.Name }

// Breaker returns the circuit breaker, or nil when disabled.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.cb }

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client { return c.httpClient }

// Get fetches url.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url})
}

// Do executes req with retry and the circuit breaker and returns the
// complete response. On an error status the response is returned together
// with the UPSTREAM_ERROR.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ctx, span := c.tracer.Start(ctx, observability.SpanUpstream,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrUpstream, c.config.Name),
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL),
		))
	defer span.End()

	attempts := 0
	once := func(ctx context.Context, _ int) (*Response, error) {
		attempts++
		return c.doOnce(ctx, req)
	}

	var resp *Response
	var err error
	if c.config.Retry != nil {
		resp, err = resilience.Retry(ctx, *c.config.Retry, once)
	} else {
		resp, err = once(ctx, 1)
	}

	span.SetAttributes(attribute.Int("http.attempts", attempts))
	if resp != nil {
		resp.Attempts = attempts
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

// doOnce executes a single HTTP request through the circuit breaker.
func (c *Client) doOnce(ctx context.Context, req Request) (*Response, error) {
	if c.cb == nil {
		return c.executeRequest(ctx, req)
	}
	return resilience.Call(ctx, c.cb, func(ctx context.Context) (*Response, error) {
		return c.executeRequest(ctx, req)
	})
}

// executeRequest builds and sends the HTTP request.
func (c *Client) executeRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, connectionError(c.config.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodySize))
	if err != nil {
		return nil, connectionError(c.config.Name, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(c.config.Name, resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, http.NoBody)
	if err != nil {
		return nil, errors.InvalidInput("url", fmt.Sprintf("create request: %v", err))
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	return httpReq, nil
}
