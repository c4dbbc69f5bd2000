package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/resilience"
)

func fastRetry() *resilience.RetryConfig {
	return &resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != "fanin-test/1" {
			t.Errorf("expected user agent, got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Tenant") != "acme" {
			t.Errorf("expected default header, got %q", r.Header.Get("X-Tenant"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "Alice"})
	}))
	defer srv.Close()

	c, err := New(Config{Name: "users", UserAgent: "fanin-test/1", Headers: map[string]string{"X-Tenant": "acme"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Get(context.Background(), srv.URL+"/users/123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if resp.ContentType() != "application/json" {
		t.Errorf("expected JSON content type, got %q", resp.ContentType())
	}
	if !strings.Contains(string(resp.Body), "Alice") {
		t.Errorf("response body should contain Alice, got %s", string(resp.Body))
	}
	if resp.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", resp.Attempts)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := New(Config{Name: "users"})
	resp, err := c.Get(context.Background(), srv.URL)
	if !errors.HasCode(err, errors.ErrCodeUpstream) {
		t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected the 404 response alongside the error, got %+v", resp)
	}
	appErr, _ := errors.AsAppError(err)
	if !strings.Contains(appErr.Details["body"].(string), "no such user") {
		t.Errorf("expected body in details, got %v", appErr.Details)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Name: "users", Retry: fastRetry()})
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Attempts != 3 || calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d (server saw %d)", resp.Attempts, calls.Load())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := New(Config{Name: "users", Retry: fastRetry()})
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected an error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestClient_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(Config{
		Name:           "users",
		Retry:          fastRetry(),
		CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute},
	})

	_, err := c.Get(context.Background(), srv.URL)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected the third attempt to hit the open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls before the circuit opened, got %d", calls.Load())
	}
	if c.Breaker().State() != resilience.StateOpen {
		t.Errorf("expected open circuit, got %s", c.Breaker().State())
	}
	if c.Breaker().Name() != "users" {
		t.Errorf("expected breaker named after the upstream, got %q", c.Breaker().Name())
	}

	_, err = c.Get(context.Background(), srv.URL)
	if !errors.HasCode(err, errors.ErrCodeUnavailable) || calls.Load() != 2 {
		t.Errorf("expected UNAVAILABLE without calling the upstream, got %v after %d calls", err, calls.Load())
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := New(Config{Name: "users"})
	_, err := c.Get(context.Background(), url)
	if !errors.HasCode(err, errors.ErrCodeUnavailable) {
		t.Errorf("expected UNAVAILABLE, got %v", err)
	}
}

func TestClient_ContextCancelStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c, _ := New(Config{Name: "users", Retry: &resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond}})
	resp, err := c.Do(ctx, Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected an error")
	}
	if resp != nil {
		t.Errorf("expected no response, got %+v", resp)
	}
	if errors.IsRetryable(err) {
		t.Errorf("expected a cancelled request not to be retryable, got %v", err)
	}
}

func TestClient_TruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c, _ := New(Config{Name: "users", MaxBodySize: 10})
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Body) != 10 {
		t.Errorf("expected 10 bytes, got %d", len(resp.Body))
	}
}

func TestClient_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(Config{Name: "orders"})
	_, _ = c.Get(context.Background(), srv.URL)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "upstream.fetch" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	found := false
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == "upstream.name" && kv.Value.AsString() == "orders" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected upstream.name attribute, got %v", spans[0].Attributes())
	}
	if spans[0].Status().Code.String() != "Error" {
		t.Errorf("expected error status, got %v", spans[0].Status())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for a nameless client, got %v", err)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	c, _ := New(Config{Name: "users"})
	if _, err := c.Get(context.Background(), "://bad"); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
