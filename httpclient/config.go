package httpclient

import (
	"time"

	"github.com/kbukum/fanin/resilience"
	"github.com/kbukum/fanin/validation"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 1 << 20
)

// Config configures the HTTP client of one upstream.
type Config struct {
	// Name identifies the upstream in errors, spans and the circuit breaker.
	Name string `validate:"required"`

	// Timeout bounds one attempt. Defaults to 30s.
	Timeout time.Duration `validate:"gte=0"`

	// MaxBodySize caps the bytes read from a response. Defaults to 1MB.
	MaxBodySize int64 `validate:"gte=0"`

	// Headers are default headers applied to all requests.
	Headers map[string]string

	// UserAgent is sent when set.
	UserAgent string

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
