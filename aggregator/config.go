package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/resilience"
	"github.com/kbukum/fanin/validation"
)

// Upstream is one endpoint queried on every aggregation.
type Upstream struct {
	Name string `yaml:"name" mapstructure:"name" json:"name" validate:"required"`
	URL  string `yaml:"url" mapstructure:"url" json:"url" validate:"required,http_url"`
}

// Config configures the upstreams and how they are called.
type Config struct {
	Upstreams []Upstream `yaml:"upstreams" mapstructure:"upstreams" validate:"unique=Name,dive"`
	// RequestTimeout bounds one attempt against one upstream.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout" validate:"gte=0"`
	// MaxBodySize caps the bytes kept from each upstream response.
	MaxBodySize int64                           `yaml:"max_body_size" mapstructure:"max_body_size" validate:"gte=0"`
	Retry       resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	Breaker     resilience.CircuitBreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 << 20
	}
	c.Retry.ApplyDefaults()
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = 30 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// ParseUpstreams parses "name=url" arguments as given to the fetch command.
func ParseUpstreams(args []string) ([]Upstream, error) {
	ups := make([]Upstream, 0, len(args))
	for i, arg := range args {
		name, url, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("upstreams[%d]", i), fmt.Sprintf("expected name=url, got %q", arg))
		}
		ups = append(ups, Upstream{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return ups, nil
}
