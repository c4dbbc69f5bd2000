package fanin

import (
	"fmt"
	"time"

	"github.com/kbukum/fanin/validation"
)

// Mode selects how failures end a run.
type Mode string

const (
	// FailFast fires the handler with the first failure and discards the rest.
	FailFast Mode = "fail_fast"
	// CollectAll waits for every task and reports all failures together.
	CollectAll Mode = "collect_all"
)

// ParseMode converts a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case FailFast, CollectAll:
		return Mode(s), nil
	case "":
		return FailFast, nil
	default:
		return "", fmt.Errorf("fanin: unknown mode %q", s)
	}
}

// Config is the file/env representation of coordinator options.
//
//	fanin:
//	  name: "upstreams"
//	  mode: "collect_all"
//	  task_timeout: "2s"
type Config struct {
	Name string `yaml:"name" mapstructure:"name"`
	Mode string `yaml:"mode" mapstructure:"mode" validate:"oneof=fail_fast collect_all"`
	// TaskTimeout is the per-task deadline; zero disables it.
	TaskTimeout time.Duration `yaml:"task_timeout" mapstructure:"task_timeout" validate:"gte=0"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "fanin"
	}
	if c.Mode == "" {
		c.Mode = string(FailFast)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
