package fanin

import (
	"time"

	"github.com/kbukum/fanin/logger"
)

type options struct {
	name     string
	mode     Mode
	timeout  time.Duration
	log      *logger.Logger
	observer Observer
}

// Option configures a Coordinator.
type Option func(*options)

// WithMode sets the failure policy. The default is FailFast.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithTaskTimeout gives every task a deadline. When it expires before the
// task reports, the task is recorded as failed with TASK_TIMEOUT. Zero, the
// default, lets tasks run until they report.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger. The default is logger.Get("fanin").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver sets the observer notified of run and task events.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithName labels runs in logs, spans and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithConfig applies a Config. Invalid modes fall back to FailFast; call
// Config.Validate first to reject them.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.Name != "" {
			o.name = cfg.Name
		}
		if m, err := ParseMode(cfg.Mode); err == nil {
			o.mode = m
		}
		o.timeout = cfg.TaskTimeout
	}
}

func resolveOptions(opts []Option) options {
	o := options{
		name: "fanin",
		mode: FailFast,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mode != CollectAll {
		o.mode = FailFast
	}
	if o.timeout < 0 {
		o.timeout = 0
	}
	if o.log == nil {
		o.log = logger.Get("fanin")
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	return o
}
