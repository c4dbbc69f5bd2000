package aggregator

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kbukum/fanin/config"
	"github.com/kbukum/fanin/fanin"
	"github.com/kbukum/fanin/logger"
	"github.com/kbukum/fanin/observability"
	"github.com/kbukum/fanin/prommetrics"
	"github.com/kbukum/fanin/server"
	"github.com/kbukum/fanin/version"
)

// ServiceName is the default service name and config directory.
const ServiceName = "aggregator"

// AppConfig is the full configuration of the aggregator binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	FanIn         fanin.Config         `yaml:"fanin" mapstructure:"fanin"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Aggregator    Config               `yaml:"aggregator" mapstructure:"aggregator"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies the defaults of every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	if c.FanIn.Name == "" {
		c.FanIn.Name = "aggregate"
	}
	c.FanIn.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Aggregator.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	return stderrors.Join(
		c.ServiceConfig.Validate(),
		c.FanIn.Validate(),
		c.Server.Validate(),
		c.Aggregator.Validate(),
		c.Observability.Validate(),
	)
}

// App wires the aggregator: telemetry, the coordinator, the upstream
// clients and the HTTP server.
type App struct {
	cfg      AppConfig
	log      *logger.Logger
	registry *prometheus.Registry
	service  *Service
	server   *server.Server
	shutdown func(context.Context) error
}

// NewApp builds the application from cfg. Defaults are applied to cfg first.
func NewApp(ctx context.Context, cfg AppConfig, log *logger.Logger) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promObs, err := prommetrics.New(reg, ServiceName)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	otelObs, err := observability.NewObserver(
		observability.Tracer(observability.TracerName),
		observability.Meter(observability.TracerName),
	)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	coord := fanin.New[Response](
		fanin.WithConfig(cfg.FanIn),
		fanin.WithLogger(log),
		fanin.WithObserver(fanin.Observers(promObs, otelObs)),
	)
	svc, err := NewService(cfg.Aggregator, coord, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, reg, svc)
	NewHandler(svc).Register(srv.GinEngine())

	return &App{
		cfg:      cfg,
		log:      log.WithComponent("app"),
		registry: reg,
		service:  svc,
		server:   srv,
		shutdown: shutdown,
	}, nil
}

// Config returns the effective configuration.
func (a *App) Config() AppConfig { return a.cfg }

// Service returns the aggregation service.
func (a *App) Service() *Service { return a.service }

// Handler returns the HTTP handler with middleware applied.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Addr returns the address the server listens on.
func (a *App) Addr() string { return a.server.Addr() }

// Start binds the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.log.Info("starting", logger.Fields(
		"upstreams", len(a.service.Upstreams()),
		logger.FieldMode, string(a.service.Mode()),
		"version", a.cfg.Version,
	))
	return a.server.Start(ctx)
}

// Stop shuts down the HTTP server and flushes telemetry.
func (a *App) Stop(ctx context.Context) error {
	return stderrors.Join(a.server.Stop(ctx), a.shutdown(ctx))
}

// Run starts the app and blocks until ctx is done, then stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		_ = a.shutdown(context.WithoutCancel(ctx))
		return err
	}
	<-ctx.Done()
	return a.Stop(context.WithoutCancel(ctx))
}
