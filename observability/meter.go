package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/fanin/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	// Insecure allows plain HTTP to the collector.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global meter provider with a periodic OTLP HTTP
// exporter. The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instrument names.
const (
	MetricRuns         = "fanin.runs"
	MetricRunDuration  = "fanin.run.duration"
	MetricRunsActive   = "fanin.runs.active"
	MetricTasks        = "fanin.tasks"
	MetricTaskDuration = "fanin.task.duration"
	MetricRejected     = "fanin.reports.rejected"
)

// Metrics holds the fan-in instruments.
//
//	fanin.runs              counter    name, mode, outcome
//	fanin.run.duration      histogram  name, mode, outcome (seconds)
//	fanin.runs.active       updown     name
//	fanin.tasks             counter    name, outcome
//	fanin.task.duration     histogram  name, outcome (seconds)
//	fanin.reports.rejected  counter    name, reason
type Metrics struct {
	runs         metric.Int64Counter
	runDuration  metric.Float64Histogram
	runsActive   metric.Int64UpDownCounter
	tasks        metric.Int64Counter
	taskDuration metric.Float64Histogram
	rejected     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter(MetricRuns,
		metric.WithDescription("Finalized fan-in runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRuns, err)
	}

	runDuration, err := meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Time from dispatch to finalization"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRunDuration, err)
	}

	runsActive, err := meter.Int64UpDownCounter(MetricRunsActive,
		metric.WithDescription("Runs dispatched and not yet finalized"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRunsActive, err)
	}

	tasks, err := meter.Int64Counter(MetricTasks,
		metric.WithDescription("Tasks by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricTasks, err)
	}

	taskDuration, err := meter.Float64Histogram(MetricTaskDuration,
		metric.WithDescription("Time from dispatch to the recorded outcome of a task"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricTaskDuration, err)
	}

	rejected, err := meter.Int64Counter(MetricRejected,
		metric.WithDescription("Duplicate and late task reports"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRejected, err)
	}

	return &Metrics{
		runs:         runs,
		runDuration:  runDuration,
		runsActive:   runsActive,
		tasks:        tasks,
		taskDuration: taskDuration,
		rejected:     rejected,
	}, nil
}

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context, name string) {
	m.runsActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrRunName, name)))
}

// RecordRunEnd decrements the active runs and records the finalized run.
func (m *Metrics) RecordRunEnd(ctx context.Context, name, mode, outcome string, duration time.Duration) {
	m.runsActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrRunName, name)))
	attrs := metric.WithAttributes(
		attribute.String(AttrRunName, name),
		attribute.String(AttrMode, mode),
		attribute.String(AttrOutcome, outcome),
	)
	m.runs.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTask records the outcome of one task. Abandoned tasks have no duration.
func (m *Metrics) RecordTask(ctx context.Context, name, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrRunName, name),
		attribute.String(AttrOutcome, outcome),
	)
	m.tasks.Add(ctx, 1, attrs)
	if duration > 0 {
		m.taskDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordRejected records a discarded report.
func (m *Metrics) RecordRejected(ctx context.Context, name, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrRunName, name),
		attribute.String("reason", reason),
	))
}
