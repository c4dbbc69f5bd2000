package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fanin/fanin"
)

// Observer traces and measures fan-in runs. It implements fanin.Observer.
type Observer struct {
	tracer  trace.Tracer
	metrics *Metrics
}

var _ fanin.Observer = (*Observer)(nil)

// NewObserver creates an Observer recording spans on tracer and instruments
// on meter.
func NewObserver(tracer trace.Tracer, meter metric.Meter) (*Observer, error) {
	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Observer{tracer: tracer, metrics: m}, nil
}

func (o *Observer) RunStarted(ctx context.Context, run fanin.RunInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, SpanRun,
		trace.WithAttributes(runAttributes(run.ID, run.Name, string(run.Mode), run.Tasks)...),
	)
	o.metrics.RecordRunStart(ctx, run.Name)
	return ctx
}

func (o *Observer) TaskStarted(ctx context.Context, run fanin.RunInfo, key string) context.Context {
	ctx, _ = o.tracer.Start(ctx, SpanTask, trace.WithAttributes(
		attribute.String(AttrRunID, run.ID),
		attribute.String(AttrTaskKey, key),
	))
	return ctx
}

func (o *Observer) TaskFinished(ctx context.Context, run fanin.RunInfo, _ string, err error, elapsed time.Duration) {
	outcome := fanin.TaskLabel(err)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
	o.metrics.RecordTask(ctx, run.Name, outcome, elapsed)
}

func (o *Observer) TaskAbandoned(ctx context.Context, run fanin.RunInfo, _ string) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(AttrOutcome, fanin.LabelAbandoned))
	span.End()
	o.metrics.RecordTask(ctx, run.Name, fanin.LabelAbandoned, 0)
}

func (o *Observer) ReportRejected(ctx context.Context, run fanin.RunInfo, _ string, reason fanin.Rejection) {
	o.metrics.RecordRejected(ctx, run.Name, string(reason))
}

func (o *Observer) RunFinished(ctx context.Context, run fanin.RunInfo, state fanin.CompletionState, err error, elapsed time.Duration) {
	outcome := fanin.RunLabel(err)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrCompleted, state.Completed),
		attribute.Int(AttrFailed, state.Failed),
		attribute.Int(AttrLate, state.Late),
		attribute.Int(AttrDuplicate, state.Duplicates),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
	o.metrics.RecordRunEnd(ctx, run.Name, string(run.Mode), outcome, elapsed)
}
