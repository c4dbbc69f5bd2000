// Package prommetrics exposes fan-in runs as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	obs, err := prommetrics.New(reg, "aggregator")
//	c := fanin.New[T](fanin.WithObserver(obs))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prommetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/fanin/fanin"
)

// Observer records fan-in runs on Prometheus collectors. It implements
// fanin.Observer.
type Observer struct {
	fanin.NopObserver

	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	active       *prometheus.GaugeVec
	tasks        *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	rejected     *prometheus.CounterVec
}

var _ fanin.Observer = (*Observer)(nil)

// New creates the collectors under namespace and registers them on reg.
func New(reg prometheus.Registerer, namespace string) (*Observer, error) {
	o := &Observer{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "runs_total",
			Help: "Finalized fan-in runs by outcome.",
		}, []string{"run", "mode", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "run_duration_seconds",
			Help:    "Time from dispatch to finalization.",
			Buckets: prometheus.DefBuckets,
		}, []string{"run", "outcome"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "runs_active",
			Help: "Runs dispatched and not yet finalized.",
		}, []string{"run"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "tasks_total",
			Help: "Tasks by outcome.",
		}, []string{"run", "outcome"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "task_duration_seconds",
			Help:    "Time from dispatch to the recorded outcome of a task.",
			Buckets: prometheus.DefBuckets,
		}, []string{"run", "outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "fanin", Name: "reports_rejected_total",
			Help: "Duplicate and late task reports.",
		}, []string{"run", "reason"}),
	}

	for _, c := range []prometheus.Collector{o.runs, o.runDuration, o.active, o.tasks, o.taskDuration, o.rejected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) RunStarted(ctx context.Context, run fanin.RunInfo) context.Context {
	o.active.WithLabelValues(run.Name).Inc()
	return ctx
}

func (o *Observer) TaskFinished(_ context.Context, run fanin.RunInfo, _ string, err error, elapsed time.Duration) {
	outcome := fanin.TaskLabel(err)
	o.tasks.WithLabelValues(run.Name, outcome).Inc()
	o.taskDuration.WithLabelValues(run.Name, outcome).Observe(elapsed.Seconds())
}

func (o *Observer) TaskAbandoned(_ context.Context, run fanin.RunInfo, _ string) {
	o.tasks.WithLabelValues(run.Name, fanin.LabelAbandoned).Inc()
}

func (o *Observer) ReportRejected(_ context.Context, run fanin.RunInfo, _ string, reason fanin.Rejection) {
	o.rejected.WithLabelValues(run.Name, string(reason)).Inc()
}

func (o *Observer) RunFinished(_ context.Context, run fanin.RunInfo, _ fanin.CompletionState, err error, elapsed time.Duration) {
	outcome := fanin.RunLabel(err)
	o.active.WithLabelValues(run.Name).Dec()
	o.runs.WithLabelValues(run.Name, string(run.Mode), outcome).Inc()
	o.runDuration.WithLabelValues(run.Name, outcome).Observe(elapsed.Seconds())
}
