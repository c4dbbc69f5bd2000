// Package observability wires OpenTelemetry tracing and metrics into fan-in
// runs.
//
// Setup:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "aggregator", version.GetVersion())
//	defer shutdown(context.Background())
//
// Instrumenting a coordinator:
//
//	obs, err := observability.NewObserver(observability.Tracer(observability.TracerName), observability.Meter(observability.TracerName))
//	c := fanin.New[Response](fanin.WithObserver(obs))
//
// Every run becomes a "fanin.run" span with one "fanin.task" child span per
// task, and feeds the instruments described on Metrics.
package observability
