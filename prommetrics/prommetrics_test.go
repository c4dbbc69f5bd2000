package prommetrics

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/fanin/fanin"
	"github.com/kbukum/fanin/logger"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(reg, "test"); err == nil {
		t.Error("expected a second registration under the same namespace to fail")
	}
}

func TestObserver_CollectAllRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New(reg, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := fanin.New[int](
		fanin.WithObserver(obs),
		fanin.WithName("upstreams"),
		fanin.WithMode(fanin.CollectAll),
		fanin.WithLogger(logger.Nop()),
	)

	reported := make(chan struct{})
	_, err = c.Execute(context.Background(), []fanin.Task[int]{
		fanin.Func("a", func(context.Context) (int, error) { return 1, nil }),
		fanin.Func("b", func(context.Context) (int, error) { return 0, fmt.Errorf("down") }),
		fanin.NewTask("c", func(_ context.Context, r fanin.Reporter[int]) {
			r.Succeed(3)
			r.Succeed(3)
			close(reported)
		}),
	})
	if err == nil {
		t.Fatal("expected collect-all failure")
	}
	<-reported

	if got := testutil.ToFloat64(obs.runs.WithLabelValues("upstreams", "collect_all", fanin.LabelFailed)); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(obs.tasks.WithLabelValues("upstreams", fanin.LabelOK)); got != 2 {
		t.Errorf("expected 2 ok tasks, got %v", got)
	}
	if got := testutil.ToFloat64(obs.tasks.WithLabelValues("upstreams", fanin.LabelFailed)); got != 1 {
		t.Errorf("expected 1 failed task, got %v", got)
	}
	if got := testutil.ToFloat64(obs.rejected.WithLabelValues("upstreams", string(fanin.RejectDuplicate))); got != 1 {
		t.Errorf("expected 1 duplicate report, got %v", got)
	}
	if got := testutil.ToFloat64(obs.active.WithLabelValues("upstreams")); got != 0 {
		t.Errorf("expected no active runs, got %v", got)
	}
}

func TestObserver_ExpositionFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New(reg, "agg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := fanin.New[int](fanin.WithObserver(obs), fanin.WithName("x"), fanin.WithLogger(logger.Nop()))
	if _, err := c.Execute(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `
# HELP agg_fanin_runs_total Finalized fan-in runs by outcome.
# TYPE agg_fanin_runs_total counter
agg_fanin_runs_total{mode="fail_fast",outcome="ok",run="x"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "agg_fanin_runs_total"); err != nil {
		t.Errorf("unexpected exposition: %v", err)
	}
}
