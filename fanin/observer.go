package fanin

import (
	"context"
	"time"
)

// RunInfo identifies a run to observers.
type RunInfo struct {
	ID    string
	Name  string
	Mode  Mode
	Tasks int
}

// Rejection says why a report was discarded.
type Rejection string

const (
	// RejectDuplicate marks a second report from the same task.
	RejectDuplicate Rejection = "duplicate"
	// RejectLate marks a first report that arrived after the run was
	// finalized or after the task's deadline.
	RejectLate Rejection = "late"
)

// Observer is notified of run and task events. Implementations must be safe
// for concurrent use and must not call back into the Run. Hooks are never
// called under the run's state lock. TaskFinished calls are delivered one at
// a time, and every task recorded before the run fired is delivered before
// RunFinished.
type Observer interface {
	// RunStarted is called before dispatch. The returned context becomes the
	// parent of every task context.
	RunStarted(ctx context.Context, run RunInfo) context.Context
	// TaskStarted is called before a task's start function. The returned
	// context is passed to the task.
	TaskStarted(ctx context.Context, run RunInfo, key string) context.Context
	// TaskFinished is called once per task whose outcome was recorded.
	TaskFinished(ctx context.Context, run RunInfo, key string, err error, elapsed time.Duration)
	// TaskAbandoned is called for tasks still pending when the run finalized.
	TaskAbandoned(ctx context.Context, run RunInfo, key string)
	// ReportRejected is called for every discarded report.
	ReportRejected(ctx context.Context, run RunInfo, key string, reason Rejection)
	// RunFinished is called once, before the handler.
	RunFinished(ctx context.Context, run RunInfo, state CompletionState, err error, elapsed time.Duration)
}

// NopObserver ignores every event. Embed it to implement a subset of hooks.
type NopObserver struct{}

func (NopObserver) RunStarted(ctx context.Context, _ RunInfo) context.Context { return ctx }
func (NopObserver) TaskStarted(ctx context.Context, _ RunInfo, _ string) context.Context {
	return ctx
}
func (NopObserver) TaskFinished(context.Context, RunInfo, string, error, time.Duration) {}
func (NopObserver) TaskAbandoned(context.Context, RunInfo, string)                     {}
func (NopObserver) ReportRejected(context.Context, RunInfo, string, Rejection)         {}
func (NopObserver) RunFinished(context.Context, RunInfo, CompletionState, error, time.Duration) {
}

// Observers combines several observers; contexts are threaded through them in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) RunStarted(ctx context.Context, run RunInfo) context.Context {
	for _, o := range m {
		ctx = o.RunStarted(ctx, run)
	}
	return ctx
}

func (m multiObserver) TaskStarted(ctx context.Context, run RunInfo, key string) context.Context {
	for _, o := range m {
		ctx = o.TaskStarted(ctx, run, key)
	}
	return ctx
}

func (m multiObserver) TaskFinished(ctx context.Context, run RunInfo, key string, err error, elapsed time.Duration) {
	for _, o := range m {
		o.TaskFinished(ctx, run, key, err, elapsed)
	}
}

func (m multiObserver) TaskAbandoned(ctx context.Context, run RunInfo, key string) {
	for _, o := range m {
		o.TaskAbandoned(ctx, run, key)
	}
}

func (m multiObserver) ReportRejected(ctx context.Context, run RunInfo, key string, reason Rejection) {
	for _, o := range m {
		o.ReportRejected(ctx, run, key, reason)
	}
}

func (m multiObserver) RunFinished(ctx context.Context, run RunInfo, state CompletionState, err error, elapsed time.Duration) {
	for _, o := range m {
		o.RunFinished(ctx, run, state, err, elapsed)
	}
}
