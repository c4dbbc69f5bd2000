package fanin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/logger"
	"github.com/kbukum/fanin/validation"
)

// Handler is the continuation of a run. It is called exactly once per run.
//
//   - all tasks succeeded: (results, nil)
//   - FailFast, first failure: (nil, *TaskFailure)
//   - CollectAll with failures: (results, *Failures)
//   - cancelled: (nil, CANCELLED AppError)
//
// A panic in the handler is not recovered. It unwinds the goroutine that
// finalized the run after Done has been closed.
type Handler[T any] func(results *ResultSet[T], err error)

// Coordinator runs fixed sets of tasks and joins their outcomes into one
// continuation. A Coordinator holds only configuration and may start any
// number of concurrent runs.
type Coordinator[T any] struct {
	opts options
}

// New creates a Coordinator.
func New[T any](opts ...Option) *Coordinator[T] {
	return &Coordinator[T]{opts: resolveOptions(opts)}
}

// Mode returns the failure policy of the coordinator.
func (c *Coordinator[T]) Mode() Mode { return c.opts.mode }

// Start validates tasks and dispatches each of them on its own goroutine.
// Invalid input returns an error and dispatches nothing; the handler is not
// called. Otherwise handler is called exactly once. With zero tasks it is
// called before Start returns. handler may be nil when the caller uses
// Run.Wait instead.
func (c *Coordinator[T]) Start(ctx context.Context, tasks []Task[T], handler Handler[T]) (*Run[T], error) {
	if err := validateTasks(tasks); err != nil {
		return nil, err
	}

	r := c.newRun(len(tasks), handler)
	spanCtx := c.opts.observer.RunStarted(ctx, r.info)
	r.obsCtx = context.WithoutCancel(spanCtx)
	runCtx, cancel := context.WithCancel(spanCtx)
	r.cancel = cancel

	r.log.Debug("run started", logger.Fields(logger.FieldDispatched, len(tasks)))

	if len(tasks) == 0 {
		r.finishEmpty()
		return r, nil
	}
	if ctx.Err() != nil {
		r.abort(context.Cause(ctx))
		return r, nil
	}

	slots := r.prepare(runCtx, tasks)
	context.AfterFunc(runCtx, func() { r.abort(context.Cause(runCtx)) })
	for i, t := range tasks {
		go r.dispatch(t, slots[i])
	}
	return r, nil
}

// Execute runs tasks and blocks until the run is finalized. Cancelling ctx
// ends the run with a CANCELLED error.
func (c *Coordinator[T]) Execute(ctx context.Context, tasks []Task[T]) (*ResultSet[T], error) {
	r, err := c.Start(ctx, tasks, nil)
	if err != nil {
		return nil, err
	}
	return r.Wait()
}

func (c *Coordinator[T]) newRun(n int, handler Handler[T]) *Run[T] {
	id := uuid.NewString()
	info := RunInfo{ID: id, Name: c.opts.name, Mode: c.opts.mode, Tasks: n}
	return &Run[T]{
		info:     info,
		timeout:  c.opts.timeout,
		observer: c.opts.observer,
		handler:  handler,
		log: c.opts.log.WithComponent("fanin").WithFields(logger.Fields(
			logger.FieldRunID, id,
			logger.FieldRunName, c.opts.name,
			logger.FieldMode, string(c.opts.mode),
		)),
		started: time.Now(),
		slots:   make(map[string]*slot, n),
		results: newResultSet[T](n),
		done:    make(chan struct{}),
	}
}

func validateTasks[T any](tasks []Task[T]) error {
	v := validation.New()
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		v.Required(field+".key", t.Key)
		v.NotNil(field+".start", t.Start != nil)
		if t.Key == "" {
			continue
		}
		if _, dup := seen[t.Key]; dup {
			return errors.DuplicateKey(t.Key)
		}
		seen[t.Key] = struct{}{}
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
