package fanin

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/logger"
)

type source uint8

const (
	fromReporter source = iota
	fromPanic
	fromDeadline
)

// slot tracks one dispatched task.
type slot struct {
	key    string
	ctx    context.Context
	obsCtx context.Context
	cancel context.CancelFunc
	// deadline is the cause the task context carries when its timeout fires.
	deadline *errors.AppError

	// reported is set by the first call to the task's Reporter.
	reported bool
	// settled is set once an outcome is recorded for the key.
	settled bool
}

// Run is one execution of a set of tasks.
type Run[T any] struct {
	info     RunInfo
	timeout  time.Duration
	log      *logger.Logger
	observer Observer
	handler  Handler[T]
	started  time.Time
	obsCtx   context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	state    CompletionState
	slots    map[string]*slot
	results  *ResultSet[T]
	failures []*TaskFailure
	final    *ResultSet[T]
	err      error

	// finished queues TaskFinished calls in settle order. hookMu serializes
	// their delivery so finish can flush them ahead of RunFinished.
	finished []finishedTask
	hookMu   sync.Mutex

	done            chan struct{}
	handlerPanicked atomic.Bool
}

// ID returns the unique identifier of the run.
func (r *Run[T]) ID() string { return r.info.ID }

// Info returns the identity of the run as seen by observers.
func (r *Run[T]) Info() RunInfo { return r.info }

// Done is closed after the run is finalized and the handler has returned
// or panicked.
func (r *Run[T]) Done() <-chan struct{} { return r.done }

// Wait blocks until the run is finalized and returns what the handler got.
func (r *Run[T]) Wait() (*ResultSet[T], error) {
	<-r.done
	return r.final, r.err
}

// Cancel finalizes the run with a CANCELLED error if it has not fired yet.
// The handler then runs on the calling goroutine. Task contexts are cancelled.
func (r *Run[T]) Cancel() {
	r.abort(context.Canceled)
}

// State returns a snapshot of the run's counters.
func (r *Run[T]) State() CompletionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// prepare builds every slot and sets the dispatch count before any task can
// report.
func (r *Run[T]) prepare(runCtx context.Context, tasks []Task[T]) []*slot {
	slots := make([]*slot, len(tasks))
	for i, t := range tasks {
		taskCtx := r.observer.TaskStarted(runCtx, r.info, t.Key)
		s := &slot{key: t.Key, obsCtx: context.WithoutCancel(taskCtx)}
		if r.timeout > 0 {
			s.deadline = errors.TaskTimeout(t.Key, r.timeout)
			s.ctx, s.cancel = context.WithTimeoutCause(taskCtx, r.timeout, s.deadline)
		} else {
			s.ctx, s.cancel = context.WithCancel(taskCtx)
		}
		slots[i] = s
	}

	r.mu.Lock()
	for _, s := range slots {
		r.slots[s.key] = s
	}
	r.state.Dispatched = len(slots)
	r.mu.Unlock()

	if r.timeout > 0 {
		for _, s := range slots {
			context.AfterFunc(s.ctx, func() {
				if context.Cause(s.ctx) == error(s.deadline) {
					var zero T
					r.settle(s.key, zero, s.deadline, fromDeadline)
				}
			})
		}
	}
	return slots
}

func (r *Run[T]) dispatch(t Task[T], s *slot) {
	var pc panics.Catcher
	pc.Try(func() { t.Start(s.ctx, &reporter[T]{run: r, slot: s}) })
	rec := pc.Recovered()
	if rec == nil {
		return
	}
	if r.handlerPanicked.Load() {
		// The error carries the stack captured at the handler's panic site.
		panic(rec.AsError())
	}
	r.log.Error("task panicked", logger.Fields(
		logger.FieldTaskKey, s.key,
		"panic", fmt.Sprint(rec.Value),
		"stack", string(rec.Stack),
	))
	var zero T
	r.settle(s.key, zero, errors.TaskPanic(s.key, rec.Value), fromPanic)
}

// settle records an outcome for key, or rejects it when the key or the run
// is already done.
func (r *Run[T]) settle(key string, value T, err error, src source) {
	r.mu.Lock()
	s := r.slots[key]

	if src == fromReporter {
		if s.reported {
			r.state.Duplicates++
			r.mu.Unlock()
			r.rejected(s, RejectDuplicate, err)
			return
		}
		s.reported = true
	}
	if s.settled || r.state.Fired {
		if src == fromReporter {
			r.state.Late++
		}
		r.mu.Unlock()
		if src == fromReporter {
			r.rejected(s, RejectLate, err)
		} else if src == fromPanic {
			r.log.Debug("ignoring panic from settled task", logger.Fields(logger.FieldTaskKey, key))
		}
		return
	}

	elapsed := time.Since(r.started)
	s.settled = true
	r.results.set(key, Outcome[T]{Value: value, Err: err, Duration: elapsed})
	r.finished = append(r.finished, finishedTask{slot: s, err: err, elapsed: elapsed})
	var failure *TaskFailure
	if err != nil {
		failure = &TaskFailure{Key: key, Reason: err}
		r.failures = append(r.failures, failure)
	}
	var f *finalization[T]
	if r.state.complete(err != nil, r.info.Mode) {
		f = r.finalizeLocked(failure, nil)
	}
	r.mu.Unlock()

	s.cancel()
	fields := logger.MergeWithDuration(logger.Fields(logger.FieldTaskKey, key), elapsed)
	if err != nil {
		r.log.Debug("task failed", logger.MergeWithError(fields, err))
	} else {
		r.log.Debug("task completed", fields)
	}
	r.flushFinished()
	if f != nil {
		r.finish(f)
	}
}

type finishedTask struct {
	slot    *slot
	err     error
	elapsed time.Duration
}

// flushFinished delivers queued TaskFinished calls. A task that settled
// before the run fired is always delivered before RunFinished, whichever
// goroutine gets here first.
func (r *Run[T]) flushFinished() {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.mu.Lock()
	pending := r.finished
	r.finished = nil
	r.mu.Unlock()
	for _, ft := range pending {
		r.observer.TaskFinished(ft.slot.obsCtx, r.info, ft.slot.key, ft.err, ft.elapsed)
	}
}

func (r *Run[T]) rejected(s *slot, reason Rejection, reported error) {
	fields := logger.Fields(logger.FieldTaskKey, s.key, logger.FieldStatus, string(reason))
	if reported != nil {
		fields = logger.MergeWithError(fields, reported)
	}
	if reason == RejectDuplicate {
		r.log.WithError(errors.DuplicateCompletion(s.key)).Warn("duplicate completion ignored", fields)
	} else {
		r.log.Debug("late completion discarded", fields)
	}
	r.observer.ReportRejected(s.obsCtx, r.info, s.key, reason)
}

// abort finalizes the run as cancelled unless it already fired.
func (r *Run[T]) abort(cause error) {
	r.mu.Lock()
	if !r.state.cancel() {
		r.mu.Unlock()
		return
	}
	f := r.finalizeLocked(nil, cause)
	r.mu.Unlock()
	r.finish(f)
}

func (r *Run[T]) finishEmpty() {
	r.mu.Lock()
	r.state.Fired = true
	f := r.finalizeLocked(nil, nil)
	r.mu.Unlock()
	r.finish(f)
}

type finalization[T any] struct {
	results   *ResultSet[T]
	err       error
	state     CompletionState
	abandoned []*slot
}

// finalizeLocked computes the handler arguments. r.mu must be held and Fired
// must have just been set.
func (r *Run[T]) finalizeLocked(failure *TaskFailure, cause error) *finalization[T] {
	f := &finalization[T]{state: r.state}
	switch {
	case r.state.Cancelled:
		f.err = errors.Cancelled(cause)
	case failure != nil && r.info.Mode == FailFast:
		f.err = failure
	default:
		f.results = r.results
		if len(r.failures) > 0 {
			f.err = &Failures{Total: r.state.Dispatched, List: r.failures}
		}
	}
	for _, s := range r.slots {
		if !s.settled {
			f.abandoned = append(f.abandoned, s)
		}
	}
	sort.Slice(f.abandoned, func(i, j int) bool { return f.abandoned[i].key < f.abandoned[j].key })
	r.final, r.err = f.results, f.err
	return f
}

// finish runs once per run, outside the lock, on the goroutine that fired it.
func (r *Run[T]) finish(f *finalization[T]) {
	r.cancel()
	r.flushFinished()
	elapsed := time.Since(r.started)
	for _, s := range f.abandoned {
		r.observer.TaskAbandoned(s.obsCtx, r.info, s.key)
	}

	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldDispatched, f.state.Dispatched,
		logger.FieldCompleted, f.state.Completed,
		logger.FieldFailed, f.state.Failed,
	), elapsed)
	if f.err != nil {
		r.log.Warn("run finished with error", logger.MergeWithError(fields, f.err))
	} else {
		r.log.Debug("run finished", fields)
	}
	r.observer.RunFinished(r.obsCtx, r.info, f.state, f.err, elapsed)
	r.invoke(f.results, f.err)
}

func (r *Run[T]) invoke(results *ResultSet[T], err error) {
	defer close(r.done)
	if r.handler == nil {
		return
	}
	returned := false
	defer func() {
		if !returned {
			r.handlerPanicked.Store(true)
		}
	}()
	r.handler(results, err)
	returned = true
}

type reporter[T any] struct {
	run  *Run[T]
	slot *slot
}

func (rp *reporter[T]) Succeed(value T) {
	rp.run.settle(rp.slot.key, value, nil, fromReporter)
}

func (rp *reporter[T]) Fail(err error) {
	if err == nil {
		err = errors.TaskFailed(rp.slot.key, nil)
	}
	var zero T
	rp.run.settle(rp.slot.key, zero, err, fromReporter)
}
