package fanin

import "context"

// Reporter receives the completion of one task. Exactly one call to Succeed
// or Fail is expected; further calls are ignored and logged as duplicates.
type Reporter[T any] interface {
	Succeed(value T)
	Fail(err error)
}

// StartFunc begins a task. It may block until the work is done or return
// early and report from another goroutine.
type StartFunc[T any] func(ctx context.Context, r Reporter[T])

// Task is one unit of asynchronous work tracked by a Coordinator.
type Task[T any] struct {
	Key   string
	Start StartFunc[T]
}

// NewTask creates a Task from a key and a start function.
func NewTask[T any](key string, start StartFunc[T]) Task[T] {
	return Task[T]{Key: key, Start: start}
}

// Func adapts a blocking function into a Task that reports its return values.
func Func[T any](key string, fn func(ctx context.Context) (T, error)) Task[T] {
	return Task[T]{
		Key: key,
		Start: func(ctx context.Context, r Reporter[T]) {
			v, err := fn(ctx)
			if err != nil {
				r.Fail(err)
				return
			}
			r.Succeed(v)
		},
	}
}

// Indexed builds tasks keyed "0", "1", ... from a slice of inputs, the way a
// loop of requests is usually fanned out.
func Indexed[I, T any](inputs []I, fn func(ctx context.Context, in I) (T, error)) []Task[T] {
	tasks := make([]Task[T], len(inputs))
	for i, in := range inputs {
		tasks[i] = Func(IndexKey(i), func(ctx context.Context) (T, error) {
			return fn(ctx, in)
		})
	}
	return tasks
}
