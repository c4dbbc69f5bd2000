package fanin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/fanin/logger"
)

// manual hands each task's Reporter to the test so completion order is
// decided by the test goroutine.
type manual struct {
	ready chan handle
	reps  map[string]Reporter[int]
	ctxs  map[string]context.Context
}

type handle struct {
	key string
	ctx context.Context
	rep Reporter[int]
}

func newManual(keys ...string) (*manual, []Task[int]) {
	m := &manual{
		ready: make(chan handle, len(keys)),
		reps:  make(map[string]Reporter[int]),
		ctxs:  make(map[string]context.Context),
	}
	tasks := make([]Task[int], len(keys))
	for i, k := range keys {
		tasks[i] = NewTask(k, func(ctx context.Context, r Reporter[int]) {
			m.ready <- handle{key: k, ctx: ctx, rep: r}
		})
	}
	return m, tasks
}

// await blocks until every task has started.
func (m *manual) await(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case h := <-m.ready:
			m.reps[h.key] = h.rep
			m.ctxs[h.key] = h.ctx
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d tasks to start, got %d", n, i)
		}
	}
}

// calls records handler invocations.
type calls struct {
	mu      sync.Mutex
	n       int
	results *ResultSet[int]
	err     error
}

func (c *calls) handler(rs *ResultSet[int], err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	c.results = rs
	c.err = err
}

func (c *calls) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func quiet(opts ...Option) []Option {
	return append([]Option{WithLogger(logger.Nop())}, opts...)
}

func waitDone[T any](t *testing.T, r *Run[T]) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish")
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
