package fanin

import (
	"sort"
	"strconv"
	"time"
)

// Outcome is the recorded completion of one task.
type Outcome[T any] struct {
	// Value is the reported value; the zero value when the task failed.
	Value T
	// Err is the failure reason, nil on success.
	Err error
	// Duration is the time from dispatch to report.
	Duration time.Duration
}

// OK reports whether the task succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// ResultSet maps task keys to outcomes. The handler receives it once the run
// is finalized; nothing writes to it afterwards.
type ResultSet[T any] struct {
	outcomes map[string]Outcome[T]
}

func newResultSet[T any](size int) *ResultSet[T] {
	return &ResultSet[T]{outcomes: make(map[string]Outcome[T], size)}
}

func (rs *ResultSet[T]) set(key string, o Outcome[T]) {
	rs.outcomes[key] = o
}

// Len returns the number of recorded outcomes.
func (rs *ResultSet[T]) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.outcomes)
}

// Get returns the outcome recorded for key.
func (rs *ResultSet[T]) Get(key string) (Outcome[T], bool) {
	if rs == nil {
		return Outcome[T]{}, false
	}
	o, ok := rs.outcomes[key]
	return o, ok
}

// Value returns the value recorded for key if that task succeeded.
func (rs *ResultSet[T]) Value(key string) (T, bool) {
	o, ok := rs.Get(key)
	if !ok || !o.OK() {
		var zero T
		return zero, false
	}
	return o.Value, true
}

// Keys returns the recorded keys in sorted order.
func (rs *ResultSet[T]) Keys() []string {
	if rs == nil {
		return nil
	}
	keys := make([]string, 0, len(rs.outcomes))
	for k := range rs.outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the values of the tasks that succeeded.
func (rs *ResultSet[T]) Values() map[string]T {
	out := make(map[string]T, rs.Len())
	if rs == nil {
		return out
	}
	for k, o := range rs.outcomes {
		if o.OK() {
			out[k] = o.Value
		}
	}
	return out
}

// Failed returns the sorted keys of the tasks that failed.
func (rs *ResultSet[T]) Failed() []string {
	var keys []string
	for _, k := range rs.Keys() {
		if !rs.outcomes[k].OK() {
			keys = append(keys, k)
		}
	}
	return keys
}

// IndexKey is the key Indexed assigns to the i-th input.
func IndexKey(i int) string {
	return strconv.Itoa(i)
}
