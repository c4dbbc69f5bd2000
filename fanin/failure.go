package fanin

import (
	"fmt"
	"strings"

	"github.com/kbukum/fanin/errors"
)

// TaskFailure is the failure of one task, tagged with its key.
type TaskFailure struct {
	Key    string
	Reason error
}

func (f *TaskFailure) Error() string {
	return fmt.Sprintf("task %s: %v", f.Key, f.Reason)
}

func (f *TaskFailure) Unwrap() error { return f.Reason }

// Failures is delivered in CollectAll mode when at least one task failed.
// List is in the order the failures were reported.
type Failures struct {
	Total int
	List  []*TaskFailure
}

func (f *Failures) Error() string {
	parts := make([]string, len(f.List))
	for i, tf := range f.List {
		parts[i] = tf.Error()
	}
	return fmt.Sprintf("%d of %d tasks failed: %s", len(f.List), f.Total, strings.Join(parts, "; "))
}

// Unwrap exposes every TaskFailure to errors.Is and errors.As.
func (f *Failures) Unwrap() []error {
	errs := make([]error, len(f.List))
	for i, tf := range f.List {
		errs[i] = tf
	}
	return errs
}

// Keys returns the failed task keys in report order.
func (f *Failures) Keys() []string {
	keys := make([]string, len(f.List))
	for i, tf := range f.List {
		keys[i] = tf.Key
	}
	return keys
}

// AppError summarises the failures as a MULTIPLE_FAILURES error.
func (f *Failures) AppError() *errors.AppError {
	return errors.MultipleFailures(len(f.List), f.Total).
		WithDetail("tasks", f.Keys()).
		WithCause(f)
}

// Outcome labels reported to metrics observers.
const (
	LabelOK        = "ok"
	LabelFailed    = "failed"
	LabelTimeout   = "timeout"
	LabelPanic     = "panic"
	LabelCancelled = "cancelled"
	LabelAbandoned = "abandoned"
)

// TaskLabel classifies the error a task finished with.
func TaskLabel(err error) string {
	switch {
	case err == nil:
		return LabelOK
	case errors.HasCode(err, errors.ErrCodeTaskTimeout):
		return LabelTimeout
	case errors.HasCode(err, errors.ErrCodeTaskPanic):
		return LabelPanic
	default:
		return LabelFailed
	}
}

// RunLabel classifies the error a run was finalized with.
func RunLabel(err error) string {
	switch {
	case err == nil:
		return LabelOK
	case errors.HasCode(err, errors.ErrCodeCancelled):
		return LabelCancelled
	default:
		return LabelFailed
	}
}
