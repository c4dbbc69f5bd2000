// Package fanin runs a fixed set of independent asynchronous tasks, collects
// their outcomes keyed by task, and invokes a single continuation exactly once.
//
// Each task is a key plus a start function. The start function receives a
// context and a Reporter and must eventually call Succeed or Fail exactly
// once, from any goroutine. The coordinator dispatches every task
// immediately and fires the handler:
//
//   - with the full ResultSet once every task has succeeded, or
//   - in FailFast mode (the default), with the first TaskFailure as soon as
//     it is reported; later reports are discarded, or
//   - in CollectAll mode, after every task has finished, with the ResultSet
//     and a *Failures listing every failed task, or
//   - with a CANCELLED error when the caller's context ends first.
//
// A task that reports twice is ignored and logged. Zero tasks fire the
// handler immediately with an empty ResultSet.
//
// # Usage
//
//	c := fanin.New[int](fanin.WithMode(fanin.FailFast))
//	rs, err := c.Execute(ctx, []fanin.Task[int]{
//	    fanin.Func("a", fetchA),
//	    fanin.Func("b", fetchB),
//	})
//
// Callback style, as in the classic counter-based fan-in:
//
//	run, err := c.Start(ctx, tasks, func(rs *fanin.ResultSet[int], err error) {
//	    ...
//	})
//	<-run.Done()
package fanin
