package fanin

// CompletionState counts the progress of a run.
type CompletionState struct {
	Dispatched int `json:"dispatched"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	// Duplicates counts reports from tasks that had already reported.
	Duplicates int `json:"duplicates"`
	// Late counts first reports that arrived after the run was finalized
	// or after the task's deadline.
	Late      int  `json:"late"`
	Fired     bool `json:"fired"`
	Cancelled bool `json:"cancelled"`
}

// Pending returns the number of dispatched tasks that have not completed.
func (s CompletionState) Pending() int {
	return s.Dispatched - s.Completed
}

// complete counts one finished task and reports whether the continuation
// must fire now. It returns true at most once per state.
func (s *CompletionState) complete(failed bool, mode Mode) bool {
	s.Completed++
	if failed {
		s.Failed++
	}
	if s.Fired {
		return false
	}
	if (failed && mode == FailFast) || s.Completed == s.Dispatched {
		s.Fired = true
		return true
	}
	return false
}

// cancel marks the run cancelled and reports whether the continuation must
// fire now.
func (s *CompletionState) cancel() bool {
	if s.Fired {
		return false
	}
	s.Fired = true
	s.Cancelled = true
	return true
}
