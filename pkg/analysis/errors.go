package analysis

import (
	"fmt"
	"time"
)

// ResourceExhaustionError reports that the analysis exceeded its step
// budget. It carries enough context for the caller to retry with a larger
// budget, skip the function, or report upward.
type ResourceExhaustionError struct {
	Elapsed time.Duration
	Steps   int
	Context string // which function or block tripped the budget
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("analysis exhausted step budget after %d steps in %s (%s)",
		e.Steps, e.Elapsed, e.Context)
}

// TimeoutError reports that the analysis exceeded its wall-clock budget.
type TimeoutError struct {
	Limit  time.Duration
	Actual time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timed out: limit %s, ran %s", e.Limit, e.Actual)
}

// InvalidStateError reports a structurally broken input or an internally
// inconsistent analysis state, such as a dangling successor reference or a
// branch edge without a condition. Only the offending function's analysis
// is aborted.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return "invalid analysis state: " + e.Message
}
