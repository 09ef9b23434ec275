package analysis

import (
	"errors"

	"go.uber.org/zap"
)

// GuardedResult is the outcome of a budget-guarded run. When a budget
// tripped, Result is the conservative fallback and Failure holds the
// typed budget error for inspection.
type GuardedResult struct {
	Result  Result
	Failure error
}

// Degraded reports whether the result is the Top-everywhere fallback.
func (g GuardedResult) Degraded() bool {
	return g.Failure != nil
}

// RunGuarded runs the analyzer and degrades budget failures into a
// conservative result instead of an error: every block gets a single
// state with nothing tracked, which reads as Top for every variable.
// Structural failures cannot be masked and come back as a real error.
func (a *Analyzer) RunGuarded(initial *AbstractState, ctx *Context) (GuardedResult, error) {
	res, err := a.Run(initial, ctx)
	if err == nil {
		return GuardedResult{Result: res}, nil
	}

	var exhausted *ResourceExhaustionError
	var timeout *TimeoutError
	if errors.As(err, &exhausted) || errors.As(err, &timeout) {
		a.logger.Warn("analysis budget exceeded, falling back to top", zap.Error(err))
		return GuardedResult{Result: a.topResult(), Failure: err}, nil
	}
	return GuardedResult{}, err
}

// topResult is the fail-safe answer: one empty state per block. An empty
// AbstractState answers Top for every lookup, which is sound for any
// program.
func (a *Analyzer) topResult() Result {
	res := make(Result, len(a.graph.Blocks))
	for id := range a.graph.Blocks {
		res[id] = []*AnalysisState{NewAnalysisState(NewAbstractState())}
	}
	return res
}
