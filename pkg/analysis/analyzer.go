package analysis

import (
	"container/list"
	"time"

	"go.uber.org/zap"

	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
)

// Limits bounds one analysis run. Zero values disable the corresponding
// check.
type Limits struct {
	MaxSteps           int           // worklist pops across the whole run, callees included
	Timeout            time.Duration // wall clock for the whole run
	MaxStatesPerPoint  int           // live states at one block before force-merging
	MaxBlockIterations int           // revisits of a single block before freezing it
	MaxCallDepth       int           // interprocedural nesting
}

// DefaultLimits returns the limits used when the caller supplies none.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:           10000,
		Timeout:            5 * time.Second,
		MaxStatesPerPoint:  8,
		MaxBlockIterations: 64,
		MaxCallDepth:       4,
	}
}

// Result maps block IDs to the analysis states that reach the end of the
// block after its transfer functions have been applied.
type Result map[string][]*AnalysisState

// ExitStates returns the states reaching the graph's exit block.
func (r Result) ExitStates(g *cfg.Graph) []*AnalysisState {
	return r[g.Exit]
}

// MergedAt joins all states at one block into a single AbstractState,
// the conservative per-block view used by safety checks.
func (r Result) MergedAt(blockID string) *AbstractState {
	states := r[blockID]
	if len(states) == 0 {
		return NewAbstractState()
	}
	merged := states[0].Abstract.Clone()
	for _, st := range states[1:] {
		merged = merged.Join(st.Abstract)
	}
	return merged
}

// budget tracks step and time consumption. One budget is shared between an
// analyzer and the nested analyzers it spawns for callees, so the whole
// run observes a single limit.
type budget struct {
	limits Limits
	start  time.Time
	steps  int
}

func (b *budget) tick(context string) error {
	b.steps++
	if b.limits.MaxSteps > 0 && b.steps > b.limits.MaxSteps {
		return &ResourceExhaustionError{
			Elapsed: time.Since(b.start),
			Steps:   b.steps,
			Context: context,
		}
	}
	if b.limits.Timeout > 0 {
		if elapsed := time.Since(b.start); elapsed > b.limits.Timeout {
			return &TimeoutError{Limit: b.limits.Timeout, Actual: elapsed}
		}
	}
	return nil
}

// Analyzer runs the path-sensitive fixpoint over one function's CFG. An
// Analyzer is single-use and single-threaded: it owns its worklist and its
// per-block tables exclusively.
type Analyzer struct {
	graph    *cfg.Graph
	limits   Limits
	resolver Resolver
	logger   *zap.Logger
	budget   *budget
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLimits overrides the default analysis limits.
func WithLimits(l Limits) Option {
	return func(a *Analyzer) { a.limits = l }
}

// WithResolver enables interprocedural analysis of calls to functions the
// resolver knows.
func WithResolver(r Resolver) Option {
	return func(a *Analyzer) { a.resolver = r }
}

// WithLogger attaches a logger for debug traces.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// withBudget shares a parent run's budget with a callee analyzer.
func withBudget(b *budget) Option {
	return func(a *Analyzer) { a.budget = b }
}

// New creates an analyzer for the given graph.
func New(graph *cfg.Graph, opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:  graph,
		limits: DefaultLimits(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.budget == nil {
		a.budget = &budget{limits: a.limits, start: time.Now()}
	}
	return a
}

// Run executes the worklist fixpoint. The entry block is seeded with one
// AnalysisState built from initial plus any parameter bindings carried by
// ctx. The returned Result maps every visited block to its final state
// set. Budget exhaustion and structural failures come back as typed
// errors; the host process is never taken down.
func (a *Analyzer) Run(initial *AbstractState, ctx *Context) (Result, error) {
	if err := a.graph.Validate(); err != nil {
		return nil, &InvalidStateError{Message: err.Error()}
	}
	if initial == nil {
		initial = NewAbstractState()
	}
	if ctx == nil {
		ctx = NewContext(a.graph.FunctionName)
	}

	seedAbs := initial.Clone()
	for name, s := range ctx.Bindings {
		seedAbs.Set(name, s)
	}
	seed := NewAnalysisState(seedAbs)

	// edgeStates[from][to] holds the states flowing along one edge; the
	// input of a block is recomputed from its predecessors' edges on every
	// visit, so re-analysis replaces old contributions instead of piling
	// them up.
	edgeStates := make(map[string]map[string][]*AnalysisState)
	results := make(Result)
	visits := make(map[string]int)
	frozen := make(map[string]bool)

	worklist := list.New()
	queued := map[string]bool{a.graph.Entry: true}
	worklist.PushBack(a.graph.Entry)

	for worklist.Len() > 0 {
		id := worklist.Remove(worklist.Front()).(string)
		queued[id] = false

		if err := a.budget.tick(a.graph.FunctionName + "/" + id); err != nil {
			return nil, err
		}
		if frozen[id] {
			continue
		}

		block := a.graph.Block(id)
		incoming := a.gather(edgeStates, seed, block)
		if len(incoming) == 0 {
			continue // unreachable or all paths infeasible
		}
		incoming = a.mergeStates(incoming)

		visits[id]++
		if a.limits.MaxBlockIterations > 0 && visits[id] > a.limits.MaxBlockIterations {
			// stop refining this block and keep its last computed result
			frozen[id] = true
			a.logger.Debug("freezing block at iteration bound",
				zap.String("block", id), zap.Int("visits", visits[id]))
			continue
		}

		outs := make([]*AnalysisState, 0, len(incoming))
		for _, st := range incoming {
			out, err := a.transferBlock(block, st, ctx)
			if err != nil {
				return nil, err
			}
			outs = append(outs, out)
		}
		outs = a.mergeStates(outs)

		changed := !statesEqual(results[id], outs)
		results[id] = outs
		if !changed {
			continue
		}

		a.logger.Debug("block updated",
			zap.String("block", id), zap.Int("states", len(outs)))

		for _, succ := range block.Succs {
			next := a.propagate(block, succ, outs)
			if edgeStates[id] == nil {
				edgeStates[id] = make(map[string][]*AnalysisState)
			}
			if statesEqual(edgeStates[id][succ], next) {
				continue
			}
			edgeStates[id][succ] = next
			if !queued[succ] {
				queued[succ] = true
				worklist.PushBack(succ)
			}
		}
	}

	return results, nil
}

// gather collects the states arriving at a block from every incoming edge.
// The entry block receives the seed state.
func (a *Analyzer) gather(edgeStates map[string]map[string][]*AnalysisState, seed *AnalysisState, block *cfg.BasicBlock) []*AnalysisState {
	var incoming []*AnalysisState
	if block.ID == a.graph.Entry {
		incoming = append(incoming, seed)
	}
	for _, pred := range block.Preds {
		incoming = append(incoming, edgeStates[pred][block.ID]...)
	}
	return incoming
}

// propagate derives the states flowing along one edge. Conditional edges
// fork each state (copy-on-fork) and refine the constrained variable;
// states whose refined variable collapses to Bottom are infeasible on this
// branch and dropped.
func (a *Analyzer) propagate(block *cfg.BasicBlock, succ string, outs []*AnalysisState) []*AnalysisState {
	branch, conditional := block.SuccCond[succ]
	if !conditional {
		next := make([]*AnalysisState, 0, len(outs))
		for _, st := range outs {
			next = append(next, st.Clone())
		}
		return next
	}

	next := make([]*AnalysisState, 0, len(outs))
	for _, st := range outs {
		child := st.Fork(PathConstraint{Cond: branch.Cond, Taken: branch.Taken})
		if name, ok := sign.ConstrainedVar(branch.Cond); ok {
			refined := sign.Refine(child.Abstract.Get(name), branch.Cond, branch.Taken)
			if refined == sign.Bottom {
				continue // this branch contradicts the state
			}
			child.Abstract.Set(name, refined)
		}
		next = append(next, child)
	}
	return next
}

// mergeStates deduplicates value-equal states and enforces the per-point
// cap: above MaxStatesPerPoint everything is force-joined into a single
// state. That trades path precision for termination; it is policy, not an
// error.
func (a *Analyzer) mergeStates(states []*AnalysisState) []*AnalysisState {
	var unique []*AnalysisState
	for _, st := range states {
		dup := false
		for _, u := range unique {
			if u.Equal(st) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, st)
		}
	}

	if a.limits.MaxStatesPerPoint <= 0 || len(unique) <= a.limits.MaxStatesPerPoint {
		return unique
	}

	merged := unique[0].Abstract.Clone()
	iteration := unique[0].Iteration
	for _, st := range unique[1:] {
		merged = merged.Join(st.Abstract)
		if st.Iteration > iteration {
			iteration = st.Iteration
		}
	}
	// merged states no longer describe a single path, so the constraint
	// list is dropped
	return []*AnalysisState{{Abstract: merged, Iteration: iteration}}
}

// statesEqual compares two state sets by value, ignoring order.
func statesEqual(a, b []*AnalysisState) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
outer:
	for _, sa := range a {
		for i, sb := range b {
			if !matched[i] && sa.Equal(sb) {
				matched[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}
