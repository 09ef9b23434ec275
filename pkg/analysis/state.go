// Package analysis implements the path-sensitive sign analysis: abstract
// states, path constraints, the worklist fixpoint analyzer, and the
// interprocedural extension.
package analysis

import (
	"sort"

	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// AbstractState maps variable names to Signs. Variables never assigned are
// implicitly Top. One AbstractState belongs to exactly one AnalysisState;
// sharing happens only through Clone and Join, which produce new values.
type AbstractState struct {
	vars map[string]sign.Sign
}

// NewAbstractState returns an empty state (every variable Top).
func NewAbstractState() *AbstractState {
	return &AbstractState{vars: make(map[string]sign.Sign)}
}

// Get returns the Sign of a variable, Top when unseen.
func (s *AbstractState) Get(name string) sign.Sign {
	if v, ok := s.vars[name]; ok {
		return v
	}
	return sign.Top
}

// Set records the Sign of a variable on this snapshot.
func (s *AbstractState) Set(name string, v sign.Sign) {
	s.vars[name] = v
}

// Clone returns an independent copy.
func (s *AbstractState) Clone() *AbstractState {
	c := &AbstractState{vars: make(map[string]sign.Sign, len(s.vars))}
	for k, v := range s.vars {
		c.vars[k] = v
	}
	return c
}

// Join returns the pointwise join of s and o as a new state. Neither input
// is mutated. A variable tracked on only one side joins with the implicit
// Top of the other, so it comes out Top.
func (s *AbstractState) Join(o *AbstractState) *AbstractState {
	j := NewAbstractState()
	for k, v := range s.vars {
		j.vars[k] = sign.Join(v, o.Get(k))
	}
	for k, v := range o.vars {
		if _, seen := s.vars[k]; !seen {
			j.vars[k] = sign.Join(v, sign.Top)
		}
	}
	return j
}

// Equal compares by value, treating untracked variables as Top.
func (s *AbstractState) Equal(o *AbstractState) bool {
	for k := range s.vars {
		if s.Get(k) != o.Get(k) {
			return false
		}
	}
	for k := range o.vars {
		if s.Get(k) != o.Get(k) {
			return false
		}
	}
	return true
}

// Vars returns the tracked variable names in sorted order.
func (s *AbstractState) Vars() []string {
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// PathConstraint records one branch decision: the condition expression and
// which way it went. Immutable value type; two constraints are equal iff
// their conditions are structurally identical and the tags match.
type PathConstraint struct {
	Cond  *syntax.Expr
	Taken bool
}

// Equal reports value equality of two constraints.
func (p PathConstraint) Equal(o PathConstraint) bool {
	return p.Taken == o.Taken && p.Cond.Equal(o.Cond)
}

// AnalysisState is the per-path snapshot carried through the fixpoint
// loop: one AbstractState, an iteration counter, and the ordered branch
// decisions accumulated since function entry.
type AnalysisState struct {
	Abstract    *AbstractState
	Iteration   int
	Constraints []PathConstraint
}

// NewAnalysisState wraps an AbstractState at iteration zero with no
// constraints.
func NewAnalysisState(abs *AbstractState) *AnalysisState {
	return &AnalysisState{Abstract: abs}
}

// Clone copies the state; the copy owns its own AbstractState and
// constraint list.
func (st *AnalysisState) Clone() *AnalysisState {
	constraints := make([]PathConstraint, len(st.Constraints))
	copy(constraints, st.Constraints)
	return &AnalysisState{
		Abstract:    st.Abstract.Clone(),
		Iteration:   st.Iteration,
		Constraints: constraints,
	}
}

// Fork produces a child state with pc appended to the copied constraint
// list. The receiver is never touched; sibling branches own disjoint
// snapshots (copy-on-fork).
func (st *AnalysisState) Fork(pc PathConstraint) *AnalysisState {
	child := st.Clone()
	child.Constraints = append(child.Constraints, pc)
	return child
}

// Equal compares by value: same abstract state and same constraint list.
// The iteration counter is bookkeeping, not identity.
func (st *AnalysisState) Equal(o *AnalysisState) bool {
	if !st.Abstract.Equal(o.Abstract) {
		return false
	}
	if len(st.Constraints) != len(o.Constraints) {
		return false
	}
	for i := range st.Constraints {
		if !st.Constraints[i].Equal(o.Constraints[i]) {
			return false
		}
	}
	return true
}

// Context is the per-run configuration threaded explicitly through one
// top-level analysis invocation. It is never stored globally; nested
// interprocedural runs get a Child context so bindings cannot leak
// between calls.
type Context struct {
	Tag      string
	Bindings map[string]sign.Sign // call-site parameter mapping
	depth    int
}

// NewContext creates a fresh top-level context.
func NewContext(tag string) *Context {
	return &Context{Tag: tag, Bindings: make(map[string]sign.Sign)}
}

// Child creates a scoped context for a nested invocation, one level
// deeper, with its own empty bindings.
func (c *Context) Child(tag string) *Context {
	return &Context{Tag: tag, Bindings: make(map[string]sign.Sign), depth: c.depth + 1}
}

// Depth is the nesting level of interprocedural invocations.
func (c *Context) Depth() int {
	return c.depth
}
