package analysis

import (
	"errors"
	"sort"

	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"

	"go.uber.org/zap"
)

// Resolver supplies callee bodies for interprocedural analysis.
type Resolver interface {
	Resolve(name string) (*syntax.Function, bool)
}

// SummaryStore memoizes callee results keyed by function identity and
// entry bindings. Implemented by Program when it carries a summary cache.
type SummaryStore interface {
	SummaryGet(fn *syntax.Function, bindings map[string]sign.Sign) (sign.Sign, bool)
	SummarySet(fn *syntax.Function, bindings map[string]sign.Sign, ret sign.Sign)
}

// AnalyzeCall analyzes one call site against the caller's current state
// and returns a new caller state with the callee's effect folded back in:
// the joined return sign is bound under ReturnVar. callerState is never
// mutated.
func (a *Analyzer) AnalyzeCall(call *syntax.Expr, callerState *AbstractState, ctx *Context) (*AbstractState, error) {
	if call == nil || call.Kind != syntax.ExprCall {
		return nil, &InvalidStateError{Message: "call site is not a call expression"}
	}
	if callerState == nil {
		callerState = NewAbstractState()
	}
	if ctx == nil {
		ctx = NewContext(call.Callee)
	}
	ret, err := a.callSign(call, callerState, ctx)
	if err != nil {
		return nil, err
	}
	out := callerState.Clone()
	out.Set(ReturnVar, ret)
	return out, nil
}

// callSign computes the abstract return value of a call expression. The
// callee runs under a child context with the actual argument signs bound
// to its formal parameters and shares this run's budget. Depth overruns
// degrade to Top, like an iteration-budget stop; step and time overruns
// propagate as errors.
func (a *Analyzer) callSign(call *syntax.Expr, abs *AbstractState, ctx *Context) (sign.Sign, error) {
	if a.resolver == nil {
		return sign.Top, nil
	}
	fn, ok := a.resolver.Resolve(call.Callee)
	if !ok {
		return sign.Top, nil
	}
	if a.limits.MaxCallDepth > 0 && ctx.Depth() >= a.limits.MaxCallDepth {
		a.logger.Debug("call depth bound reached",
			zap.String("callee", call.Callee), zap.Int("depth", ctx.Depth()))
		return sign.Top, nil
	}

	child := ctx.Child(call.Callee)
	for i, param := range fn.Params {
		if i >= len(call.Args) {
			break
		}
		argSign, err := a.evalExpr(call.Args[i], abs, ctx)
		if err != nil {
			return sign.Top, err
		}
		child.Bindings[param] = argSign
	}

	if store, ok := a.resolver.(SummaryStore); ok {
		if ret, hit := store.SummaryGet(fn, child.Bindings); hit {
			return ret, nil
		}
	}

	g, err := cfg.Build(fn)
	if err != nil {
		// a structurally broken callee costs precision, not the analysis
		a.logger.Debug("callee CFG build failed",
			zap.String("callee", call.Callee), zap.Error(err))
		return sign.Top, nil
	}

	sub := New(g,
		WithLimits(a.limits),
		WithResolver(a.resolver),
		WithLogger(a.logger),
		withBudget(a.budget),
	)
	res, err := sub.Run(NewAbstractState(), child)
	if err != nil {
		var inv *InvalidStateError
		if errors.As(err, &inv) {
			return sign.Top, nil
		}
		return sign.Top, err
	}

	ret := sign.Bottom
	for _, st := range res.ExitStates(g) {
		ret = sign.Join(ret, st.Abstract.Get(ReturnVar))
	}
	if ret == sign.Bottom {
		ret = sign.Top // no exit state reached, assume anything
	}

	if store, ok := a.resolver.(SummaryStore); ok {
		store.SummarySet(fn, child.Bindings, ret)
	}
	return ret, nil
}

// Program resolves calls among the functions of one parsed source file.
type Program struct {
	funcs map[string]*syntax.Function
	cache SummaryStore
}

// NewProgram indexes the given functions by name.
func NewProgram(funcs []*syntax.Function) *Program {
	p := &Program{funcs: make(map[string]*syntax.Function, len(funcs))}
	for _, fn := range funcs {
		p.funcs[fn.Name] = fn
	}
	return p
}

// SetSummaryCache attaches a summary store; callees analyzed once per
// distinct entry binding are served from it afterwards.
func (p *Program) SetSummaryCache(store SummaryStore) {
	p.cache = store
}

// Resolve implements Resolver.
func (p *Program) Resolve(name string) (*syntax.Function, bool) {
	fn, ok := p.funcs[name]
	return fn, ok
}

// Functions returns every function sorted by name.
func (p *Program) Functions() []*syntax.Function {
	funcs := make([]*syntax.Function, 0, len(p.funcs))
	for _, fn := range p.funcs {
		funcs = append(funcs, fn)
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	return funcs
}

// SummaryGet implements SummaryStore by delegating to the attached cache.
func (p *Program) SummaryGet(fn *syntax.Function, bindings map[string]sign.Sign) (sign.Sign, bool) {
	if p.cache == nil {
		return sign.Top, false
	}
	return p.cache.SummaryGet(fn, bindings)
}

// SummarySet implements SummaryStore by delegating to the attached cache.
func (p *Program) SummarySet(fn *syntax.Function, bindings map[string]sign.Sign, ret sign.Sign) {
	if p.cache != nil {
		p.cache.SummarySet(fn, bindings, ret)
	}
}
