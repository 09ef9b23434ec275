package analysis

import (
	"fmt"
	"sort"

	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// Finding reports a statement whose inferred signs admit an unsafe value.
// Findings are ordinary results, not errors.
type Finding struct {
	Function string
	Block    string
	Line     int
	Variable string
	Sign     sign.Sign
	Message  string
}

// CheckZeroSafety inspects every division site in the analyzed function
// and reports the ones whose divisor may be zero in the state holding at
// that site. Each block's merged input state is reconstructed from its
// predecessors and replayed statement by statement, so the divisor is
// judged before any later reassignment in the same block takes effect.
// Branch and loop-head conditions are inspected too. A divisor inferred
// Top counts: the analysis could not rule zero out.
func CheckZeroSafety(g *cfg.Graph, result Result) []Finding {
	var findings []Finding

	ids := make([]string, 0, len(g.Blocks))
	for id := range g.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		bi, bj := g.Blocks[ids[i]], g.Blocks[ids[j]]
		if bi.StartLine != bj.StartLine {
			return bi.StartLine < bj.StartLine
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		block := g.Blocks[id]
		state, reachable := blockInput(g, result, block)
		if !reachable {
			continue
		}

		report := func(divisor *syntax.Expr, line int) {
			s := staticSign(divisor, state)
			if s != sign.Zero && s != sign.Top {
				return
			}
			name := divisor.Text
			if divisor.Kind == syntax.ExprVar {
				name = divisor.Name
			}
			findings = append(findings, Finding{
				Function: g.FunctionName,
				Block:    id,
				Line:     line,
				Variable: name,
				Sign:     s,
				Message:  fmt.Sprintf("divisor %q may be zero (inferred %s)", name, s),
			})
		}

		for _, stmt := range block.Stmts {
			eachDivision(stmt, report)
			replayStmt(stmt, state)
		}

		// branch and loop conditions are hoisted out of Stmts by the CFG
		// builder; their divisions live on the block's Cond
		if (block.Kind == cfg.BlockBranch || block.Kind == cfg.BlockLoopHead) && block.Cond != nil {
			walkExpr(block.Cond, report)
		}
	}
	return findings
}

// blockInput reconstructs the merged state entering a block: the join of
// its predecessors' results with each conditional edge's refinement
// applied. The second return is false when no feasible path reaches the
// block.
func blockInput(g *cfg.Graph, result Result, block *cfg.BasicBlock) (*AbstractState, bool) {
	if block.ID == g.Entry {
		return NewAbstractState(), true
	}

	var in *AbstractState
	for _, predID := range block.Preds {
		pred := g.Blocks[predID]
		if pred == nil || len(result[predID]) == 0 {
			continue
		}
		contrib := result.MergedAt(predID)
		if branch, ok := pred.SuccCond[block.ID]; ok {
			if name, known := sign.ConstrainedVar(branch.Cond); known {
				refined := sign.Refine(contrib.Get(name), branch.Cond, branch.Taken)
				if refined == sign.Bottom {
					continue // edge contradicts the predecessor state
				}
				contrib.Set(name, refined)
			}
		}
		if in == nil {
			in = contrib
		} else {
			in = in.Join(contrib)
		}
	}
	return in, in != nil
}

// replayStmt applies one statement's abstract effect in place, mirroring
// the engine's transfer with calls widened to Top.
func replayStmt(stmt *syntax.Stmt, abs *AbstractState) {
	switch stmt.Kind {
	case syntax.StmtAssign:
		abs.Set(stmt.Target, staticSign(stmt.Value, abs))
	case syntax.StmtAugAssign:
		abs.Set(stmt.Target, applyBinary(stmt.Op, abs.Get(stmt.Target), staticSign(stmt.Value, abs)))
	case syntax.StmtReturn:
		if stmt.Value != nil {
			abs.Set(ReturnVar, staticSign(stmt.Value, abs))
		}
	}
}

// eachDivision walks a statement's expressions and calls fn for every
// division or modulo divisor.
func eachDivision(stmt *syntax.Stmt, fn func(divisor *syntax.Expr, line int)) {
	walkExpr(stmt.Value, fn)
	if stmt.Kind == syntax.StmtAugAssign && (stmt.Op == "/" || stmt.Op == "%") {
		fn(stmt.Value, stmt.Line)
	}
}

func walkExpr(e *syntax.Expr, fn func(divisor *syntax.Expr, line int)) {
	if e == nil {
		return
	}
	if e.Kind == syntax.ExprBinary && (e.Op == "/" || e.Op == "%") {
		fn(e.Right, e.Line)
	}
	walkExpr(e.Left, fn)
	walkExpr(e.Right, fn)
	for _, arg := range e.Args {
		walkExpr(arg, fn)
	}
}

// staticSign evaluates an expression against a state without touching
// calls; anything it cannot see is Top.
func staticSign(e *syntax.Expr, abs *AbstractState) sign.Sign {
	if e == nil {
		return sign.Top
	}
	switch e.Kind {
	case syntax.ExprVar:
		return abs.Get(e.Name)
	case syntax.ExprIntLit:
		return sign.FromInt(e.Value)
	case syntax.ExprBinary:
		return applyBinary(e.Op, staticSign(e.Left, abs), staticSign(e.Right, abs))
	case syntax.ExprUnary:
		if e.Op == "-" {
			return sign.Neg(staticSign(e.Right, abs))
		}
		return sign.Top
	default:
		return sign.Top
	}
}
