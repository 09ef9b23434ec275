package analysis

import (
	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// ReturnVar is the reserved variable holding a function's return sign.
// Syntax identifiers cannot start with '$', so it never collides.
const ReturnVar = "$return"

// transferBlock applies every statement of a block to one incoming state,
// producing a new state. The input state is never mutated.
func (a *Analyzer) transferBlock(block *cfg.BasicBlock, st *AnalysisState, ctx *Context) (*AnalysisState, error) {
	out := st.Clone()
	out.Iteration++
	for _, stmt := range block.Stmts {
		if err := a.transferStmt(stmt, out.Abstract, ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// transferStmt applies one statement's abstract effect in place on abs.
// The statement variants are matched exhaustively; conditions never reach
// here because the CFG builder hoists them onto branch blocks.
func (a *Analyzer) transferStmt(stmt *syntax.Stmt, abs *AbstractState, ctx *Context) error {
	switch stmt.Kind {
	case syntax.StmtAssign:
		v, err := a.evalExpr(stmt.Value, abs, ctx)
		if err != nil {
			return err
		}
		abs.Set(stmt.Target, v)

	case syntax.StmtAugAssign:
		rhs, err := a.evalExpr(stmt.Value, abs, ctx)
		if err != nil {
			return err
		}
		abs.Set(stmt.Target, applyBinary(stmt.Op, abs.Get(stmt.Target), rhs))

	case syntax.StmtReturn:
		if stmt.Value == nil {
			abs.Set(ReturnVar, sign.Top)
			return nil
		}
		v, err := a.evalExpr(stmt.Value, abs, ctx)
		if err != nil {
			return err
		}
		abs.Set(ReturnVar, v)

	case syntax.StmtExpr:
		// evaluated for the budget accounting of nested calls; the value
		// itself is discarded
		if _, err := a.evalExpr(stmt.Value, abs, ctx); err != nil {
			return err
		}

	case syntax.StmtPass, syntax.StmtUnsupported:
		// unknown effect on nothing we track; conservative no-op

	case syntax.StmtIf, syntax.StmtWhile:
		// structured statements are decomposed during CFG construction and
		// never appear inside a block
	}
	return nil
}

// evalExpr computes the abstract value of an expression under abs. Calls
// to resolvable functions recurse into the interprocedural extension;
// everything unknown evaluates to Top.
func (a *Analyzer) evalExpr(e *syntax.Expr, abs *AbstractState, ctx *Context) (sign.Sign, error) {
	if e == nil {
		return sign.Top, nil
	}
	switch e.Kind {
	case syntax.ExprVar:
		return abs.Get(e.Name), nil

	case syntax.ExprIntLit:
		return sign.FromInt(e.Value), nil

	case syntax.ExprBinary:
		left, err := a.evalExpr(e.Left, abs, ctx)
		if err != nil {
			return sign.Top, err
		}
		right, err := a.evalExpr(e.Right, abs, ctx)
		if err != nil {
			return sign.Top, err
		}
		return applyBinary(e.Op, left, right), nil

	case syntax.ExprUnary:
		operand, err := a.evalExpr(e.Right, abs, ctx)
		if err != nil {
			return sign.Top, err
		}
		if e.Op == "-" {
			return sign.Neg(operand), nil
		}
		return sign.Top, nil

	case syntax.ExprCall:
		return a.callSign(e, abs, ctx)

	case syntax.ExprCompare:
		// booleans are outside the sign domain
		return sign.Top, nil

	default:
		return sign.Top, nil
	}
}

// applyBinary dispatches to the sign arithmetic tables; unknown operators
// widen to Top.
func applyBinary(op string, left, right sign.Sign) sign.Sign {
	switch op {
	case "+":
		return sign.Add(left, right)
	case "-":
		return sign.Sub(left, right)
	case "*":
		return sign.Mul(left, right)
	case "/", "%":
		return sign.Div(left, right)
	default:
		return sign.Top
	}
}
