package sign

import "github.com/tdinh-labs/go-sign-flow/pkg/syntax"

// invert maps a comparison operator to its negation, used when the false
// branch of a condition is taken.
var invert = map[string]string{
	"<": ">=", "<=": ">", ">": "<=", ">=": "<", "==": "!=", "!=": "==",
}

// mirror swaps operand sides: `lit op var` becomes `var mirror(op) lit`.
var mirror = map[string]string{
	"<": ">", "<=": ">=", ">": "<", ">=": "<=", "==": "==", "!=": "!=",
}

// Refine narrows s under the assumption that cond evaluated to taken.
// Only comparisons between a variable and an integer literal narrow
// anything; every other shape returns s unchanged. The result is
// Meet(s, c) where c is the widest Sign containing all values satisfying
// the (possibly inverted) comparison, so refinement is total and monotone.
// Sets without an exact Sign (e.g. x != 0, or x >= 0 which is {Zero,
// Positive}) approximate up to Top and therefore leave s as-is.
func Refine(s Sign, cond *syntax.Expr, taken bool) Sign {
	_, op, lit, ok := splitComparison(cond)
	if !ok {
		return s
	}
	if !taken {
		op = invert[op]
	}
	c := comparisonSign(op, lit)
	if c == Top {
		return s
	}
	return Meet(s, c)
}

// RefineVar is Refine restricted to conditions mentioning the given
// variable; conditions on other variables never narrow it.
func RefineVar(s Sign, name string, cond *syntax.Expr, taken bool) Sign {
	variable, _, _, ok := splitComparison(cond)
	if !ok || variable != name {
		return s
	}
	return Refine(s, cond, taken)
}

// ConstrainedVar returns the variable named by a comparison condition, if
// the condition has the supported `var op literal` shape.
func ConstrainedVar(cond *syntax.Expr) (string, bool) {
	variable, _, _, ok := splitComparison(cond)
	return variable, ok
}

// splitComparison normalizes a condition to `var op literal` form,
// mirroring `literal op var` comparisons.
func splitComparison(cond *syntax.Expr) (string, string, int64, bool) {
	if cond == nil || cond.Kind != syntax.ExprCompare {
		return "", "", 0, false
	}
	if _, known := mirror[cond.Op]; !known {
		return "", "", 0, false
	}
	left, right := cond.Left, cond.Right
	if left == nil || right == nil {
		return "", "", 0, false
	}
	if left.Kind == syntax.ExprVar && right.Kind == syntax.ExprIntLit {
		return left.Name, cond.Op, right.Value, true
	}
	if left.Kind == syntax.ExprIntLit && right.Kind == syntax.ExprVar {
		return right.Name, mirror[cond.Op], left.Value, true
	}
	return "", "", 0, false
}

// comparisonSign returns the widest Sign containing every integer x with
// `x op lit`, or Top when no single Sign fits.
func comparisonSign(op string, lit int64) Sign {
	switch op {
	case ">":
		if lit >= 0 {
			return Positive
		}
	case ">=":
		if lit > 0 {
			return Positive
		}
	case "<":
		if lit <= 0 {
			return Negative
		}
	case "<=":
		if lit < 0 {
			return Negative
		}
	case "==":
		return FromInt(lit)
	}
	return Top
}
