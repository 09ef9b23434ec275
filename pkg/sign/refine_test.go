package sign

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

func cmp(varName, op string, lit int64) *syntax.Expr {
	return &syntax.Expr{
		Kind:  syntax.ExprCompare,
		Op:    op,
		Left:  &syntax.Expr{Kind: syntax.ExprVar, Name: varName},
		Right: &syntax.Expr{Kind: syntax.ExprIntLit, Value: lit},
	}
}

func litCmp(lit int64, op, varName string) *syntax.Expr {
	return &syntax.Expr{
		Kind:  syntax.ExprCompare,
		Op:    op,
		Left:  &syntax.Expr{Kind: syntax.ExprIntLit, Value: lit},
		Right: &syntax.Expr{Kind: syntax.ExprVar, Name: varName},
	}
}

func TestRefine_Comparisons(t *testing.T) {
	tests := []struct {
		name  string
		in    Sign
		cond  *syntax.Expr
		taken bool
		want  Sign
	}{
		{"x > 0 taken narrows to positive", Top, cmp("x", ">", 0), true, Positive},
		{"x > 5 taken narrows to positive", Top, cmp("x", ">", 5), true, Positive},
		{"x > 0 not taken leaves top", Top, cmp("x", ">", 0), false, Top},
		{"x > -1 not taken narrows to negative", Top, cmp("x", ">", -1), false, Negative},
		{"x < 0 taken narrows to negative", Top, cmp("x", "<", 0), true, Negative},
		{"x < 0 not taken leaves top", Top, cmp("x", "<", 0), false, Top},
		{"x <= -1 taken narrows to negative", Top, cmp("x", "<=", -1), true, Negative},
		{"x >= 1 taken narrows to positive", Top, cmp("x", ">=", 1), true, Positive},
		{"x >= 0 taken leaves top", Top, cmp("x", ">=", 0), true, Top},
		{"x == 0 taken narrows to zero", Top, cmp("x", "==", 0), true, Zero},
		{"x == 3 taken narrows to positive", Top, cmp("x", "==", 3), true, Positive},
		{"x == 0 not taken leaves top", Top, cmp("x", "==", 0), false, Top},
		{"x != 0 taken leaves top", Top, cmp("x", "!=", 0), true, Top},
		{"x != 0 not taken narrows to zero", Top, cmp("x", "!=", 0), false, Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Refine(tt.in, tt.cond, tt.taken))
		})
	}
}

func TestRefine_MirroredLiteral(t *testing.T) {
	// 0 < x is x > 0
	assert.Equal(t, Positive, Refine(Top, litCmp(0, "<", "x"), true))
	// 0 > x is x < 0
	assert.Equal(t, Negative, Refine(Top, litCmp(0, ">", "x"), true))
}

func TestRefine_Contradiction(t *testing.T) {
	// A negative input under x > 0 is infeasible.
	assert.Equal(t, Bottom, Refine(Negative, cmp("x", ">", 0), true))
	assert.Equal(t, Bottom, Refine(Zero, cmp("x", "==", 1), true))
}

func TestRefine_PreservesKnownSign(t *testing.T) {
	assert.Equal(t, Positive, Refine(Positive, cmp("x", ">", 0), true))
	assert.Equal(t, Zero, Refine(Zero, cmp("x", "==", 0), true))
}

func TestRefine_UnsupportedShapes(t *testing.T) {
	// variable against variable
	varCmp := &syntax.Expr{
		Kind:  syntax.ExprCompare,
		Op:    "<",
		Left:  &syntax.Expr{Kind: syntax.ExprVar, Name: "x"},
		Right: &syntax.Expr{Kind: syntax.ExprVar, Name: "y"},
	}
	assert.Equal(t, Top, Refine(Top, varCmp, true))

	// not a comparison at all
	bare := &syntax.Expr{Kind: syntax.ExprVar, Name: "x"}
	assert.Equal(t, Top, Refine(Top, bare, true))

	assert.Equal(t, Positive, Refine(Positive, nil, true))
}

func TestRefineVar_OtherVariableUntouched(t *testing.T) {
	cond := cmp("x", ">", 0)
	assert.Equal(t, Positive, RefineVar(Top, "x", cond, true))
	assert.Equal(t, Top, RefineVar(Top, "y", cond, true))
}

func TestConstrainedVar(t *testing.T) {
	name, ok := ConstrainedVar(cmp("n", ">", 0))
	assert.True(t, ok)
	assert.Equal(t, "n", name)

	name, ok = ConstrainedVar(litCmp(0, "<", "n"))
	assert.True(t, ok)
	assert.Equal(t, "n", name)

	_, ok = ConstrainedVar(&syntax.Expr{Kind: syntax.ExprVar, Name: "n"})
	assert.False(t, ok)
}
