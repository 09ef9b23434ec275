package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
)

func checkSource(t *testing.T, source, name string) []Finding {
	t.Helper()
	g := buildGraph(t, source, name)
	res, err := New(g).Run(NewAbstractState(), NewContext(name))
	require.NoError(t, err)
	return CheckZeroSafety(g, res)
}

func TestCheckZeroSafety_ZeroDivisor(t *testing.T) {
	findings := checkSource(t, `def f(a):
    d = 0
    r = a / d
    return r
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "f", findings[0].Function)
	assert.Equal(t, "d", findings[0].Variable)
	assert.Equal(t, sign.Zero, findings[0].Sign)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "may be zero")
}

func TestCheckZeroSafety_UnknownDivisor(t *testing.T) {
	findings := checkSource(t, `def f(a, b):
    return a / b
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "b", findings[0].Variable)
	assert.Equal(t, sign.Top, findings[0].Sign)
}

func TestCheckZeroSafety_ProvenPositiveDivisor(t *testing.T) {
	findings := checkSource(t, `def f(a):
    d = 2
    return a / d
`, "f")
	assert.Empty(t, findings)
}

func TestCheckZeroSafety_GuardedDivisor(t *testing.T) {
	findings := checkSource(t, `def f(a, b):
    if b > 0:
        r = a / b
    else:
        r = 0
    return r
`, "f")
	assert.Empty(t, findings, "a guard proving the divisor positive silences the check")
}

func TestCheckZeroSafety_Modulo(t *testing.T) {
	findings := checkSource(t, `def f(a):
    z = 0
    return a % z
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "z", findings[0].Variable)
}

func TestCheckZeroSafety_AugAssignDivision(t *testing.T) {
	findings := checkSource(t, `def f(a, b):
    a /= b
    return a
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "b", findings[0].Variable)
}

func TestCheckZeroSafety_DivisorReassignedAfterDivision(t *testing.T) {
	findings := checkSource(t, `def f(y):
    x = 1 / y
    y = 1
    return x
`, "f")
	// the division sees y before the later assignment proves it positive
	require.Len(t, findings, 1)
	assert.Equal(t, "y", findings[0].Variable)
	assert.Equal(t, sign.Top, findings[0].Sign)
	assert.Equal(t, 2, findings[0].Line)
}

func TestCheckZeroSafety_DivisorAssignedBeforeDivision(t *testing.T) {
	findings := checkSource(t, `def f(a):
    d = 3
    r = a / d
    d = 0
    return r
`, "f")
	assert.Empty(t, findings, "the division runs while d is still positive")
}

func TestCheckZeroSafety_DivisionInBranchCondition(t *testing.T) {
	findings := checkSource(t, `def f(y):
    if 1 / y > 0:
        return 1
    return 0
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "y", findings[0].Variable)
	assert.Equal(t, sign.Top, findings[0].Sign)
}

func TestCheckZeroSafety_DivisionInLoopCondition(t *testing.T) {
	findings := checkSource(t, `def f(n):
    while 10 / n > 0:
        n -= 1
    return n
`, "f")
	require.Len(t, findings, 1)
	assert.Equal(t, "n", findings[0].Variable)
}

func TestCheckZeroSafety_UnreachableDivisionNotReported(t *testing.T) {
	findings := checkSource(t, `def f():
    x = 1
    if x < 0:
        r = x / 0
    return x
`, "f")
	assert.Empty(t, findings, "the dividing branch is infeasible")
}

func TestCheckZeroSafety_LiteralDivisorExpression(t *testing.T) {
	findings := checkSource(t, `def f(a):
    return a / (1 - 1)
`, "f")
	require.Len(t, findings, 1)
	// subtraction of two positives widens to Top, which still reports
	assert.Equal(t, sign.Top, findings[0].Sign)
}
