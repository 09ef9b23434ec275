package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGo_SimpleFunction(t *testing.T) {
	source := []byte(`package main

func double(n int) int {
	result := n * 2
	return result
}
`)
	funcs, err := ParseGo(source)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	fn := funcs[0]
	assert.Equal(t, "double", fn.Name)
	assert.Equal(t, []string{"n"}, fn.Params)
	require.Len(t, fn.Body, 2)

	assign := fn.Body[0]
	assert.Equal(t, StmtAssign, assign.Kind)
	assert.Equal(t, "result", assign.Target)
	require.NotNil(t, assign.Value)
	assert.Equal(t, ExprBinary, assign.Value.Kind)
	assert.Equal(t, "*", assign.Value.Op)

	assert.Equal(t, StmtReturn, fn.Body[1].Kind)
}

func TestParseGo_IfElseChain(t *testing.T) {
	source := []byte(`package main

func classify(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	} else {
		return 0
	}
}
`)
	fn, err := ParseGoFunction(source, "classify")
	require.NoError(t, err)

	outer := fn.Body[0]
	require.Equal(t, StmtIf, outer.Kind)
	require.NotNil(t, outer.Cond)
	assert.Equal(t, ExprCompare, outer.Cond.Kind)
	assert.Equal(t, ">", outer.Cond.Op)

	require.Len(t, outer.Else, 1)
	inner := outer.Else[0]
	assert.Equal(t, StmtIf, inner.Kind)
	assert.Equal(t, "<", inner.Cond.Op)
	require.Len(t, inner.Else, 1)
	assert.Equal(t, StmtReturn, inner.Else[0].Kind)
}

func TestParseGo_ConditionOnlyFor(t *testing.T) {
	source := []byte(`package main

func countdown(n int) int {
	for n > 0 {
		n--
	}
	return n
}
`)
	fn, err := ParseGoFunction(source, "countdown")
	require.NoError(t, err)

	loop := fn.Body[0]
	require.Equal(t, StmtWhile, loop.Kind)
	require.NotNil(t, loop.Cond)
	assert.Equal(t, ">", loop.Cond.Op)

	require.Len(t, loop.Body, 1)
	dec := loop.Body[0]
	assert.Equal(t, StmtAugAssign, dec.Kind)
	assert.Equal(t, "n", dec.Target)
	assert.Equal(t, "-", dec.Op)
	assert.Equal(t, int64(1), dec.Value.Value)
}

func TestParseGo_ThreeClauseForIsOpaque(t *testing.T) {
	source := []byte(`package main

func sum(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}
`)
	fn, err := ParseGoFunction(source, "sum")
	require.NoError(t, err)
	require.Len(t, fn.Body, 3)
	assert.Equal(t, StmtUnsupported, fn.Body[1].Kind)
}

func TestParseGo_CompoundAssign(t *testing.T) {
	source := []byte(`package main

func accumulate(x int) int {
	x += 5
	x *= 2
	return x
}
`)
	fn, err := ParseGoFunction(source, "accumulate")
	require.NoError(t, err)

	add := fn.Body[0]
	require.Equal(t, StmtAugAssign, add.Kind)
	assert.Equal(t, "+", add.Op)
	assert.Equal(t, int64(5), add.Value.Value)

	mul := fn.Body[1]
	assert.Equal(t, StmtAugAssign, mul.Kind)
	assert.Equal(t, "*", mul.Op)
}

func TestParseGo_CallAndNegativeLiteral(t *testing.T) {
	source := []byte(`package main

func caller(a int) int {
	x := helper(a, -3)
	return x
}
`)
	fn, err := ParseGoFunction(source, "caller")
	require.NoError(t, err)

	call := fn.Body[0].Value
	require.NotNil(t, call)
	assert.Equal(t, ExprCall, call.Kind)
	assert.Equal(t, "helper", call.Callee)
	require.Len(t, call.Args, 2)
	assert.Equal(t, ExprIntLit, call.Args[1].Kind)
	assert.Equal(t, int64(-3), call.Args[1].Value)
}

func TestParseGo_TupleAssignIsOpaque(t *testing.T) {
	source := []byte(`package main

func swap(a, b int) int {
	a, b = b, a
	return a
}
`)
	fn, err := ParseGoFunction(source, "swap")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	assert.Equal(t, StmtUnsupported, fn.Body[0].Kind)
}
