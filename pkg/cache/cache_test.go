package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

func fnNamed(name string) *syntax.Function {
	return &syntax.Function{
		Name: name,
		Body: []*syntax.Stmt{{Kind: syntax.StmtReturn, Text: "return 1"}},
	}
}

func TestCache_Basic(t *testing.T) {
	c := New(10)
	fn := fnNamed("f")

	_, found := c.SummaryGet(fn, nil)
	assert.False(t, found)

	c.SummarySet(fn, nil, sign.Positive)
	assert.Equal(t, 1, c.Len())

	ret, found := c.SummaryGet(fn, nil)
	require.True(t, found)
	assert.Equal(t, sign.Positive, ret)
}

func TestCache_BindingsSeparateEntries(t *testing.T) {
	c := New(10)
	fn := fnNamed("f")

	c.SummarySet(fn, map[string]sign.Sign{"n": sign.Positive}, sign.Positive)
	c.SummarySet(fn, map[string]sign.Sign{"n": sign.Negative}, sign.Negative)
	assert.Equal(t, 2, c.Len())

	ret, found := c.SummaryGet(fn, map[string]sign.Sign{"n": sign.Negative})
	require.True(t, found)
	assert.Equal(t, sign.Negative, ret)
}

func TestCache_OverwriteIsNotANewEntry(t *testing.T) {
	c := New(10)
	fn := fnNamed("f")

	c.SummarySet(fn, nil, sign.Positive)
	c.SummarySet(fn, nil, sign.Zero)
	assert.Equal(t, 1, c.Len())

	ret, _ := c.SummaryGet(fn, nil)
	assert.Equal(t, sign.Zero, ret)
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(2)
	a, b, d := fnNamed("a"), fnNamed("b"), fnNamed("d")

	c.SummarySet(a, nil, sign.Positive)
	c.SummarySet(b, nil, sign.Negative)

	// touch a so b becomes the eviction candidate
	c.SummaryGet(a, nil)

	c.SummarySet(d, nil, sign.Zero)
	assert.Equal(t, 2, c.Len())

	_, found := c.SummaryGet(b, nil)
	assert.False(t, found, "b should have been evicted")
	_, found = c.SummaryGet(a, nil)
	assert.True(t, found)
	_, found = c.SummaryGet(d, nil)
	assert.True(t, found)
}

func TestCache_Clear(t *testing.T) {
	c := New(10)
	c.SummarySet(fnNamed("f"), nil, sign.Positive)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestKey_StableAndBindingSensitive(t *testing.T) {
	fn := fnNamed("f")

	assert.Equal(t, Key(fn, nil), Key(fn, nil))
	assert.NotEqual(t,
		Key(fn, map[string]sign.Sign{"n": sign.Positive}),
		Key(fn, map[string]sign.Sign{"n": sign.Negative}))

	// binding order does not matter
	bindingsA := map[string]sign.Sign{"a": sign.Positive, "b": sign.Zero}
	bindingsB := map[string]sign.Sign{"b": sign.Zero, "a": sign.Positive}
	assert.Equal(t, Key(fn, bindingsA), Key(fn, bindingsB))

	// a different body yields a different key
	changed := fnNamed("f")
	changed.Body = []*syntax.Stmt{{Kind: syntax.StmtReturn, Text: "return 2"}}
	assert.NotEqual(t, Key(fn, nil), Key(changed, nil))
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := New(10)
	f, g := fnNamed("f"), fnNamed("g")
	c.SummarySet(f, nil, sign.Positive)
	c.SummarySet(g, map[string]sign.Sign{"n": sign.Zero}, sign.Zero)

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(10)
	require.NoError(t, restored.Load(&buf))
	assert.Equal(t, 2, restored.Len())

	ret, found := restored.SummaryGet(f, nil)
	require.True(t, found)
	assert.Equal(t, sign.Positive, ret)

	ret, found = restored.SummaryGet(g, map[string]sign.Sign{"n": sign.Zero})
	require.True(t, found)
	assert.Equal(t, sign.Zero, ret)
}

func TestCache_SaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.msgpack")

	c := New(10)
	c.SummarySet(fnNamed("f"), nil, sign.Negative)
	require.NoError(t, c.SaveFile(path))

	restored := New(10)
	require.NoError(t, restored.LoadFile(path))
	assert.Equal(t, 1, restored.Len())
}

func TestCache_LoadFileMissingIsEmpty(t *testing.T) {
	c := New(10)
	require.NoError(t, c.LoadFile(filepath.Join(t.TempDir(), "nope.msgpack")))
	assert.Equal(t, 0, c.Len())
}

func TestCache_LoadCorruptData(t *testing.T) {
	c := New(10)
	err := c.Load(bytes.NewReader([]byte("not msgpack at all")))
	assert.Error(t, err)
}
