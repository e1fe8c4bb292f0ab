package jit

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuiet(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	c := New()
	c.SetDiagnostics(&buf)

	return c, &buf
}

func TestLabelPlacedTwice(t *testing.T) {
	c, _ := newQuiet(t)

	fn := c.NewFunction(nil, Exported, c.GetType(Void), "f", nil, false)
	l := fn.NewForwardLabel("again")

	fn.PlaceLabel(nil, l)
	assert.True(t, l.Placed())

	assert.Panics(t, func() { fn.PlaceLabel(nil, l) })
}

func TestLabelOfOtherFunction(t *testing.T) {
	c, buf := newQuiet(t)

	void := c.GetType(Void)

	f := c.NewFunction(nil, Exported, void, "f", nil, false)
	g := c.NewFunction(nil, Exported, void, "g", nil, false)

	l := g.NewForwardLabel("x")

	f.AddJump(nil, l)
	assert.Equal(t, 1, c.ErrorCount())
	assert.Contains(t, buf.String(), `label "x" belongs to g, not f`)

	f.PlaceLabel(nil, l)
	assert.Equal(t, 2, c.ErrorCount())
	assert.False(t, l.Placed())
}

func TestImportedFunctionBody(t *testing.T) {
	c, _ := newQuiet(t)

	fn := c.NewFunction(nil, Imported, c.GetType(Int), "abs", []*Param{c.NewParam(nil, c.GetType(Int), "x")}, false)

	assert.Panics(t, func() { fn.AddReturn(nil, c.Zero(c.GetType(Int))) })
	assert.Panics(t, func() { fn.NewLocal(nil, c.GetType(Int), "y") })
}

func TestNewFunctionValidation(t *testing.T) {
	c, buf := newQuiet(t)

	i := c.GetType(Int)
	x := c.NewParam(nil, i, "x")

	assert.Nil(t, c.NewFunction(nil, FunctionKind(100), i, "f", nil, false))
	assert.Equal(t, UnrecognizedEnum, c.Errors()[0].Kind)

	assert.Nil(t, c.NewFunction(nil, Exported, nil, "f", nil, false))
	assert.Nil(t, c.NewFunction(nil, Exported, i, "", nil, false))
	assert.Nil(t, c.NewFunction(nil, Exported, i, "f", []*Param{nil}, false))

	f := c.NewFunction(nil, Exported, i, "f", []*Param{x}, false)
	require.NotNil(t, f)
	assert.Same(t, x, f.Param(0))

	assert.Nil(t, c.NewFunction(nil, Exported, i, "g", []*Param{x}, false))
	assert.Contains(t, buf.String(), "param x already belongs to f")

	assert.Equal(t, 5, c.ErrorCount())
}

func TestReturnChecks(t *testing.T) {
	c, _ := newQuiet(t)

	i := c.GetType(Int)

	f := c.NewFunction(nil, Exported, i, "f", nil, false)
	f.AddReturn(nil, nil)
	assert.Equal(t, 1, c.ErrorCount())

	v := c.NewFunction(nil, Exported, c.GetType(Void), "v", nil, false)
	v.AddReturn(nil, c.One(i))
	assert.Equal(t, 2, c.ErrorCount())

	v.AddReturn(nil, nil)
	f.AddReturn(nil, c.One(i))
	assert.Equal(t, 2, c.ErrorCount())
}

func TestLoopLabels(t *testing.T) {
	c, _ := newQuiet(t)

	i := c.GetType(Int)
	f := c.NewFunction(nil, Exported, c.GetType(Void), "f", nil, false)

	lp := f.NewLoop(nil, c.One(i))
	require.NotNil(t, lp)

	assert.True(t, lp.cond.Placed())
	assert.True(t, lp.body.Placed())
	assert.False(t, lp.end.Placed())

	lp.End(nil)

	assert.True(t, lp.end.Placed())
	assert.Zero(t, c.ErrorCount())
}

func TestRecordSite(t *testing.T) {
	c, _ := newQuiet(t)

	x := c.GetType(Int)

	assert.NotZero(t, x.from)
}

func TestJumpToUnplacedLabel(t *testing.T) {
	c, buf := newQuiet(t)
	i := c.GetType(Int)

	fn := c.NewFunction(nil, Exported, i, "f", nil, false)
	fn.AddJump(nil, fn.NewForwardLabel("never"))
	fn.AddReturn(nil, c.Zero(i))

	require.Zero(t, c.ErrorCount())

	assert.Nil(t, c.Compile(context.Background()))

	require.Equal(t, 1, c.ErrorCount())
	assert.Equal(t, InvalidArgument, c.Errors()[0].Kind)
	assert.Contains(t, buf.String(), `f: label "never" used but not placed`)
}
