package playback

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/jit/compiler/back"
	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/option"
	"github.com/slowlang/jit/compiler/tree"
)

type funcRecording struct {
	replay func(p *Context)
	disass int
}

func (r *funcRecording) ReplayInto(ctx context.Context, p *Context) { r.replay(p) }
func (r *funcRecording) Disassociate()                              { r.disass++ }

func newTest(t *testing.T, replay func(p *Context)) (*Context, *diag.Sink, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	sink := &diag.Sink{W: &buf}
	opts := &option.Table{}

	b := back.Acquire()
	t.Cleanup(b.Release)

	p := New(&funcRecording{replay: replay}, opts, sink, b)

	return p, sink, &buf
}

func countNodes[T any](p *tree.Package) (n int) {
	for _, x := range p.Nodes {
		if _, ok := x.(T); ok {
			n++
		}
	}

	return n
}

func TestAssociate(t *testing.T) {
	p, _, _ := newTest(t, nil)

	s := p.Associate("x")
	assert.Equal(t, "x", p.Assoc(s))

	assert.Panics(t, func() { p.Assoc(NoSlot) })
	assert.Panics(t, func() { p.Assoc(s + 1) })
}

func TestFieldThroughPointer(t *testing.T) {
	p, sink, _ := newTest(t, nil)

	a := p.NewField(nil, tree.IntType, "A")
	b := p.NewField(nil, p.PointerTo(tree.IntType), "B")
	s := p.NewStructType(nil, "AB", []*tree.Field{a, b})

	fn := p.NewFunction(nil, enum.Exported, tree.IntType, "get", []tree.Node{
		p.NewParam(nil, p.PointerTo(s), "x"),
	}, false)

	indirects := countNodes[*tree.Indirect](p.Pkg)
	components := countNodes[*tree.Component](p.Pkg)

	fb := p.DereferenceField(nil, fn.Decl.Params[0], b)
	require.NotEqual(t, tree.None, fb)

	assert.Equal(t, indirects+1, countNodes[*tree.Indirect](p.Pkg))
	assert.Equal(t, components+1, countNodes[*tree.Component](p.Pkg))

	v := p.Dereference(nil, fb)
	assert.Equal(t, tree.IntType, p.Type(v))

	fn.AddReturn(nil, v)

	c := p.NewField(nil, tree.IntType, "C")

	x := p.DereferenceField(nil, fn.Decl.Params[0], c)
	assert.Equal(t, tree.None, x)
	assert.Equal(t, 1, sink.Count())

	var e *diag.Error
	require.ErrorAs(t, sink.Err(), &e)
	assert.Equal(t, diag.FieldNotFound, e.Kind)
}

func TestArrayLookup(t *testing.T) {
	p, _, _ := newTest(t, nil)

	ptr := p.NewParam(nil, p.PointerTo(tree.LongType), "a")
	idx := p.NewParam(nil, tree.IntType, "i")

	x := p.NewArrayLookup(nil, ptr, idx)

	ind, ok := p.Pkg.Nodes[x].(*tree.Indirect)
	require.True(t, ok)
	assert.Equal(t, tree.LongType, p.Type(x))

	pp, ok := p.Pkg.Nodes[ind.X].(*tree.PointerPlus)
	require.True(t, ok)

	off, ok := p.Pkg.Nodes[pp.Off].(*tree.Binary)
	require.True(t, ok)
	assert.Equal(t, tree.Mult, off.Code)

	size := p.Pkg.Nodes[off.R].(*tree.UintCst)
	assert.Equal(t, uint64(8), size.V)
}

func TestOperators(t *testing.T) {
	p, sink, _ := newTest(t, nil)

	a := p.NewParam(nil, tree.DoubleType, "a")
	b := p.NewParam(nil, tree.DoubleType, "b")

	d := p.NewBinaryOp(nil, enum.Divide, tree.DoubleType, a, b)
	assert.Equal(t, tree.RDiv, p.Pkg.Nodes[d].(*tree.Binary).Code)

	i := p.NewParam(nil, tree.IntType, "i")

	d = p.NewBinaryOp(nil, enum.Divide, tree.IntType, i, i)
	assert.Equal(t, tree.TruncDiv, p.Pkg.Nodes[d].(*tree.Binary).Code)

	l := p.NewBinaryOp(nil, enum.LogicalAnd, tree.IntType, i, i)
	and := p.Pkg.Nodes[l].(*tree.Binary)
	assert.Equal(t, tree.TruthAndIf, and.Code)
	assert.Equal(t, tree.NE, p.Pkg.Nodes[and.L].(*tree.Binary).Code)

	c := p.NewComparison(nil, enum.LT, i, i)
	assert.Equal(t, tree.BoolType, p.Type(c))

	assert.Equal(t, tree.None, p.NewBinaryOp(nil, enum.NumBinaryOps, tree.IntType, i, i))
	assert.Equal(t, tree.None, p.NewUnaryOp(nil, enum.UnaryOp(-1), tree.IntType, i))
	assert.Equal(t, tree.None, p.NewComparison(nil, enum.Comparison(42), i, i))
	assert.Equal(t, 3, sink.Count())
}

func TestLabels(t *testing.T) {
	p, _, _ := newTest(t, nil)

	fn := p.NewFunction(nil, enum.Exported, tree.VoidType, "f", nil, false)

	l := fn.NewForwardLabel("loop")
	fn.AddJump(nil, l)
	fn.PlaceLabel(nil, l)

	assert.Panics(t, func() { fn.PlaceLabel(nil, l) })

	imp := p.NewFunction(nil, enum.Imported, tree.IntType, "puts", nil, true)
	assert.Equal(t, tree.None, imp.Decl.Body)

	assert.Panics(t, func() { imp.AddReturn(nil, tree.None) })
}

func TestLocations(t *testing.T) {
	p, _, _ := newTest(t, nil)

	l1 := p.NewLocation("b.c", 7, 3)
	l2 := p.NewLocation("a.c", 2, 1)
	l3 := p.NewLocation("b.c", 1, 9)
	l4 := p.NewLocation("b.c", 7, 1)

	assert.Same(t, l1, p.NewLocation("b.c", 7, 3))

	n1 := p.NewParam(l1, tree.IntType, "x")
	n2 := p.NewParam(l2, tree.IntType, "y")
	n3 := p.NewParam(l3, tree.IntType, "z")
	n4 := p.NewParam(l4, tree.IntType, "w")

	require.NoError(t, p.handleLocations(context.Background()))

	// b.c was seen first, then lines ascending, then columns.
	assert.True(t, l3.Pos() < l4.Pos())
	assert.True(t, l4.Pos() < l1.Pos())
	assert.True(t, l1.Pos() < l2.Pos())

	assert.Equal(t, l1.Pos(), p.Pkg.Pos[n1])
	assert.Equal(t, l2.Pos(), p.Pkg.Pos[n2])
	assert.Equal(t, l3.Pos(), p.Pkg.Pos[n3])
	assert.Equal(t, l4.Pos(), p.Pkg.Pos[n4])

	x, ok := p.back.Lines.Expand(p.Pkg.Pos[n1])
	require.True(t, ok)
	assert.Equal(t, tree.Expanded{File: "b.c", Line: 7, Col: 3}, x)
}

func TestCompileAnswer(t *testing.T) {
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("no C driver")
	}

	p, sink, _ := newTest(t, func(p *Context) {
		fn := p.NewFunction(nil, enum.Exported, tree.IntType, "answer", nil, false)
		fn.AddReturn(nil, p.NewRValueFromInt(tree.IntType, 42))
	})

	ctx := context.Background()

	lib := p.Compile(ctx)
	require.NotNil(t, lib, "%v", sink.Err())
	defer func() { _ = lib.Close() }()

	dir := p.dir
	assert.DirExists(t, dir)

	p.Close(ctx)

	assert.NoDirExists(t, dir)

	f, err := lib.Func("answer")
	require.NoError(t, err)
	assert.Equal(t, 42, f.Int())
}

func TestCompileReplayError(t *testing.T) {
	p, sink, _ := newTest(t, func(p *Context) {
		p.GetType(enum.NumTypes)
	})

	lib := p.Compile(context.Background())
	assert.Nil(t, lib)
	assert.Equal(t, 1, sink.Count())
	assert.Equal(t, "", p.dir)
}

func TestFinalizeUnplacedLabel(t *testing.T) {
	p, sink, buf := newTest(t, func(p *Context) {
		fn := p.NewFunction(nil, enum.Exported, tree.IntType, "f", nil, false)

		fn.AddJump(nil, fn.NewForwardLabel("never"))
		fn.AddReturn(nil, p.NewRValueFromInt(tree.IntType, 1))
	})

	assert.Nil(t, p.Compile(context.Background()))
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.InvalidArgument, sink.Errors()[0].Kind)
	assert.Contains(t, buf.String(), `f: label "never" used but not placed`)
}

func TestFinalizeVerifyFailure(t *testing.T) {
	p, sink, buf := newTest(t, func(p *Context) {
		fn := p.NewFunction(nil, enum.Exported, tree.IntType, "g", nil, false)

		p.Pkg.Append(fn.Node, p.Pkg.Alloc(&tree.Return{X: tree.None}, tree.VoidType))
	})

	require.NoError(t, p.opts.SetBool(option.SelfCheckGC, true))

	assert.Nil(t, p.Compile(context.Background()))
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.Internal, sink.Errors()[0].Kind)
	assert.Contains(t, buf.String(), "finalize: verify")
}
