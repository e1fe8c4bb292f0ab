package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/jit/compiler/tree"
)

func TestFunc(t *testing.T) {
	p := tree.New()

	x := p.Alloc(&tree.ParmDecl{Name: "x"}, tree.IntType)
	body := p.Alloc(&tree.StmtList{}, tree.VoidType)
	fn := p.Alloc(&tree.FuncDecl{Name: "add", Ret: tree.IntType, Params: []tree.Node{x}, Body: body}, tree.IntType)

	c := p.Alloc(&tree.IntCst{V: 42}, tree.IntType)
	sum := p.Alloc(&tree.Binary{Code: tree.Plus, L: x, R: c}, tree.IntType)
	p.Append(fn, p.Alloc(&tree.Return{X: sum}, tree.VoidType))

	b, err := Func(context.Background(), nil, p, fn)
	require.NoError(t, err)

	assert.Equal(t, "public int add (int x)\n{\n\treturn (x + 42);\n}\n", string(b))
}

func TestFuncLabels(t *testing.T) {
	p := tree.New()

	body := p.Alloc(&tree.StmtList{}, tree.VoidType)
	fn := p.Alloc(&tree.FuncDecl{Name: "loop", Ret: tree.VoidType, Body: body}, tree.VoidType)

	named := p.Alloc(&tree.LabelDecl{Name: "top", Func: fn}, tree.VoidType)
	anon := p.Alloc(&tree.LabelDecl{Func: fn}, tree.VoidType)

	p.Append(fn, p.Alloc(&tree.LabelExpr{Label: named}, tree.VoidType))
	p.Append(fn, p.Alloc(&tree.Goto{Label: anon}, tree.VoidType))
	p.Append(fn, p.Alloc(&tree.Return{X: tree.None}, tree.VoidType))

	b, err := Func(context.Background(), nil, p, fn)
	require.NoError(t, err)

	assert.Contains(t, string(b), "top:\n")
	assert.Contains(t, string(b), "\tgoto <D.")
	assert.Contains(t, string(b), "\treturn;\n")
}

func TestFuncDeclaration(t *testing.T) {
	p := tree.New()

	fn := p.Alloc(&tree.FuncDecl{Name: "puts", Linkage: tree.Extern, Ret: tree.IntType, Body: tree.None, Variadic: true}, tree.IntType)

	b, err := Func(context.Background(), nil, p, fn)
	require.NoError(t, err)

	assert.Equal(t, "extern int puts (...)\n", string(b))
}
