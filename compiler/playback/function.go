package playback

import (
	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/tree"
)

type Function struct {
	p *Context

	Node tree.Node
	Decl *tree.FuncDecl
	Kind enum.FunctionKind
}

func (p *Context) NewFunction(loc *Location, kind enum.FunctionKind, ret tree.Type, name string, params []tree.Node, variadic bool) *Function {
	var l tree.Linkage

	switch kind {
	case enum.Exported:
		l = tree.Public
	case enum.Internal:
		l = tree.Static
	case enum.Imported:
		l = tree.Extern
	case enum.AlwaysInline:
		l = tree.Inline
	default:
		p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.FunctionKind) value: %d", int(kind))
		return nil
	}

	d := &tree.FuncDecl{
		Name:     name,
		Linkage:  l,
		Ret:      ret,
		Params:   params,
		Variadic: variadic,
		Body:     tree.None,
	}

	n := p.alloc(loc, d, ret)

	if kind != enum.Imported {
		d.Body = p.Pkg.Alloc(&tree.StmtList{}, tree.VoidType)
	}

	p.Pkg.Funcs = append(p.Pkg.Funcs, n)

	f := &Function{
		p:    p,
		Node: n,
		Decl: d,
		Kind: kind,
	}

	p.funcs = append(p.funcs, f)

	return f
}

func (f *Function) NewLocal(loc *Location, t tree.Type, name string) tree.Node {
	f.body()

	n := f.p.alloc(loc, &tree.VarDecl{Name: name, Func: f.Node}, t)

	f.Decl.Locals = append(f.Decl.Locals, n)

	return n
}

func (f *Function) NewForwardLabel(name string) tree.Node {
	f.body()

	n := f.p.Pkg.Alloc(&tree.LabelDecl{Name: name, Func: f.Node, Expr: tree.None}, tree.VoidType)

	f.Decl.Labels = append(f.Decl.Labels, n)

	return n
}

func (f *Function) AddEval(loc *Location, x tree.Node) {
	f.add(loc, &tree.ExprStmt{X: x})
}

// AddAssignment stores rv into lv converting it to the target type.
func (f *Function) AddAssignment(loc *Location, lv, rv tree.Node) {
	rv = f.p.coerce(loc, f.p.Type(lv), rv)

	f.add(loc, &tree.Modify{L: lv, R: rv})
}

// AddAssignmentOp is lv = lv op rv.
func (f *Function) AddAssignmentOp(loc *Location, lv tree.Node, op enum.BinaryOp, rv tree.Node) {
	x := f.p.NewBinaryOp(loc, op, f.p.Type(lv), lv, rv)
	if x == tree.None {
		return
	}

	f.AddAssignment(loc, lv, x)
}

// AddComment places a named label that emits no code.
func (f *Function) AddComment(loc *Location, text string) {
	l := f.NewForwardLabel(text)

	f.PlaceLabel(loc, l)
}

func (f *Function) AddConditional(loc *Location, cond, onTrue, onFalse tree.Node) {
	then := f.jump(loc, onTrue)

	els := tree.None
	if onFalse != tree.None {
		els = f.jump(loc, onFalse)
	}

	f.add(loc, &tree.Cond{X: cond, Then: then, Else: els})
}

func (f *Function) PlaceLabel(loc *Location, l tree.Node) {
	d := f.p.Pkg.Label(l)

	if d.Expr != tree.None {
		panic("playback: label placed twice: " + d.Name)
	}

	d.Expr = f.add(loc, &tree.LabelExpr{Label: l})
}

func (f *Function) AddJump(loc *Location, l tree.Node) {
	f.p.Pkg.Append(f.Node, f.jump(loc, l))
}

func (f *Function) AddReturn(loc *Location, rv tree.Node) {
	if rv != tree.None {
		rv = f.p.coerce(loc, f.Decl.Ret, rv)
	}

	f.add(loc, &tree.Return{X: rv})
}

func (f *Function) jump(loc *Location, l tree.Node) tree.Node {
	f.body()

	f.p.Pkg.Label(l).Used = true

	return f.p.alloc(loc, &tree.Goto{Label: l}, tree.VoidType)
}

func (f *Function) add(loc *Location, stmt any) tree.Node {
	f.body()

	n := f.p.alloc(loc, stmt, tree.VoidType)

	f.p.Pkg.Append(f.Node, n)

	return n
}

func (f *Function) body() {
	if f.Kind == enum.Imported {
		panic("playback: body of imported function " + f.Decl.Name)
	}
}
