package tree

import (
	"tlog.app/go/errors"

	"github.com/slowlang/jit/compiler/set"
)

type verifier struct {
	*Package

	fn     Node
	f      *FuncDecl
	placed set.Bitmap
	seen   set.Bitmap
}

// Verify checks structural consistency of a function body.
func (p *Package) Verify(fn Node) error {
	v := &verifier{
		Package: p,
		fn:      fn,
		f:       p.Func(fn),
	}

	if v.f.Body == None {
		return nil
	}

	l, ok := p.Nodes[v.f.Body].(*StmtList)
	if !ok {
		return errors.New("%s: body is %T", v.f.Name, p.Nodes[v.f.Body])
	}

	for _, s := range l.List {
		if err := v.stmt(s); err != nil {
			return errors.Wrap(err, "%s", v.f.Name)
		}
	}

	for _, lab := range v.f.Labels {
		d := p.Label(lab)

		if d.Used && !v.placed.IsSet(int(lab)) {
			return errors.New("%s: label %v used but not placed", v.f.Name, lab)
		}
	}

	return nil
}

func (v *verifier) stmt(s Node) error {
	if err := v.check(s); err != nil {
		return err
	}

	switch x := v.Nodes[s].(type) {
	case *ExprStmt:
		return v.expr(x.X)
	case *Modify:
		if err := v.expr(x.L); err != nil {
			return err
		}

		return v.expr(x.R)
	case *Goto:
		return v.label(x.Label)
	case *LabelExpr:
		if err := v.label(x.Label); err != nil {
			return err
		}

		if v.placed.IsSet(int(x.Label)) {
			return errors.New("label %v placed twice", x.Label)
		}

		v.placed.Set(int(x.Label))

		return nil
	case *Cond:
		if err := v.expr(x.X); err != nil {
			return err
		}

		if err := v.stmt(x.Then); err != nil {
			return err
		}

		if x.Else == None {
			return nil
		}

		return v.stmt(x.Else)
	case *Return:
		if x.X == None {
			if !IsVoid(v.f.Ret) {
				return errors.New("return without value from non-void function")
			}

			return nil
		}

		if IsVoid(v.f.Ret) {
			return errors.New("return with value from void function")
		}

		return v.expr(x.X)
	default:
		return errors.New("node %v: unexpected statement %T", s, x)
	}
}

func (v *verifier) expr(e Node) error {
	if err := v.check(e); err != nil {
		return err
	}

	if v.seen.IsSet(int(e)) {
		return nil
	}

	v.seen.Set(int(e))

	switch x := v.Nodes[e].(type) {
	case *IntCst, *UintCst, *RealCst, *StringCst, *ParmDecl, *VarDecl, *FuncDecl:
		return nil
	case *Unary:
		return v.expr(x.X)
	case *Binary:
		if err := v.expr(x.L); err != nil {
			return err
		}

		return v.expr(x.R)
	case *Call:
		if err := v.expr(x.Fn); err != nil {
			return err
		}

		for _, a := range x.Args {
			if err := v.expr(a); err != nil {
				return err
			}
		}

		return nil
	case *Convert:
		return v.expr(x.X)
	case *Indirect:
		if !IsPointer(v.Types[x.X]) {
			return errors.New("node %v: indirect through %v", e, v.Types[x.X])
		}

		return v.expr(x.X)
	case *Addr:
		return v.expr(x.X)
	case *Component:
		if AsStruct(v.Types[x.X]) == nil {
			return errors.New("node %v: component of %v", e, v.Types[x.X])
		}

		return v.expr(x.X)
	case *PointerPlus:
		if err := v.expr(x.P); err != nil {
			return err
		}

		return v.expr(x.Off)
	default:
		return errors.New("node %v: unexpected expression %T", e, x)
	}
}

func (v *verifier) label(l Node) error {
	if err := v.check(l); err != nil {
		return err
	}

	d, ok := v.Nodes[l].(*LabelDecl)
	if !ok {
		return errors.New("node %v: not a label: %T", l, v.Nodes[l])
	}

	if d.Func != v.fn {
		return errors.New("label %v belongs to another function", l)
	}

	return nil
}

func (v *verifier) check(n Node) error {
	if n < 0 || int(n) >= len(v.Nodes) {
		return errors.New("node %v out of range", n)
	}

	if v.Types[n] == nil {
		return errors.New("node %v has no type", n)
	}

	return nil
}
