package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/jit/compiler/tree"
)

// Func dumps a function in the native tree form.
func Func(ctx context.Context, b []byte, p *tree.Package, fn tree.Node) (_ []byte, err error) {
	f := p.Func(fn)

	b = app(b, 0, "%v %v %v (", f.Linkage, f.Ret, f.Name)

	for i, a := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", p.Type(a), p.Nodes[a].(*tree.ParmDecl).Name)
	}

	if f.Variadic && len(f.Params) != 0 {
		b = append(b, ", "...)
	}

	if f.Variadic {
		b = append(b, "..."...)
	}

	b = append(b, ")\n"...)

	if f.Body == tree.None {
		return b, nil
	}

	b = app(b, 0, "{\n")

	for _, l := range f.Locals {
		b = app(b, 1, "%v %v;\n", p.Type(l), p.Nodes[l].(*tree.VarDecl).Name)
	}

	if len(f.Locals) != 0 {
		b = append(b, '\n')
	}

	for _, s := range p.Nodes[f.Body].(*tree.StmtList).List {
		b, err = stmt(ctx, b, p, s, 1)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	b = app(b, 0, "}\n")

	return b, nil
}

func stmt(ctx context.Context, b []byte, p *tree.Package, s tree.Node, d int) (_ []byte, err error) {
	switch x := p.Nodes[s].(type) {
	case *tree.ExprStmt:
		b = app(b, d, "")

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "expr")
		}

		b = append(b, ";\n"...)
	case *tree.Modify:
		b = app(b, d, "")

		b, err = expr(ctx, b, p, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = append(b, " = "...)

		b, err = expr(ctx, b, p, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		b = append(b, ";\n"...)
	case *tree.Goto:
		b = app(b, d, "goto %v;\n", labelName(p, x.Label))
	case *tree.LabelExpr:
		b = app(b, d-1, "%v:\n", labelName(p, x.Label))
	case *tree.Cond:
		b = app(b, d, "if (")

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ")\n"...)

		b, err = stmt(ctx, b, p, x.Then, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if x.Else != tree.None {
			b = app(b, d, "else\n")

			b, err = stmt(ctx, b, p, x.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}
	case *tree.Return:
		if x.X == tree.None {
			b = app(b, d, "return;\n")
			break
		}

		b = app(b, d, "return ")

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}

		b = append(b, ";\n"...)
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func expr(ctx context.Context, b []byte, p *tree.Package, e tree.Node) (_ []byte, err error) {
	switch x := p.Nodes[e].(type) {
	case *tree.IntCst:
		b = hfmt.Appendf(b, "%d", x.V)
	case *tree.UintCst:
		b = hfmt.Appendf(b, "%du", x.V)
	case *tree.RealCst:
		b = hfmt.Appendf(b, "%g", x.V)
	case *tree.StringCst:
		b = hfmt.Appendf(b, "%q", x.V)
	case *tree.ParmDecl:
		b = append(b, x.Name...)
	case *tree.VarDecl:
		b = append(b, x.Name...)
	case *tree.FuncDecl:
		b = append(b, x.Name...)
	case *tree.Unary:
		b = append(b, x.Code.Op()...)

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case *tree.Binary:
		b = append(b, '(')

		b, err = expr(ctx, b, p, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = hfmt.Appendf(b, " %s ", x.Code.Op())

		b, err = expr(ctx, b, p, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	case *tree.Call:
		b, err = expr(ctx, b, p, x.Fn)
		if err != nil {
			return nil, errors.Wrap(err, "callee")
		}

		b = append(b, " ("...)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = expr(ctx, b, p, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	case *tree.Convert:
		b = hfmt.Appendf(b, "(%v) ", p.Type(e))

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case *tree.Indirect:
		b = append(b, '*')

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case *tree.Addr:
		b = append(b, '&')

		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case *tree.Component:
		b, err = expr(ctx, b, p, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = hfmt.Appendf(b, ".%s", x.Field.Name)
	case *tree.PointerPlus:
		b = append(b, '(')

		b, err = expr(ctx, b, p, x.P)
		if err != nil {
			return nil, errors.Wrap(err, "pointer")
		}

		b = append(b, " p+ "...)

		b, err = expr(ctx, b, p, x.Off)
		if err != nil {
			return nil, errors.Wrap(err, "offset")
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func labelName(p *tree.Package, l tree.Node) string {
	if n := p.Label(l).Name; n != "" {
		return n
	}

	return string(hfmt.Appendf(nil, "<D.%d>", l))
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	if d < 0 {
		d = 0
	}
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
