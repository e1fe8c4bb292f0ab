package back

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/tree"
)

type emitter struct {
	*tree.Package

	lines   *tree.LineTable
	curline tree.Expanded
}

func storage(l tree.Linkage) string {
	switch l {
	case tree.Static:
		return "static "
	case tree.Extern:
		return "extern "
	case tree.Inline:
		return "static inline __attribute__((always_inline)) "
	default:
		return ""
	}
}

// ctype spells t in C using backend-private struct tags.
func (e *emitter) ctype(t tree.Type) string {
	switch x := t.(type) {
	case *tree.Ptr:
		return e.ctype(x.X) + " *"
	case *tree.Const:
		return e.ctype(x.X) + " const"
	case *tree.Struct:
		return "struct " + e.tag(x)
	}

	return t.String()
}

// tag is unique per struct so equally named structs don't clash.
func (e *emitter) tag(s *tree.Struct) string {
	for i, x := range e.Structs {
		if x == s {
			return cname("s", i, s.Name)
		}
	}

	return cname("s", len(e.Structs), s.Name)
}

// local names params and locals apart from keywords, types and each other.
func (e *emitter) local(n tree.Node) string {
	switch x := e.Nodes[n].(type) {
	case *tree.ParmDecl:
		return cname("v", int(n), x.Name)
	case *tree.VarDecl:
		return cname("v", int(n), x.Name)
	}

	panic(n)
}

func field(s *tree.Struct, f *tree.Field) string {
	for i, x := range s.Fields {
		if x == f {
			return cname("f", i, f.Name)
		}
	}

	panic("back: field " + f.Name + " is not in " + s.Name)
}

func cname(prefix string, idx int, name string) string {
	b := hfmt.Appendf(nil, "%s%d_", prefix, idx)

	for i := 0; i < len(name); i++ {
		c := name[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b = append(b, c)
		default:
			b = append(b, '_')
		}
	}

	return string(b)
}

func (e *emitter) prototype(b []byte, fn tree.Node) []byte {
	f := e.Func(fn)

	b = hfmt.Appendf(b, "%s%s %s(", storage(f.Linkage), e.ctype(f.Ret), f.Name)

	for i, a := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = hfmt.Appendf(b, "%s %s", e.ctype(e.Type(a)), e.local(a))
	}

	switch {
	case f.Variadic && len(f.Params) != 0:
		b = append(b, ", ..."...)
	case f.Variadic:
	case len(f.Params) == 0:
		b = append(b, "void"...)
	}

	b = append(b, ')')

	return b
}

func (e *emitter) funcDef(ctx context.Context, b []byte, fn tree.Node) (_ []byte, err error) {
	f := e.Func(fn)

	if tlog.If("emit") {
		tlog.SpanFromContext(ctx).Printw("emit func", "name", f.Name, "locals", len(f.Locals), "labels", len(f.Labels))
	}

	b = e.prototype(b, fn)
	b = append(b, "\n{\n"...)

	for _, l := range f.Locals {
		b = hfmt.Appendf(b, "\t%s %s;\n", e.ctype(e.Type(l)), e.local(l))
	}

	for _, s := range e.Nodes[f.Body].(*tree.StmtList).List {
		b, err = e.stmt(b, s, 1)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %v", s)
		}
	}

	b = append(b, "}\n"...)

	return b, nil
}

func (e *emitter) stmt(b []byte, s tree.Node, d int) (_ []byte, err error) {
	b = e.line(b, s)

	switch x := e.Nodes[s].(type) {
	case *tree.ExprStmt:
		b = indent(b, d)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, err
		}

		b = append(b, ";\n"...)
	case *tree.Modify:
		b = indent(b, d)

		b, err = e.expr(b, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = append(b, " = "...)

		b, err = e.expr(b, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		b = append(b, ";\n"...)
	case *tree.Goto:
		b = indent(b, d)
		b = hfmt.Appendf(b, "goto L%d;\n", x.Label)
	case *tree.LabelExpr:
		b = indent(b, d-1)
		b = hfmt.Appendf(b, "L%d:;", x.Label)

		if n := e.Label(x.Label).Name; n != "" {
			b = hfmt.Appendf(b, " /* %s */", strings.ReplaceAll(n, "*/", "* /"))
		}

		b = append(b, '\n')
	case *tree.Cond:
		b = indent(b, d)
		b = append(b, "if ("...)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ") {\n"...)

		b, err = e.stmt(b, x.Then, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if x.Else != tree.None {
			b = indent(b, d)
			b = append(b, "} else {\n"...)

			b, err = e.stmt(b, x.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}

		b = indent(b, d)
		b = append(b, "}\n"...)
	case *tree.Return:
		b = indent(b, d)

		if x.X == tree.None {
			b = append(b, "return;\n"...)
			break
		}

		b = append(b, "return "...)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}

		b = append(b, ";\n"...)
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func (e *emitter) expr(b []byte, n tree.Node) (_ []byte, err error) {
	tp := e.ctype(e.Type(n))

	switch x := e.Nodes[n].(type) {
	case *tree.IntCst:
		if x.V == math.MinInt64 {
			b = hfmt.Appendf(b, "((%s)(-9223372036854775807LL - 1))", tp)
			break
		}

		b = hfmt.Appendf(b, "((%s)%dLL)", tp, x.V)
	case *tree.UintCst:
		b = hfmt.Appendf(b, "((%s)%dULL)", tp, x.V)
	case *tree.RealCst:
		b = hfmt.Appendf(b, "((%s)%s)", tp, realLit(x.V))
	case *tree.StringCst:
		b = hfmt.Appendf(b, "((%s)", tp)
		b = cString(b, x.V)
		b = append(b, ')')
	case *tree.ParmDecl:
		b = append(b, e.local(n)...)
	case *tree.VarDecl:
		if x.Func == tree.None {
			b = append(b, x.Name...)
			break
		}

		b = append(b, e.local(n)...)
	case *tree.FuncDecl:
		b = append(b, x.Name...)
	case *tree.Unary:
		b = hfmt.Appendf(b, "((%s)(%s", tp, x.Code.Op())

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = append(b, "))"...)
	case *tree.Binary:
		b = hfmt.Appendf(b, "((%s)(", tp)

		b, err = e.expr(b, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = hfmt.Appendf(b, " %s ", x.Code.Op())

		b, err = e.expr(b, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, "))"...)
	case *tree.Call:
		b = append(b, '(')

		b, err = e.expr(b, x.Fn)
		if err != nil {
			return nil, errors.Wrap(err, "callee")
		}

		b = append(b, '(')

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = e.expr(b, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, "))"...)
	case *tree.Convert:
		b = hfmt.Appendf(b, "((%s)(", tp)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = append(b, "))"...)
	case *tree.Indirect:
		b = append(b, "(*"...)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = append(b, ')')
	case *tree.Addr:
		b = append(b, "(&"...)

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = append(b, ')')
	case *tree.Component:
		b = append(b, '(')

		b, err = e.expr(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}

		b = hfmt.Appendf(b, ".%s)", field(tree.AsStruct(e.Type(x.X)), x.Field))
	case *tree.PointerPlus:
		b = hfmt.Appendf(b, "((%s)((char *)", tp)

		b, err = e.expr(b, x.P)
		if err != nil {
			return nil, errors.Wrap(err, "pointer")
		}

		b = append(b, " + "...)

		b, err = e.expr(b, x.Off)
		if err != nil {
			return nil, errors.Wrap(err, "offset")
		}

		b = append(b, "))"...)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

// line emits a line marker when the node position moves.
func (e *emitter) line(b []byte, n tree.Node) []byte {
	if e.lines == nil {
		return b
	}

	x, ok := e.lines.Expand(e.Pos[n])
	if !ok {
		return b
	}

	if x.Line == e.curline.Line && x.File == e.curline.File {
		return b
	}

	e.curline = x

	b = hfmt.Appendf(b, "#line %d ", x.Line)
	b = cString(b, x.File)
	b = append(b, '\n')

	return b
}

func realLit(v float64) string {
	switch {
	case math.IsNaN(v):
		return `__builtin_nan("")`
	case math.IsInf(v, 1):
		return "__builtin_inf()"
	case math.IsInf(v, -1):
		return "(-__builtin_inf())"
	}

	return strconv.FormatFloat(v, 'x', -1, 64)
}

func cString(b []byte, s string) []byte {
	b = append(b, '"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '"' || c == '\\':
			b = append(b, '\\', c)
		case c == '\n':
			b = append(b, '\\', 'n')
		case c == '\t':
			b = append(b, '\\', 't')
		case c == '?':
			b = append(b, '\\', '?')
		case c < 0x20 || c >= 0x7f:
			b = append(b, '\\', '0'+c>>6, '0'+c>>3&7, '0'+c&7)
		default:
			b = append(b, c)
		}
	}

	return append(b, '"')
}

func indent(b []byte, d int) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	return b
}
