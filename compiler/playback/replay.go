package playback

import (
	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/tree"
)

func (p *Context) alloc(loc *Location, x any, tp tree.Type) tree.Node {
	n := p.Pkg.Alloc(x, tp)

	p.setLocation(n, loc)

	return n
}

func (p *Context) Type(n tree.Node) tree.Type { return p.Pkg.Type(n) }

func (p *Context) GetType(t enum.Type) tree.Type {
	switch t {
	case enum.Void:
		return tree.VoidType
	case enum.VoidPtr:
		return p.Pkg.PointerTo(tree.VoidType)
	case enum.Bool:
		return tree.BoolType
	case enum.Char:
		return tree.CharType
	case enum.SignedChar:
		return tree.SignedCharType
	case enum.UnsignedChar:
		return tree.UnsignedCharType
	case enum.Short:
		return tree.ShortType
	case enum.UnsignedShort:
		return tree.UnsignedShortType
	case enum.Int:
		return tree.IntType
	case enum.UnsignedInt:
		return tree.UnsignedIntType
	case enum.Long:
		return tree.LongType
	case enum.UnsignedLong:
		return tree.UnsignedLongType
	case enum.LongLong:
		return tree.LongLongType
	case enum.UnsignedLongLong:
		return tree.UnsignedLLType
	case enum.Float:
		return tree.FloatType
	case enum.Double:
		return tree.DoubleType
	case enum.LongDouble:
		return tree.LongDoubleType
	case enum.ConstCharPtr:
		return p.Pkg.PointerTo(p.Pkg.ConstOf(tree.CharType))
	case enum.SizeT:
		return tree.SizeType
	case enum.FilePtr:
		return p.Pkg.PointerTo(tree.FileType)
	}

	p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.Type) value: %d", int(t))

	return nil
}

func (p *Context) PointerTo(t tree.Type) tree.Type { return p.Pkg.PointerTo(t) }

func (p *Context) ConstOf(t tree.Type) tree.Type { return p.Pkg.ConstOf(t) }

func (p *Context) NewField(loc *Location, t tree.Type, name string) *tree.Field {
	return &tree.Field{Name: name, Type: t}
}

func (p *Context) NewStructType(loc *Location, name string, fields []*tree.Field) *tree.Struct {
	s := &tree.Struct{
		Name:   name,
		Fields: fields,
	}

	s.Layout()

	p.Pkg.Structs = append(p.Pkg.Structs, s)

	return s
}

func (p *Context) NewParam(loc *Location, t tree.Type, name string) tree.Node {
	return p.alloc(loc, &tree.ParmDecl{Name: name}, t)
}

func (p *Context) NewGlobal(loc *Location, kind enum.GlobalKind, t tree.Type, name string) tree.Node {
	var l tree.Linkage

	switch kind {
	case enum.GlobalExported:
		l = tree.Public
	case enum.GlobalInternal:
		l = tree.Static
	case enum.GlobalImported:
		l = tree.Extern
	default:
		p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.GlobalKind) value: %d", int(kind))
		return tree.None
	}

	n := p.alloc(loc, &tree.VarDecl{Name: name, Linkage: l, Func: tree.None}, t)

	p.Pkg.Globals = append(p.Pkg.Globals, n)

	return n
}

func (p *Context) NewRValueFromInt(t tree.Type, v int64) tree.Node {
	switch u := tree.Unqual(t).(type) {
	case *tree.Float:
		return p.alloc(nil, &tree.RealCst{V: float64(v)}, t)
	case *tree.Ptr:
		return p.alloc(nil, &tree.UintCst{V: uint64(v)}, t)
	case *tree.Int:
		if !u.Signed {
			return p.alloc(nil, &tree.UintCst{V: uint64(v)}, t)
		}
	}

	return p.alloc(nil, &tree.IntCst{V: v}, t)
}

func (p *Context) NewRValueFromDouble(t tree.Type, v float64) tree.Node {
	if tree.IsIntegral(t) {
		return p.NewRValueFromInt(t, int64(v))
	}

	return p.alloc(nil, &tree.RealCst{V: v}, t)
}

func (p *Context) NewRValueFromPtr(t tree.Type, v uintptr) tree.Node {
	return p.alloc(nil, &tree.UintCst{V: uint64(v)}, t)
}

func (p *Context) NewStringLiteral(s string) tree.Node {
	t := p.Pkg.PointerTo(p.Pkg.ConstOf(tree.CharType))

	return p.alloc(nil, &tree.StringCst{V: s}, t)
}

func (p *Context) NewUnaryOp(loc *Location, op enum.UnaryOp, t tree.Type, a tree.Node) tree.Node {
	var code tree.Code

	switch op {
	case enum.Minus:
		code = tree.Negate
	case enum.BitwiseNegate:
		code = tree.BitNot
	case enum.LogicalNegate:
		code = tree.TruthNot
		a = p.truth(loc, a)
	default:
		p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.UnaryOp) value: %d", int(op))
		return tree.None
	}

	return p.alloc(loc, &tree.Unary{Code: code, X: a}, t)
}

func (p *Context) NewBinaryOp(loc *Location, op enum.BinaryOp, t tree.Type, a, b tree.Node) tree.Node {
	var code tree.Code

	switch op {
	case enum.Plus:
		code = tree.Plus
	case enum.Sub:
		code = tree.Minus
	case enum.Mult:
		code = tree.Mult
	case enum.Divide:
		if tree.IsFloat(t) {
			code = tree.RDiv
		} else {
			code = tree.TruncDiv
		}
	case enum.Modulo:
		code = tree.TruncMod
	case enum.BitwiseAnd:
		code = tree.BitAnd
	case enum.BitwiseXor:
		code = tree.BitXor
	case enum.BitwiseOr:
		code = tree.BitIor
	case enum.LogicalAnd:
		code = tree.TruthAndIf
		a, b = p.truth(loc, a), p.truth(loc, b)
	case enum.LogicalOr:
		code = tree.TruthOrIf
		a, b = p.truth(loc, a), p.truth(loc, b)
	default:
		p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.BinaryOp) value: %d", int(op))
		return tree.None
	}

	return p.alloc(loc, &tree.Binary{Code: code, L: a, R: b}, t)
}

func (p *Context) NewComparison(loc *Location, op enum.Comparison, a, b tree.Node) tree.Node {
	var code tree.Code

	switch op {
	case enum.EQ:
		code = tree.EQ
	case enum.NE:
		code = tree.NE
	case enum.LT:
		code = tree.LT
	case enum.LE:
		code = tree.LE
	case enum.GT:
		code = tree.GT
	case enum.GE:
		code = tree.GE
	default:
		p.Errorf(diag.UnrecognizedEnum, "unrecognized (enum.Comparison) value: %d", int(op))
		return tree.None
	}

	return p.alloc(loc, &tree.Binary{Code: code, L: a, R: b}, tree.BoolType)
}

func (p *Context) NewCall(loc *Location, fn *Function, args []tree.Node) tree.Node {
	d := fn.Decl

	if len(args) < len(d.Params) || len(args) > len(d.Params) && !d.Variadic {
		p.Errorf(diag.InvalidArgument, "call to %s: %d arguments, want %d", d.Name, len(args), len(d.Params))
		return tree.None
	}

	conv := make([]tree.Node, len(args))

	for i, a := range args {
		conv[i] = a

		if i < len(d.Params) {
			conv[i] = p.coerce(loc, p.Type(d.Params[i]), a)
		}
	}

	return p.alloc(loc, &tree.Call{Fn: fn.Node, Args: conv}, d.Ret)
}

// NewArrayLookup computes *(ptr + (size_t)index * sizeof(*ptr)).
func (p *Context) NewArrayLookup(loc *Location, ptr, index tree.Node) tree.Node {
	pt := p.Type(ptr)

	elem := tree.Pointee(pt)
	if elem == nil {
		p.Errorf(diag.InvalidArgument, "array lookup on non-pointer type %v", pt)
		return tree.None
	}

	idx := p.alloc(loc, &tree.Convert{X: index}, tree.SizeType)
	size := p.alloc(loc, &tree.UintCst{V: uint64(elem.Size())}, tree.SizeType)
	off := p.alloc(loc, &tree.Binary{Code: tree.Mult, L: idx, R: size}, tree.SizeType)
	addr := p.alloc(loc, &tree.PointerPlus{P: ptr, Off: off}, pt)

	return p.alloc(loc, &tree.Indirect{X: addr}, elem)
}

func (p *Context) AccessField(loc *Location, x tree.Node, f *tree.Field) tree.Node {
	s := tree.AsStruct(p.Type(x))
	if s == nil {
		p.Errorf(diag.InvalidArgument, "access field %s of non-struct type %v", f.Name, p.Type(x))
		return tree.None
	}

	return p.component(loc, x, s, f)
}

func (p *Context) DereferenceField(loc *Location, ptr tree.Node, f *tree.Field) tree.Node {
	elem := tree.Pointee(p.Type(ptr))

	s := tree.AsStruct(elem)
	if s == nil {
		p.Errorf(diag.InvalidArgument, "dereference field %s through %v", f.Name, p.Type(ptr))
		return tree.None
	}

	x := p.alloc(loc, &tree.Indirect{X: ptr}, elem)

	return p.component(loc, x, s, f)
}

func (p *Context) Dereference(loc *Location, ptr tree.Node) tree.Node {
	elem := tree.Pointee(p.Type(ptr))
	if elem == nil {
		p.Errorf(diag.InvalidArgument, "dereference of non-pointer type %v", p.Type(ptr))
		return tree.None
	}

	return p.alloc(loc, &tree.Indirect{X: ptr}, elem)
}

func (p *Context) Address(loc *Location, lv tree.Node) tree.Node {
	return p.alloc(loc, &tree.Addr{X: lv}, p.Pkg.PointerTo(p.Type(lv)))
}

func (p *Context) component(loc *Location, x tree.Node, s *tree.Struct, f *tree.Field) tree.Node {
	fl := s.Lookup(f.Name)
	if fl == nil {
		p.Errorf(diag.FieldNotFound, "field not found: %q in %v", f.Name, s)
		return tree.None
	}

	return p.alloc(loc, &tree.Component{X: x, Field: fl}, fl.Type)
}

// truth converts x into an int truth value: x != 0.
func (p *Context) truth(loc *Location, x tree.Node) tree.Node {
	t := p.Type(x)
	zero := p.NewRValueFromInt(t, 0)

	return p.alloc(loc, &tree.Binary{Code: tree.NE, L: x, R: zero}, tree.IntType)
}

// coerce converts x to t if its type differs.
func (p *Context) coerce(loc *Location, t tree.Type, x tree.Node) tree.Node {
	if tree.Unqual(p.Type(x)) == tree.Unqual(t) {
		return x
	}

	return p.alloc(loc, &tree.Convert{X: x}, tree.Unqual(t))
}
