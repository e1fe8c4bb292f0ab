package jit

import (
	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/playback"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	Primitive = enum.Type

	typeKind int

	Type struct {
		memento

		kind typeKind

		prim   Primitive
		of     *Type
		name   string
		loc    *Location
		fields []*Field
	}

	Field struct {
		memento

		loc  *Location
		tp   *Type
		name string

		parent *Type
	}
)

const (
	primitiveType typeKind = iota
	pointerType
	constType
	structType
)

const (
	Void             = enum.Void
	VoidPtr          = enum.VoidPtr
	Bool             = enum.Bool
	Char             = enum.Char
	SignedChar       = enum.SignedChar
	UnsignedChar     = enum.UnsignedChar
	Short            = enum.Short
	UnsignedShort    = enum.UnsignedShort
	Int              = enum.Int
	UnsignedInt      = enum.UnsignedInt
	Long             = enum.Long
	UnsignedLong     = enum.UnsignedLong
	LongLong         = enum.LongLong
	UnsignedLongLong = enum.UnsignedLongLong
	Float            = enum.Float
	Double           = enum.Double
	LongDouble       = enum.LongDouble
	ConstCharPtr     = enum.ConstCharPtr
	SizeT            = enum.SizeT
	FilePtr          = enum.FilePtr
)

func (c *Context) GetType(t Primitive) *Type {
	if !t.Valid() {
		c.errorf(UnrecognizedEnum, "unrecognized (enum.Type) value: %d", int(t))
		return nil
	}

	x := &Type{kind: primitiveType, prim: t}
	c.record(x)

	return x
}

// Pointer returns a new pointer-to-t type. Results are not memoised.
func (t *Type) Pointer() *Type {
	if t == nil {
		ctxOf().errorf(InvalidArgument, "NULL type")
		return nil
	}

	x := &Type{kind: pointerType, of: t}
	t.ctx.record(x)

	return x
}

// Const returns a new const-qualified t. Results are not memoised.
func (t *Type) Const() *Type {
	if t == nil {
		ctxOf().errorf(InvalidArgument, "NULL type")
		return nil
	}

	x := &Type{kind: constType, of: t}
	t.ctx.record(x)

	return x
}

func (c *Context) NewField(loc *Location, t *Type, name string) *Field {
	switch {
	case t == nil:
		c.errorf(InvalidArgument, "NULL type")
		return nil
	case name == "":
		c.errorf(InvalidArgument, "NULL name")
		return nil
	case t.isVoid():
		c.errorf(InvalidArgument, "field %s: void type", name)
		return nil
	}

	x := &Field{loc: loc, tp: t, name: name}
	c.record(x)

	return x
}

func (c *Context) NewStructType(loc *Location, name string, fields []*Field) *Type {
	if name == "" {
		c.errorf(InvalidArgument, "NULL name")
		return nil
	}

	for i, f := range fields {
		if f == nil {
			c.errorf(InvalidArgument, "NULL field %d of struct %s", i, name)
			return nil
		}

		if f.parent != nil {
			c.errorf(InvalidArgument, "field %s already belongs to struct %s", f.name, f.parent.name)
			return nil
		}

		for _, g := range fields[:i] {
			if g == f {
				c.errorf(InvalidArgument, "field %s used twice in struct %s", f.name, name)
				return nil
			}
		}
	}

	x := &Type{kind: structType, name: name, loc: loc, fields: fields}

	for _, f := range fields {
		f.parent = x
	}

	c.record(x)

	return x
}

func (t *Type) replayInto(p *playback.Context) {
	var x tree.Type

	switch t.kind {
	case primitiveType:
		x = p.GetType(t.prim)
	case pointerType:
		x = p.PointerTo(t.of.native(p))
	case constType:
		x = p.ConstOf(t.of.native(p))
	case structType:
		fs := make([]*tree.Field, len(t.fields))

		for i, f := range t.fields {
			fs[i] = f.native(p)
		}

		x = p.NewStructType(t.loc.native(p), t.name, fs)
	default:
		panic(t.kind)
	}

	t.associate(p, x)
}

func (t *Type) native(p *playback.Context) tree.Type {
	x, _ := t.assoc(p).(tree.Type)
	return x
}

func (f *Field) replayInto(p *playback.Context) {
	f.associate(p, p.NewField(f.loc.native(p), f.tp.native(p), f.name))
}

func (f *Field) native(p *playback.Context) *tree.Field {
	return f.assoc(p).(*tree.Field)
}

// Fields returns struct fields in declaration order.
func (t *Type) Fields() []*Field { return t.fields }

// Field finds a struct field by name. Linear scan.
func (t *Type) Field(name string) *Field {
	for _, f := range t.fields {
		if f.name == name {
			return f
		}
	}

	return nil
}

func (f *Field) Name() string { return f.name }
func (f *Field) Type() *Type  { return f.tp }

func (t *Type) isVoid() bool {
	return t.kind == primitiveType && t.prim == enum.Void
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	switch t.kind {
	case primitiveType:
		return t.prim.String()
	case pointerType:
		return t.of.String() + " *"
	case constType:
		return "const " + t.of.String()
	case structType:
		return "struct " + t.name
	}

	return "type?"
}

func (t *Type) owner() *Context {
	if t == nil {
		return nil
	}

	return t.ctx
}

func (f *Field) owner() *Context {
	if f == nil {
		return nil
	}

	return f.ctx
}
