package jit

import (
	"unsafe"

	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/playback"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	UnaryOp    = enum.UnaryOp
	BinaryOp   = enum.BinaryOp
	Comparison = enum.Comparison
	GlobalKind = enum.GlobalKind

	// Value is anything readable: *RValue, *LValue or *Param.
	Value interface {
		rvalue() *RValue
	}

	// Assignable is anything writable: *LValue or *Param.
	Assignable interface {
		Value
		lvalue() *LValue
	}

	valueKind int

	RValue struct {
		memento

		kind valueKind
		loc  *Location
		tp   *Type

		i   int64
		f   float64
		ptr uintptr
		str *String

		unop  UnaryOp
		binop BinaryOp
		cmp   Comparison

		a, b  *RValue
		lv    *LValue
		field *Field
		fn    *Function
		args  []*RValue

		name   string
		global GlobalKind
		local  *Function
	}

	LValue struct {
		RValue
	}

	Param struct {
		LValue

		fn *Function
	}
)

const (
	intConst valueKind = iota
	doubleConst
	ptrConst
	stringConst
	unaryOp
	binaryOp
	comparison
	call
	arrayLookup
	accessField
	addressOf

	// l-values
	global
	local
	param
	lvalueField
	derefField
	deref
)

const (
	Minus         = enum.Minus
	BitwiseNegate = enum.BitwiseNegate
	LogicalNegate = enum.LogicalNegate

	Plus       = enum.Plus
	Sub        = enum.Sub
	Mult       = enum.Mult
	Divide     = enum.Divide
	Modulo     = enum.Modulo
	BitwiseAnd = enum.BitwiseAnd
	BitwiseXor = enum.BitwiseXor
	BitwiseOr  = enum.BitwiseOr
	LogicalAnd = enum.LogicalAnd
	LogicalOr  = enum.LogicalOr

	EQ = enum.EQ
	NE = enum.NE
	LT = enum.LT
	LE = enum.LE
	GT = enum.GT
	GE = enum.GE

	GlobalExported = enum.GlobalExported
	GlobalInternal = enum.GlobalInternal
	GlobalImported = enum.GlobalImported
)

func (r *RValue) rvalue() *RValue { return r }

func (l *LValue) rvalue() *RValue {
	if l == nil {
		return nil
	}

	return &l.RValue
}

func (l *LValue) lvalue() *LValue { return l }

func (p *Param) rvalue() *RValue {
	if p == nil {
		return nil
	}

	return &p.RValue
}

func (p *Param) lvalue() *LValue {
	if p == nil {
		return nil
	}

	return &p.LValue
}

func (r *RValue) owner() *Context {
	if r == nil {
		return nil
	}

	return r.ctx
}

func (l *LValue) owner() *Context { return l.rvalue().owner() }
func (p *Param) owner() *Context  { return p.rvalue().owner() }

func rv(v Value) *RValue {
	if v == nil {
		return nil
	}

	return v.rvalue()
}

func lv(v Assignable) *LValue {
	if v == nil {
		return nil
	}

	return v.lvalue()
}

// Type is the recorded type of the value.
func (r *RValue) Type() *Type { return r.tp }

func (c *Context) newRValue(x *RValue) *RValue {
	c.record(x)
	return x
}

func (c *Context) newLValue(x *LValue) *LValue {
	c.record(x)
	return x
}

func (c *Context) NewParam(loc *Location, t *Type, name string) *Param {
	switch {
	case t == nil:
		c.errorf(InvalidArgument, "NULL type")
		return nil
	case name == "":
		c.errorf(InvalidArgument, "NULL name")
		return nil
	case t.isVoid():
		c.errorf(InvalidArgument, "param %s: void type", name)
		return nil
	}

	x := &Param{LValue: LValue{RValue: RValue{kind: param, loc: loc, tp: t, name: name}}}
	c.record(x)

	return x
}

func (c *Context) NewGlobal(loc *Location, kind GlobalKind, t *Type, name string) *LValue {
	switch {
	case !kind.Valid():
		c.errorf(UnrecognizedEnum, "unrecognized (enum.GlobalKind) value: %d", int(kind))
		return nil
	case t == nil:
		c.errorf(InvalidArgument, "NULL type")
		return nil
	case name == "":
		c.errorf(InvalidArgument, "NULL name")
		return nil
	case t.isVoid():
		c.errorf(InvalidArgument, "global %s: void type", name)
		return nil
	}

	return c.newLValue(&LValue{RValue: RValue{kind: global, loc: loc, tp: t, name: name, global: kind}})
}

func (c *Context) NewRValueFromInt(t *Type, v int) *RValue {
	if t == nil {
		c.errorf(InvalidArgument, "NULL type")
		return nil
	}

	return c.newRValue(&RValue{kind: intConst, tp: t, i: int64(v)})
}

func (c *Context) Zero(t *Type) *RValue { return c.NewRValueFromInt(t, 0) }
func (c *Context) One(t *Type) *RValue  { return c.NewRValueFromInt(t, 1) }

func (c *Context) NewRValueFromDouble(t *Type, v float64) *RValue {
	if t == nil {
		c.errorf(InvalidArgument, "NULL type")
		return nil
	}

	return c.newRValue(&RValue{kind: doubleConst, tp: t, f: v})
}

func (c *Context) NewRValueFromPtr(t *Type, v unsafe.Pointer) *RValue {
	if t == nil {
		c.errorf(InvalidArgument, "NULL type")
		return nil
	}

	return c.newRValue(&RValue{kind: ptrConst, tp: t, ptr: uintptr(v)})
}

// Null is a null pointer of type t.
func (c *Context) Null(t *Type) *RValue { return c.NewRValueFromPtr(t, nil) }

func (c *Context) NewStringLiteral(s string) *RValue {
	str := c.NewString(s)
	tp := c.GetType(ConstCharPtr)

	return c.newRValue(&RValue{kind: stringConst, tp: tp, str: str})
}

func (c *Context) NewUnaryOp(loc *Location, op UnaryOp, t *Type, a Value) *RValue {
	x := rv(a)

	switch {
	case !op.Valid():
		c.errorf(UnrecognizedEnum, "unrecognized (enum.UnaryOp) value: %d", int(op))
		return nil
	case t == nil:
		c.errorf(InvalidArgument, "NULL type")
		return nil
	case x == nil:
		c.errorf(InvalidArgument, "NULL operand")
		return nil
	}

	return c.newRValue(&RValue{kind: unaryOp, loc: loc, tp: t, unop: op, a: x})
}

func (c *Context) NewBinaryOp(loc *Location, op BinaryOp, t *Type, a, b Value) *RValue {
	x, y := rv(a), rv(b)

	switch {
	case !op.Valid():
		c.errorf(UnrecognizedEnum, "unrecognized (enum.BinaryOp) value: %d", int(op))
		return nil
	case t == nil:
		c.errorf(InvalidArgument, "NULL type")
		return nil
	case x == nil || y == nil:
		c.errorf(InvalidArgument, "NULL operand")
		return nil
	}

	return c.newRValue(&RValue{kind: binaryOp, loc: loc, tp: t, binop: op, a: x, b: y})
}

func (c *Context) NewComparison(loc *Location, op Comparison, a, b Value) *RValue {
	x, y := rv(a), rv(b)

	switch {
	case !op.Valid():
		c.errorf(UnrecognizedEnum, "unrecognized (enum.Comparison) value: %d", int(op))
		return nil
	case x == nil || y == nil:
		c.errorf(InvalidArgument, "NULL operand")
		return nil
	}

	tp := c.GetType(Bool)

	return c.newRValue(&RValue{kind: comparison, loc: loc, tp: tp, cmp: op, a: x, b: y})
}

func (c *Context) NewCall(loc *Location, fn *Function, args ...Value) *RValue {
	if fn == nil {
		c.errorf(InvalidArgument, "NULL function")
		return nil
	}

	if len(args) < len(fn.params) || len(args) > len(fn.params) && !fn.variadic {
		c.errorf(InvalidArgument, "call to %s: got %d args, expected %d", fn.name, len(args), len(fn.params))
		return nil
	}

	xs := make([]*RValue, len(args))

	for i, a := range args {
		xs[i] = rv(a)

		if xs[i] == nil {
			c.errorf(InvalidArgument, "call to %s: NULL arg %d", fn.name, i)
			return nil
		}
	}

	return c.newRValue(&RValue{kind: call, loc: loc, tp: fn.ret, fn: fn, args: xs})
}

// NewArrayLookup is ptr[index]. Pointers and arrays are not distinguished.
func (c *Context) NewArrayLookup(loc *Location, ptr, index Value) *LValue {
	x, i := rv(ptr), rv(index)

	switch {
	case x == nil:
		c.errorf(InvalidArgument, "NULL ptr")
		return nil
	case i == nil:
		c.errorf(InvalidArgument, "NULL index")
		return nil
	}

	elem := x.tp.pointee()
	if elem == nil {
		c.errorf(InvalidArgument, "array lookup on non-pointer type %v", x.tp)
		return nil
	}

	return c.newLValue(&LValue{RValue: RValue{kind: arrayLookup, loc: loc, tp: elem, a: x, b: i}})
}

// AccessField reads a field of a struct value.
func (r *RValue) AccessField(loc *Location, f *Field) *RValue {
	if r == nil || f == nil {
		ctxOf(r, f).errorf(InvalidArgument, "NULL value or field")
		return nil
	}

	return r.ctx.newRValue(&RValue{kind: accessField, loc: loc, tp: f.tp, a: r, field: f})
}

// AccessField selects a field of a struct l-value.
func (l *LValue) AccessField(loc *Location, f *Field) *LValue {
	if l == nil || f == nil {
		ctxOf(l, f).errorf(InvalidArgument, "NULL value or field")
		return nil
	}

	return l.ctx.newLValue(&LValue{RValue: RValue{kind: lvalueField, loc: loc, tp: f.tp, lv: l, field: f}})
}

// DereferenceField is ptr->field.
func (r *RValue) DereferenceField(loc *Location, f *Field) *LValue {
	if r == nil || f == nil {
		ctxOf(r, f).errorf(InvalidArgument, "NULL value or field")
		return nil
	}

	return r.ctx.newLValue(&LValue{RValue: RValue{kind: derefField, loc: loc, tp: f.tp, a: r, field: f}})
}

// Dereference is *ptr.
func (r *RValue) Dereference(loc *Location) *LValue {
	if r == nil {
		ctxOf().errorf(InvalidArgument, "NULL pointer")
		return nil
	}

	elem := r.tp.pointee()
	if elem == nil {
		r.ctx.errorf(InvalidArgument, "dereference of non-pointer type %v", r.tp)
		return nil
	}

	return r.ctx.newLValue(&LValue{RValue: RValue{kind: deref, loc: loc, tp: elem, a: r}})
}

// Address is &lvalue.
func (l *LValue) Address(loc *Location) *RValue {
	if l == nil {
		ctxOf().errorf(InvalidArgument, "NULL lvalue")
		return nil
	}

	return l.ctx.newRValue(&RValue{kind: addressOf, loc: loc, tp: l.tp.Pointer(), lv: l})
}

func (r *RValue) replayInto(p *playback.Context) {
	r.associate(p, r.materialize(p))
}

func (r *RValue) materialize(p *playback.Context) tree.Node {
	loc := r.loc.native(p)

	switch r.kind {
	case intConst:
		return p.NewRValueFromInt(r.tp.native(p), r.i)
	case doubleConst:
		return p.NewRValueFromDouble(r.tp.native(p), r.f)
	case ptrConst:
		return p.NewRValueFromPtr(r.tp.native(p), r.ptr)
	case stringConst:
		return p.NewStringLiteral(r.str.text)
	case unaryOp:
		return p.NewUnaryOp(loc, r.unop, r.tp.native(p), r.a.native(p))
	case binaryOp:
		return p.NewBinaryOp(loc, r.binop, r.tp.native(p), r.a.native(p), r.b.native(p))
	case comparison:
		return p.NewComparison(loc, r.cmp, r.a.native(p), r.b.native(p))
	case call:
		args := make([]tree.Node, len(r.args))

		for i, a := range r.args {
			args[i] = a.native(p)
		}

		return p.NewCall(loc, r.fn.native(p), args)
	case arrayLookup:
		return p.NewArrayLookup(loc, r.a.native(p), r.b.native(p))
	case accessField:
		return p.AccessField(loc, r.a.native(p), r.field.native(p))
	case lvalueField:
		return p.AccessField(loc, r.lv.native(p), r.field.native(p))
	case derefField:
		return p.DereferenceField(loc, r.a.native(p), r.field.native(p))
	case deref:
		return p.Dereference(loc, r.a.native(p))
	case addressOf:
		return p.Address(loc, r.lv.native(p))
	case global:
		return p.NewGlobal(loc, r.global, r.tp.native(p), r.name)
	case local:
		return r.local.native(p).NewLocal(loc, r.tp.native(p), r.name)
	case param:
		return p.NewParam(loc, r.tp.native(p), r.name)
	}

	panic(r.kind)
}

func (r *RValue) native(p *playback.Context) tree.Node {
	return r.assoc(p).(tree.Node)
}

func (l *LValue) native(p *playback.Context) tree.Node {
	return l.RValue.native(p)
}

// pointee records the type pointed to if it's known.
func (t *Type) pointee() *Type {
	for t != nil && t.kind == constType {
		t = t.of
	}

	switch {
	case t == nil:
		return nil
	case t.kind == pointerType:
		return t.of
	case t.kind == primitiveType && t.prim == ConstCharPtr:
		return t.ctx.GetType(Char).Const()
	case t.kind == primitiveType && t.prim == VoidPtr:
		return t.ctx.GetType(Void)
	}

	return nil
}
