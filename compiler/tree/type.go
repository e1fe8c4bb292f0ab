package tree

import (
	"fmt"
)

type (
	Type interface {
		Size() int
		Align() int
		String() string
	}

	Void struct{}

	Bool struct{}

	Int struct {
		Name   string
		Bits   int16
		Signed bool
	}

	Float struct {
		Name  string
		Bytes int16
	}

	// Opaque is an incomplete aggregate only reachable through pointers.
	Opaque struct {
		Name string
	}

	Ptr struct {
		X Type
	}

	Const struct {
		X Type
	}

	Struct struct {
		Name   string
		Fields []*Field

		size  int
		align int
	}

	Field struct {
		Name   string
		Type   Type
		Offset int
	}
)

// Target is LP64.
var (
	VoidType = &Void{}
	BoolType = &Bool{}

	CharType          = &Int{Name: "char", Bits: 8, Signed: true}
	SignedCharType    = &Int{Name: "signed char", Bits: 8, Signed: true}
	UnsignedCharType  = &Int{Name: "unsigned char", Bits: 8}
	ShortType         = &Int{Name: "short", Bits: 16, Signed: true}
	UnsignedShortType = &Int{Name: "unsigned short", Bits: 16}
	IntType           = &Int{Name: "int", Bits: 32, Signed: true}
	UnsignedIntType   = &Int{Name: "unsigned int", Bits: 32}
	LongType          = &Int{Name: "long", Bits: 64, Signed: true}
	UnsignedLongType  = &Int{Name: "unsigned long", Bits: 64}
	LongLongType      = &Int{Name: "long long", Bits: 64, Signed: true}
	UnsignedLLType    = &Int{Name: "unsigned long long", Bits: 64}
	SizeType          = &Int{Name: "__SIZE_TYPE__", Bits: 64}

	FloatType      = &Float{Name: "float", Bytes: 4}
	DoubleType     = &Float{Name: "double", Bytes: 8}
	LongDoubleType = &Float{Name: "long double", Bytes: 16}

	FileType = &Opaque{Name: "struct __slowjit_file"}
)

func (x *Void) Size() int      { return 1 }
func (x *Void) Align() int     { return 1 }
func (x *Void) String() string { return "void" }

func (x *Bool) Size() int      { return 1 }
func (x *Bool) Align() int     { return 1 }
func (x *Bool) String() string { return "_Bool" }

func (x *Int) Size() int      { return int(x.Bits) / 8 }
func (x *Int) Align() int     { return x.Size() }
func (x *Int) String() string { return x.Name }

func (x *Float) Size() int      { return int(x.Bytes) }
func (x *Float) Align() int     { return int(x.Bytes) }
func (x *Float) String() string { return x.Name }

func (x *Opaque) Size() int      { return 0 }
func (x *Opaque) Align() int     { return 1 }
func (x *Opaque) String() string { return x.Name }

func (x *Ptr) Size() int      { return 8 }
func (x *Ptr) Align() int     { return 8 }
func (x *Ptr) String() string { return x.X.String() + " *" }

func (x *Const) Size() int      { return x.X.Size() }
func (x *Const) Align() int     { return x.X.Align() }
func (x *Const) String() string { return x.X.String() + " const" }

func (x *Struct) Size() int      { return x.size }
func (x *Struct) Align() int     { return x.align }
func (x *Struct) String() string { return "struct " + x.Name }

// Layout assigns field offsets in declaration order
// with natural alignment and tail padding.
func (x *Struct) Layout() {
	off, align := 0, 1

	for _, f := range x.Fields {
		a := f.Type.Align()
		if a > align {
			align = a
		}

		off = roundUp(off, a)
		f.Offset = off
		off += f.Type.Size()
	}

	x.size = roundUp(off, align)
	x.align = align
}

// Lookup finds a field by name. It's a linear scan.
func (x *Struct) Lookup(name string) *Field {
	for _, f := range x.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Unqual strips const qualifiers.
func Unqual(t Type) Type {
	for {
		c, ok := t.(*Const)
		if !ok {
			return t
		}

		t = c.X
	}
}

func IsIntegral(t Type) bool {
	switch Unqual(t).(type) {
	case *Int, *Bool:
		return true
	}

	return false
}

func IsFloat(t Type) bool {
	_, ok := Unqual(t).(*Float)
	return ok
}

func IsPointer(t Type) bool {
	_, ok := Unqual(t).(*Ptr)
	return ok
}

func IsVoid(t Type) bool {
	_, ok := Unqual(t).(*Void)
	return ok
}

// Pointee returns the type pointed to or nil.
func Pointee(t Type) Type {
	p, ok := Unqual(t).(*Ptr)
	if !ok {
		return nil
	}

	return p.X
}

func AsStruct(t Type) *Struct {
	s, _ := Unqual(t).(*Struct)
	return s
}

func roundUp(x, a int) int {
	if a <= 1 {
		return x
	}

	return (x + a - 1) / a * a
}

func (f *Field) String() string {
	return fmt.Sprintf("%v %v @%d", f.Type, f.Name, f.Offset)
}
