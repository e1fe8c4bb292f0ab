// Package enum holds the closed value sets of the recording API.
package enum

import "fmt"

type (
	Type         int
	FunctionKind int
	GlobalKind   int
	UnaryOp      int
	BinaryOp     int
	Comparison   int
)

const (
	Void Type = iota
	VoidPtr
	Bool
	Char
	SignedChar
	UnsignedChar
	Short
	UnsignedShort
	Int
	UnsignedInt
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Float
	Double
	LongDouble
	ConstCharPtr
	SizeT
	FilePtr

	NumTypes
)

const (
	// Exported functions are visible to Result.Code.
	Exported FunctionKind = iota
	Internal
	// Imported functions are provided by the host process and have no body.
	Imported
	AlwaysInline

	NumFunctionKinds
)

const (
	GlobalExported GlobalKind = iota
	GlobalInternal
	GlobalImported

	NumGlobalKinds
)

const (
	Minus UnaryOp = iota
	BitwiseNegate
	LogicalNegate

	NumUnaryOps
)

const (
	Plus BinaryOp = iota
	Sub
	Mult
	Divide
	Modulo
	BitwiseAnd
	BitwiseXor
	BitwiseOr
	LogicalAnd
	LogicalOr

	NumBinaryOps
)

const (
	EQ Comparison = iota
	NE
	LT
	LE
	GT
	GE

	NumComparisons
)

func (x Type) Valid() bool         { return x >= 0 && x < NumTypes }
func (x FunctionKind) Valid() bool { return x >= 0 && x < NumFunctionKinds }
func (x GlobalKind) Valid() bool   { return x >= 0 && x < NumGlobalKinds }
func (x UnaryOp) Valid() bool      { return x >= 0 && x < NumUnaryOps }
func (x BinaryOp) Valid() bool     { return x >= 0 && x < NumBinaryOps }
func (x Comparison) Valid() bool   { return x >= 0 && x < NumComparisons }

var typeNames = [NumTypes]string{
	Void:             "void",
	VoidPtr:          "void *",
	Bool:             "bool",
	Char:             "char",
	SignedChar:       "signed char",
	UnsignedChar:     "unsigned char",
	Short:            "short",
	UnsignedShort:    "unsigned short",
	Int:              "int",
	UnsignedInt:      "unsigned int",
	Long:             "long",
	UnsignedLong:     "unsigned long",
	LongLong:         "long long",
	UnsignedLongLong: "unsigned long long",
	Float:            "float",
	Double:           "double",
	LongDouble:       "long double",
	ConstCharPtr:     "const char *",
	SizeT:            "size_t",
	FilePtr:          "FILE *",
}

func (x Type) String() string {
	if !x.Valid() {
		return fmt.Sprintf("type(%d)", int(x))
	}

	return typeNames[x]
}

func (x FunctionKind) String() string {
	switch x {
	case Exported:
		return "exported"
	case Internal:
		return "internal"
	case Imported:
		return "imported"
	case AlwaysInline:
		return "always_inline"
	}

	return fmt.Sprintf("function_kind(%d)", int(x))
}

func (x GlobalKind) String() string {
	switch x {
	case GlobalExported:
		return "exported"
	case GlobalInternal:
		return "internal"
	case GlobalImported:
		return "imported"
	}

	return fmt.Sprintf("global_kind(%d)", int(x))
}

func (x UnaryOp) String() string {
	switch x {
	case Minus:
		return "-"
	case BitwiseNegate:
		return "~"
	case LogicalNegate:
		return "!"
	}

	return fmt.Sprintf("unary_op(%d)", int(x))
}

func (x BinaryOp) String() string {
	switch x {
	case Plus:
		return "+"
	case Sub:
		return "-"
	case Mult:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case BitwiseAnd:
		return "&"
	case BitwiseXor:
		return "^"
	case BitwiseOr:
		return "|"
	case LogicalAnd:
		return "&&"
	case LogicalOr:
		return "||"
	}

	return fmt.Sprintf("binary_op(%d)", int(x))
}

func (x Comparison) String() string {
	switch x {
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	}

	return fmt.Sprintf("comparison(%d)", int(x))
}
