package tree

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Node int
	Pos  int

	Code    int
	Linkage int

	// Package is an arena. Nodes, Types and Pos are indexed by Node.
	Package struct {
		Nodes []any
		Types []Type
		Pos   []Pos

		Funcs   []Node
		Globals []Node
		Structs []*Struct

		ptrs   map[Type]*Ptr
		consts map[Type]*Const
	}

	FuncDecl struct {
		Name     string
		Linkage  Linkage
		Ret      Type
		Params   []Node
		Variadic bool

		Locals []Node
		Labels []Node
		Body   Node

		Finalized bool
	}

	ParmDecl struct {
		Name string
	}

	VarDecl struct {
		Name    string
		Linkage Linkage
		Func    Node
	}

	LabelDecl struct {
		Name string
		Func Node
		Expr Node

		Used bool
	}

	IntCst struct {
		V int64
	}

	UintCst struct {
		V uint64
	}

	RealCst struct {
		V float64
	}

	StringCst struct {
		V string
	}

	Unary struct {
		Code Code
		X    Node
	}

	Binary struct {
		Code Code
		L, R Node
	}

	Call struct {
		Fn   Node
		Args []Node
	}

	Convert struct {
		X Node
	}

	Indirect struct {
		X Node
	}

	Addr struct {
		X Node
	}

	Component struct {
		X     Node
		Field *Field
	}

	PointerPlus struct {
		P, Off Node
	}

	StmtList struct {
		List []Node
	}

	ExprStmt struct {
		X Node
	}

	Modify struct {
		L, R Node
	}

	Goto struct {
		Label Node
	}

	LabelExpr struct {
		Label Node
	}

	Cond struct {
		X          Node
		Then, Else Node
	}

	Return struct {
		X Node
	}
)

const (
	None Node = -1

	NoPos Pos = 0
)

const (
	Negate Code = iota
	BitNot
	TruthNot

	Plus
	Minus
	Mult
	RDiv
	TruncDiv
	TruncMod
	BitAnd
	BitXor
	BitIor
	TruthAndIf
	TruthOrIf

	EQ
	NE
	LT
	LE
	GT
	GE
)

const (
	Public Linkage = iota
	Static
	Extern
	Inline
)

var codes = []struct {
	name, op string
}{
	Negate:     {"negate_expr", "-"},
	BitNot:     {"bit_not_expr", "~"},
	TruthNot:   {"truth_not_expr", "!"},
	Plus:       {"plus_expr", "+"},
	Minus:      {"minus_expr", "-"},
	Mult:       {"mult_expr", "*"},
	RDiv:       {"rdiv_expr", "/"},
	TruncDiv:   {"trunc_div_expr", "/"},
	TruncMod:   {"trunc_mod_expr", "%"},
	BitAnd:     {"bit_and_expr", "&"},
	BitXor:     {"bit_xor_expr", "^"},
	BitIor:     {"bit_ior_expr", "|"},
	TruthAndIf: {"truth_andif_expr", "&&"},
	TruthOrIf:  {"truth_orif_expr", "||"},
	EQ:         {"eq_expr", "=="},
	NE:         {"ne_expr", "!="},
	LT:         {"lt_expr", "<"},
	LE:         {"le_expr", "<="},
	GT:         {"gt_expr", ">"},
	GE:         {"ge_expr", ">="},
}

func New() *Package {
	return &Package{
		ptrs:   make(map[Type]*Ptr),
		consts: make(map[Type]*Const),
	}
}

func (p *Package) id() Node {
	return Node(len(p.Nodes))
}

func (p *Package) Alloc(x any, tp Type) Node {
	id := p.id()

	p.Nodes = append(p.Nodes, x)
	p.Types = append(p.Types, tp)
	p.Pos = append(p.Pos, NoPos)

	return id
}

func (p *Package) Type(n Node) Type {
	return p.Types[n]
}

func (p *Package) Func(n Node) *FuncDecl {
	return p.Nodes[n].(*FuncDecl)
}

func (p *Package) Label(n Node) *LabelDecl {
	return p.Nodes[n].(*LabelDecl)
}

// PointerTo returns the canonical pointer type to t.
func (p *Package) PointerTo(t Type) *Ptr {
	if x, ok := p.ptrs[t]; ok {
		return x
	}

	x := &Ptr{X: t}
	p.ptrs[t] = x

	return x
}

// ConstOf returns the canonical const-qualified t.
func (p *Package) ConstOf(t Type) Type {
	if _, ok := t.(*Const); ok {
		return t
	}

	if x, ok := p.consts[t]; ok {
		return x
	}

	x := &Const{X: t}
	p.consts[t] = x

	return x
}

// Append adds a statement to a function body.
func (p *Package) Append(fn Node, stmt Node) {
	f := p.Func(fn)
	l := p.Nodes[f.Body].(*StmtList)

	l.List = append(l.List, stmt)
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codes) {
		return "unknown_code"
	}

	return codes[c].name
}

// Op is the operator token.
func (c Code) Op() string {
	if c < 0 || int(c) >= len(codes) {
		return "?"
	}

	return codes[c].op
}

func (c Code) IsComparison() bool {
	return c >= EQ && c <= GE
}

func (l Linkage) String() string {
	switch l {
	case Public:
		return "public"
	case Static:
		return "static"
	case Extern:
		return "extern"
	case Inline:
		return "inline"
	}

	return "linkage?"
}

func (x Binary) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyString(b, "code", x.Code.String())
	b = e.AppendKeyInt64(b, "l", int64(x.L))
	b = e.AppendKeyInt64(b, "r", int64(x.R))

	return b
}
