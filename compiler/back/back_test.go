package back

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/jit/compiler/toolchain"
	"github.com/slowlang/jit/compiler/tree"
)

type recRunner struct {
	args [][]string
}

func (r *recRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.args = append(r.args, append([]string{name}, args...))

	return nil, nil
}

// answer builds "int answer(void) { return 42; }".
func answer(p *tree.Package) tree.Node {
	body := p.Alloc(&tree.StmtList{}, tree.VoidType)
	fn := p.Alloc(&tree.FuncDecl{Name: "answer", Ret: tree.IntType, Body: body}, tree.IntType)
	p.Funcs = append(p.Funcs, fn)

	c := p.Alloc(&tree.IntCst{V: 42}, tree.IntType)
	p.Append(fn, p.Alloc(&tree.Return{X: c}, tree.VoidType))

	return fn
}

func TestFinalizeOnce(t *testing.T) {
	b := Acquire()
	defer b.Release()

	p := tree.New()
	fn := answer(p)

	ctx := context.Background()

	require.NoError(t, b.Finalize(ctx, p, fn))

	assert.Panics(t, func() {
		_ = b.Finalize(ctx, p, fn)
	})
}

func TestUnplacedLabel(t *testing.T) {
	b := Acquire()
	defer b.Release()

	p := tree.New()
	fn := answer(p)

	lab := p.Alloc(&tree.LabelDecl{Name: "loop", Func: fn, Expr: tree.None, Used: true}, tree.VoidType)
	p.Func(fn).Labels = append(p.Func(fn).Labels, lab)
	p.Append(fn, p.Alloc(&tree.Goto{Label: lab}, tree.VoidType))

	err := b.Finalize(context.Background(), p, fn)
	require.Error(t, err)
	assert.Equal(t, &UnplacedLabelError{Func: "answer", Label: "loop"}, err)
	assert.EqualError(t, err, `answer: label "loop" used but not placed`)

	p = tree.New()
	fn = answer(p)
	p.Append(fn, p.Alloc(&tree.Return{X: tree.None}, tree.VoidType))

	b.SelfCheck = true

	err = b.Finalize(context.Background(), p, fn)
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*UnplacedLabelError))
}

func TestUnit(t *testing.T) {
	b := Acquire()
	defer b.Release()

	var dump bytes.Buffer

	b.DumpInitial = true
	b.DumpLowered = true
	b.SelfCheck = true
	b.Dump = &dump

	p := tree.New()

	s := &tree.Struct{
		Name: "pair",
		Fields: []*tree.Field{
			{Name: "A", Type: tree.IntType},
			{Name: "B", Type: p.PointerTo(tree.IntType)},
		},
	}
	s.Layout()
	p.Structs = append(p.Structs, s)

	g := p.Alloc(&tree.VarDecl{Name: "counter", Linkage: tree.Static, Func: tree.None}, tree.LongType)
	p.Globals = append(p.Globals, g)

	puts := p.Alloc(&tree.FuncDecl{Name: "puts", Linkage: tree.Extern, Ret: tree.IntType, Body: tree.None}, tree.IntType)
	arg := p.Alloc(&tree.ParmDecl{Name: "s"}, p.PointerTo(p.ConstOf(tree.CharType)))
	p.Func(puts).Params = []tree.Node{arg}
	p.Funcs = append(p.Funcs, puts)

	fn := answer(p)

	ctx := context.Background()

	require.NoError(t, b.Finalize(ctx, p, puts))
	require.NoError(t, b.Finalize(ctx, p, fn))

	text := string(b.Unit(p, true))

	assert.Contains(t, text, "struct s0_pair {\n\tint f0_A;\n\tint * f1_B;\n};\n")
	assert.Contains(t, text, `_Static_assert(sizeof(struct s0_pair) == 16, "struct s0_pair size");`)
	assert.Contains(t, text, `_Static_assert(__builtin_offsetof(struct s0_pair, f1_B) == 8, "struct s0_pair field f1_B offset");`)
	assert.Contains(t, text, "static long counter;\n")
	assert.Contains(t, text, fmt.Sprintf("extern int puts(char const * v%d_s);\n", arg))
	assert.Contains(t, text, "int answer(void);\n")
	assert.Contains(t, text, "\treturn ((int)42LL);\n")

	assert.Contains(t, dump.String(), "public int answer (")
	assert.Contains(t, dump.String(), "return ((int)42LL);")

	r := &recRunner{}
	b.Toolchain = &toolchain.Toolchain{Driver: "cc", Runner: r}

	dir := t.TempDir()
	src := filepath.Join(dir, "fake.c")

	asm, err := b.Main(ctx, p, DriverArgs(Flags{ProgName: "prog", Input: src, Opt: 2, Debug: true, Quiet: true, SelfCheck: true}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fake.s"), asm)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))

	require.Len(t, r.args, 1)
	assert.Equal(t, []string{"cc", "-fPIC", "-O2", "-g", "-S", src, "-o", asm}, r.args[0])
}

func TestMainDumpAll(t *testing.T) {
	b := Acquire()
	defer b.Release()

	p := tree.New()
	fn := answer(p)

	ctx := context.Background()
	require.NoError(t, b.Finalize(ctx, p, fn))

	r := &recRunner{}
	b.Toolchain = &toolchain.Toolchain{Driver: "cc", Runner: r}

	src := filepath.Join(t.TempDir(), "fake.c")

	asm, err := b.Main(ctx, p, DriverArgs(Flags{ProgName: "prog", Input: src, Quiet: true, DumpAll: true}))
	require.NoError(t, err)

	require.Len(t, r.args, 1)
	assert.Equal(t, []string{"cc", "-fPIC", "-O0", "-fdump-tree-all", "-fdump-rtl-all", "-fdump-ipa-all", "-S", src, "-o", asm}, r.args[0])
}

// Equally named structs and names clashing with C syntax get private spellings.
func TestPrivateNames(t *testing.T) {
	b := Acquire()
	defer b.Release()

	p := tree.New()

	var ss [2]*tree.Struct

	for i := range ss {
		ss[i] = &tree.Struct{Name: "S", Fields: []*tree.Field{{Name: "int", Type: tree.IntType}}}
		ss[i].Layout()
		p.Structs = append(p.Structs, ss[i])
	}

	x := p.Alloc(&tree.ParmDecl{Name: "int"}, tree.IntType)
	body := p.Alloc(&tree.StmtList{}, tree.VoidType)
	fn := p.Alloc(&tree.FuncDecl{Name: "get", Ret: tree.IntType, Params: []tree.Node{x}, Body: body}, tree.IntType)
	p.Funcs = append(p.Funcs, fn)

	a := p.Alloc(&tree.VarDecl{Name: "a b", Func: fn}, ss[0])
	c := p.Alloc(&tree.VarDecl{Name: "a b", Func: fn}, ss[1])
	p.Func(fn).Locals = []tree.Node{a, c}

	fa := p.Alloc(&tree.Component{X: a, Field: ss[0].Fields[0]}, tree.IntType)
	p.Append(fn, p.Alloc(&tree.Modify{L: fa, R: x}, tree.VoidType))
	p.Append(fn, p.Alloc(&tree.Return{X: fa}, tree.VoidType))

	require.NoError(t, b.Finalize(context.Background(), p, fn))

	text := string(b.Unit(p, false))

	assert.Contains(t, text, "struct s0_S {\n\tint f0_int;\n};\n")
	assert.Contains(t, text, "struct s1_S {\n\tint f0_int;\n};\n")
	assert.Contains(t, text, fmt.Sprintf("int get(int v%d_int);\n", x))
	assert.Contains(t, text, fmt.Sprintf("\tstruct s0_S v%d_a_b;\n", a))
	assert.Contains(t, text, fmt.Sprintf("\tstruct s1_S v%d_a_b;\n", c))
	assert.Contains(t, text, fmt.Sprintf("(v%d_a_b.f0_int) = v%d_int;", a, x))
	assert.NotContains(t, text, "struct S")
}

func TestParseArgs(t *testing.T) {
	f, err := ParseArgs([]string{"prog", "x/fake.c", "-fPIC", "-O3", "-g", "-quiet"})
	require.NoError(t, err)

	assert.Equal(t, Flags{ProgName: "prog", Input: "x/fake.c", Output: "x/fake.s", PIC: true, Opt: 3, Debug: true, Quiet: true}, f)

	args := DriverArgs(Flags{ProgName: "prog", Input: "x/fake.c", Opt: 1, SelfCheck: true, DumpAll: true})
	assert.Equal(t, []string{"prog", "x/fake.c", "-fPIC", "-O1", "--self-check", "-fdump-tree-all", "-fdump-rtl-all", "-fdump-ipa-all"}, args)

	f, err = ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, Flags{ProgName: "prog", Input: "x/fake.c", Output: "x/fake.s", PIC: true, Opt: 1, SelfCheck: true, DumpAll: true}, f)

	_, err = ParseArgs([]string{"prog", "fake.c", "-O9"})
	assert.Error(t, err)

	_, err = ParseArgs([]string{"prog", "fake.c", "--what"})
	assert.Error(t, err)

	_, err = ParseArgs([]string{"prog"})
	assert.Error(t, err)
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\n\001"`, string(cString(nil, "a\"b\\c\n\x01")))
	assert.Equal(t, "0x1.8p+01", realLit(3))
	assert.Equal(t, "__builtin_inf()", realLit(posInf()))
}

func posInf() float64 {
	z := 0.0
	return 1 / z
}
