package back

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/metrics"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	// Flags is the parsed driver command line.
	Flags struct {
		ProgName string
		Input    string
		Output   string

		PIC       bool
		Opt       int
		Debug     bool
		Quiet     bool
		SelfCheck bool

		// DumpAll passes the driver's internal pass dumps through.
		DumpAll bool
	}
)

// dumpAll are the driver flags writing every internal pass dump next to the output.
var dumpAll = []string{"-fdump-tree-all", "-fdump-rtl-all", "-fdump-ipa-all"}

// ParseArgs parses "progname input.c [-fPIC] [-O<n>] [-g] [-quiet] [--self-check] [-fdump-*-all]".
func ParseArgs(args []string) (f Flags, err error) {
	if len(args) < 2 {
		return f, errors.New("usage: %v input.c [flags]", args)
	}

	f.ProgName = args[0]
	f.Input = args[1]

	if !strings.HasSuffix(f.Input, ".c") {
		return f, errors.New("input %q: expected .c file", f.Input)
	}

	f.Output = strings.TrimSuffix(f.Input, ".c") + ".s"

	for _, a := range args[2:] {
		switch {
		case a == "-fPIC":
			f.PIC = true
		case a == "-g":
			f.Debug = true
		case a == "-quiet":
			f.Quiet = true
		case a == "--self-check":
			f.SelfCheck = true
		case a == dumpAll[0], a == dumpAll[1], a == dumpAll[2]:
			f.DumpAll = true
		case strings.HasPrefix(a, "-O"):
			f.Opt, err = strconv.Atoi(a[2:])
			if err != nil || f.Opt < 0 || f.Opt > 3 {
				return f, errors.New("bad optimization level: %q", a)
			}
		default:
			return f, errors.New("unrecognized flag: %q", a)
		}
	}

	return f, nil
}

// DriverArgs builds the command line ParseArgs parses back into f.
// Output is derived from Input and PIC is always set.
func DriverArgs(f Flags) []string {
	args := []string{f.ProgName, f.Input, "-fPIC", "-O" + strconv.Itoa(f.Opt)}

	if f.Debug {
		args = append(args, "-g")
	}

	if f.Quiet {
		args = append(args, "-quiet")
	}

	if f.SelfCheck {
		args = append(args, "--self-check")
	}

	if f.DumpAll {
		args = append(args, dumpAll...)
	}

	return args
}

// Main writes the translation unit of all finalized functions
// and compiles it to assembly. It returns the assembly path.
func (b *Backend) Main(ctx context.Context, p *tree.Package, args []string) (_ string, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: main", "args", args)
	defer tr.Finish("err", &err)

	f, err := ParseArgs(args)
	if err != nil {
		return "", errors.Wrap(err, "parse args")
	}

	if b.Toolchain == nil {
		return "", errors.New("no toolchain")
	}

	start := time.Now()

	text := b.Unit(p, f.SelfCheck)

	err = os.WriteFile(f.Input, text, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "write unit")
	}

	if !f.Quiet {
		w := b.dump()

		for _, u := range b.units {
			_, _ = w.Write(hfmt.Appendf(nil, " %s", p.Func(u.fn).Name))
		}

		_, _ = w.Write([]byte("\n"))
	}

	var flags []string

	if f.PIC {
		flags = append(flags, "-fPIC")
	}

	flags = append(flags, "-O"+strconv.Itoa(f.Opt))

	if f.Debug {
		flags = append(flags, "-g")
	}

	if f.DumpAll {
		flags = append(flags, dumpAll...)
	}

	err = b.Toolchain.CompileToAssembly(ctx, f.Input, f.Output, flags...)
	if err != nil {
		return "", errors.Wrap(err, "%s", f.ProgName)
	}

	d := metrics.Since("main", start)

	tr.Printw("unit compiled", "funcs", len(b.units), "bytes", len(text), "out", f.Output, "dur", d)

	return f.Output, nil
}

// Unit renders the whole translation unit.
func (b *Backend) Unit(p *tree.Package, selfCheck bool) []byte {
	e := emitter{Package: p}

	var t []byte

	t = append(t, "/* generated by slowjit */\n\n"...)
	t = append(t, "struct __slowjit_file;\n"...)

	for _, s := range p.Structs {
		t = hfmt.Appendf(t, "struct %s;\n", e.tag(s))
	}

	for _, s := range p.Structs {
		tag := e.tag(s)

		t = hfmt.Appendf(t, "\nstruct %s {\n", tag)

		for _, fl := range s.Fields {
			t = hfmt.Appendf(t, "\t%s %s;\n", e.ctype(fl.Type), field(s, fl))
		}

		t = append(t, "};\n"...)

		if !selfCheck {
			continue
		}

		t = hfmt.Appendf(t, "_Static_assert(sizeof(struct %s) == %d, \"struct %s size\");\n", tag, s.Size(), tag)

		for _, fl := range s.Fields {
			f := field(s, fl)

			t = hfmt.Appendf(t, "_Static_assert(__builtin_offsetof(struct %s, %s) == %d, \"struct %s field %s offset\");\n",
				tag, f, fl.Offset, tag, f)
		}
	}

	if len(p.Globals) != 0 {
		t = append(t, '\n')
	}

	for _, g := range p.Globals {
		v := p.Nodes[g].(*tree.VarDecl)

		t = hfmt.Appendf(t, "%s%s %s;\n", storage(v.Linkage), e.ctype(p.Type(g)), v.Name)
	}

	t = append(t, '\n')

	for _, fn := range p.Funcs {
		t = e.prototype(t, fn)
		t = append(t, ";\n"...)
	}

	for _, u := range b.units {
		t = append(t, '\n')
		t = append(t, u.text...)
	}

	return t
}
