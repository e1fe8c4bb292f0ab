package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/jit"
)

func main() {
	fibCmd := &cli.Command{
		Name:        "fib",
		Description: "compile recursive fibonacci and evaluate it for each argument",
		Action:      fibAct,
		Args:        cli.Args{},
	}

	answerCmd := &cli.Command{
		Name:        "answer",
		Description: "compile a function returning a constant",
		Action:      answerAct,
		Args:        cli.Args{},
	}

	demoCmd := &cli.Command{
		Name:        "demo",
		Description: "compile independent programs concurrently",
		Action:      demoAct,
		Flags: []*cli.Flag{
			cli.NewFlag("jobs,j", 4, "number of concurrent contexts"),
		},
	}

	app := &cli.Command{
		Name:        "slowjit",
		Description: "slowjit records programs and compiles them into loadable code",
		Flags: []*cli.Flag{
			cli.NewFlag("options", "", "yaml options file"),
			cli.NewFlag("O", 0, "optimization level"),
			cli.NewFlag("g", false, "emit debug info"),
			cli.NewFlag("keep", false, "keep intermediate files"),
			cli.NewFlag("dump-tree", false, "dump the initial tree"),
			cli.NewFlag("dump-c", false, "dump the lowered C"),
			cli.NewFlag("dump-asm", false, "dump the generated assembly"),
			cli.NewFlag("summary", false, "print the compile summary"),
			cli.NewFlag("self-check", false, "verify trees and layouts"),
			cli.NewFlag("dump-everything", false, "keep every internal pass dump of the C driver (use with --keep)"),
			cli.NewFlag("v", "", "tlog verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			fibCmd,
			answerCmd,
			demoCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func rootContext(c *cli.Command) context.Context {
	tlog.SetVerbosity(c.String("v"))

	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func newContext(c *cli.Command) (*jit.Context, error) {
	x := jit.New()

	if f := c.String("options"); f != "" {
		err := x.LoadOptions(f)
		if err != nil {
			return nil, errors.Wrap(err, "load options")
		}
	}

	if o := c.Int("O"); o != 0 {
		x.SetIntOption(jit.OptimizationLevel, o)
	}

	bools := []struct {
		flag string
		opt  jit.BoolOption
	}{
		{"g", jit.DebugInfo},
		{"keep", jit.KeepIntermediates},
		{"dump-tree", jit.DumpInitialTree},
		{"dump-c", jit.DumpLoweredTree},
		{"dump-asm", jit.DumpGeneratedCode},
		{"summary", jit.DumpSummary},
		{"self-check", jit.SelfCheckGC},
		{"dump-everything", jit.DumpEverything},
	}

	for _, b := range bools {
		if c.Bool(b.flag) {
			x.SetBoolOption(b.opt, true)
		}
	}

	return x, nil
}

func compile(ctx context.Context, x *jit.Context) (*jit.Result, error) {
	r := x.Compile(ctx)
	if r == nil {
		return nil, errors.New("compile: %v", x.FirstError())
	}

	return r, nil
}

func fibAct(c *cli.Command) (err error) {
	ctx := rootContext(c)

	x, err := newContext(c)
	if err != nil {
		return err
	}

	i := x.GetType(jit.Int)
	src := "fib.sj"

	n := x.NewParam(x.NewLocation(src, 1, 9), i, "n")
	fn := x.NewFunction(x.NewLocation(src, 1, 1), jit.Exported, i, "fib", []*jit.Param{n}, false)

	base := fn.NewForwardLabel("base")
	rec := fn.NewForwardLabel("rec")

	fn.AddConditional(x.NewLocation(src, 2, 2), x.NewComparison(nil, jit.LT, n, x.NewRValueFromInt(i, 2)), base, rec)

	fn.PlaceLabel(x.NewLocation(src, 3, 1), base)
	fn.AddReturn(x.NewLocation(src, 3, 2), n)

	fn.PlaceLabel(x.NewLocation(src, 4, 1), rec)

	l := x.NewLocation(src, 5, 2)
	f1 := x.NewCall(l, fn, x.NewBinaryOp(l, jit.Sub, i, n, x.One(i)))
	f2 := x.NewCall(l, fn, x.NewBinaryOp(l, jit.Sub, i, n, x.NewRValueFromInt(i, 2)))

	fn.AddReturn(l, x.NewBinaryOp(l, jit.Plus, i, f1, f2))

	r, err := compile(ctx, x)
	if err != nil {
		return err
	}

	defer func() {
		e := r.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close")
		}
	}()

	f, err := r.Func("fib")
	if err != nil {
		return errors.Wrap(err, "lookup")
	}

	args := c.Args
	if len(args) == 0 {
		args = []string{"10"}
	}

	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return errors.Wrap(err, "parse %q", a)
		}

		fmt.Printf("fib(%d) = %d\n", v, f.Int(v))
	}

	return nil
}

func answerAct(c *cli.Command) (err error) {
	ctx := rootContext(c)

	v := 42

	if len(c.Args) != 0 {
		v, err = strconv.Atoi(c.Args[0])
		if err != nil {
			return errors.Wrap(err, "parse %q", c.Args[0])
		}
	}

	x, err := newContext(c)
	if err != nil {
		return err
	}

	got, err := answer(ctx, x, "answer", v)
	if err != nil {
		return err
	}

	fmt.Printf("answer() = %d\n", got)

	return nil
}

func demoAct(c *cli.Command) (err error) {
	ctx := rootContext(c)

	jobs := c.Int("jobs")
	res := make([]int, jobs)

	var g errgroup.Group

	for k := 0; k < jobs; k++ {
		k := k

		g.Go(func() error {
			x, err := newContext(c)
			if err != nil {
				return err
			}

			res[k], err = answer(ctx, x, fmt.Sprintf("answer%d", k), 100+k)
			if err != nil {
				return errors.Wrap(err, "job %d", k)
			}

			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return err
	}

	for k, v := range res {
		fmt.Printf("answer%d() = %d\n", k, v)
	}

	return nil
}

func answer(ctx context.Context, x *jit.Context, name string, v int) (_ int, err error) {
	i := x.GetType(jit.Int)

	fn := x.NewFunction(nil, jit.Exported, i, name, nil, false)
	fn.AddReturn(nil, x.NewRValueFromInt(i, v))

	r, err := compile(ctx, x)
	if err != nil {
		return 0, err
	}

	defer func() {
		e := r.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close")
		}
	}()

	f, err := r.Func(name)
	if err != nil {
		return 0, errors.Wrap(err, "lookup")
	}

	return f.Int(), nil
}
