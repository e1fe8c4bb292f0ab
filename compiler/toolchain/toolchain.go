// Package toolchain runs the external C driver used as assembler backend and linker.
package toolchain

import (
	"bytes"
	"context"
	"os/exec"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Runner executes an external command and returns its combined output.
	Runner interface {
		Run(ctx context.Context, name string, args ...string) ([]byte, error)
	}

	Exec struct{}

	Toolchain struct {
		Driver string
		Runner Runner
	}
)

func New(driver string) *Toolchain {
	return &Toolchain{
		Driver: driver,
		Runner: Exec{},
	}
}

func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.Wrap(err, "%s", bytes.TrimSpace(out))
	}

	return out, nil
}

// CompileToAssembly turns C source into assembly text.
func (t *Toolchain) CompileToAssembly(ctx context.Context, src, out string, flags ...string) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "toolchain: compile", "src", src, "out", out, "flags", flags)
	defer tr.Finish("err", &err)

	args := append([]string{}, flags...)
	args = append(args, "-S", src, "-o", out)

	return t.run(ctx, args)
}

// Link builds a shared library from assembly text.
func (t *Toolchain) Link(ctx context.Context, asm, so string) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "toolchain: link", "asm", asm, "so", so)
	defer tr.Finish("err", &err)

	return t.run(ctx, []string{"-shared", asm, "-o", so})
}

func (t *Toolchain) run(ctx context.Context, args []string) error {
	r := t.Runner
	if r == nil {
		r = Exec{}
	}

	tr := tlog.SpanFromContext(ctx)

	out, err := r.Run(ctx, t.Driver, args...)
	if tr.If("toolchain_output") && len(out) != 0 {
		tr.Printw("driver output", "driver", t.Driver, "args", args, "out", out)
	}
	if err != nil {
		return errors.Wrap(err, "%s %v", t.Driver, args)
	}

	return nil
}
