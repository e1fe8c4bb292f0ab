package back

import (
	"context"
	"strconv"
	"time"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/format"
	"github.com/slowlang/jit/compiler/metrics"
	"github.com/slowlang/jit/compiler/tree"
)

// UnplacedLabelError is a jump target never placed in its function.
// It's the caller's mistake, unlike other Finalize errors.
type UnplacedLabelError struct {
	Func  string
	Label string
}

func (e *UnplacedLabelError) Error() string {
	return e.Func + ": label " + strconv.Quote(e.Label) + " used but not placed"
}

// Finalize lowers a function into translation unit text.
// Each function is finalized exactly once.
func (b *Backend) Finalize(ctx context.Context, p *tree.Package, fn tree.Node) (err error) {
	f := p.Func(fn)

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: finalize", "name", f.Name, "node", fn)
	defer tr.Finish("err", &err)

	if f.Finalized {
		panic("back: function finalized twice: " + f.Name)
	}

	f.Finalized = true

	defer metrics.Since("finalize", time.Now())

	if f.Body == tree.None {
		return nil
	}

	for _, l := range f.Labels {
		d := p.Label(l)

		if d.Used && d.Expr == tree.None {
			return &UnplacedLabelError{Func: f.Name, Label: d.Name}
		}
	}

	if b.SelfCheck {
		err = p.Verify(fn)
		if err != nil {
			return errors.Wrap(err, "verify")
		}
	}

	if b.DumpInitial {
		d, err := format.Func(ctx, nil, p, fn)
		if err != nil {
			return errors.Wrap(err, "dump")
		}

		_, _ = b.dump().Write(d)
	}

	e := emitter{Package: p, lines: &b.Lines}

	text, err := e.funcDef(ctx, nil, fn)
	if err != nil {
		return errors.Wrap(err, "lower")
	}

	if b.DumpLowered {
		_, _ = b.dump().Write(text)
	}

	b.units = append(b.units, unit{fn: fn, text: text})

	return nil
}
