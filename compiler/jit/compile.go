package jit

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/back"
	"github.com/slowlang/jit/compiler/metrics"
	"github.com/slowlang/jit/compiler/playback"
)

// Compile builds the recorded program into loadable code.
// It returns nil if any error was recorded so far or occurs during compilation.
// Playback is serialized process-wide; recording into other contexts is not.
func (c *Context) Compile(ctx context.Context) (r *Result) {
	if c.ErrorCount() != 0 {
		metrics.Compiles.WithLabelValues("rejected").Inc()
		tlog.SpanFromContext(ctx).Printw("compile rejected", "errors", c.ErrorCount(), "first", c.FirstError())

		return nil
	}

	defer func() {
		res := "ok"
		if r == nil {
			res = "failed"
		}

		metrics.Compiles.WithLabelValues(res).Inc()
	}()

	b := back.Acquire()
	defer b.Release()

	p := playback.New(c, &c.opts, &c.sink, b)
	defer p.Close(ctx)
	defer c.Disassociate()

	lib := p.Compile(ctx)
	if lib == nil {
		return nil
	}

	return &Result{lib: lib}
}
