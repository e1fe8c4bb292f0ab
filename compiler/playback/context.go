// Package playback materializes a recorded program into the native tree
// and drives it through code generation and loading.
package playback

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/back"
	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/metrics"
	"github.com/slowlang/jit/compiler/option"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	// Recording is the program description being played back.
	Recording interface {
		// ReplayInto materializes every memento in creation order.
		// It stops at the first error reported into the context.
		ReplayInto(ctx context.Context, p *Context)

		// Disassociate clears every memento's playback slot.
		Disassociate()
	}

	// Slot indexes the association arena.
	Slot int

	Context struct {
		ID uuid.UUID

		rec  Recording
		opts *option.Table
		sink *diag.Sink
		back *back.Backend

		Pkg *tree.Package

		slots []any
		funcs []*Function

		files   []*srcFile
		pending []pending

		dir string

		timings []timing
	}

	timing struct {
		phase string
		dur   time.Duration
	}
)

const NoSlot Slot = -1

// New creates a playback context on an acquired backend.
func New(rec Recording, opts *option.Table, sink *diag.Sink, b *back.Backend) *Context {
	if !b.Active() {
		panic("playback: backend is not acquired")
	}

	metrics.PlaybackContexts.Inc()

	return &Context{
		ID:   uuid.New(),
		rec:  rec,
		opts: opts,
		sink: sink,
		back: b,
		Pkg:  tree.New(),
	}
}

// Associate stores a materialized object and returns its slot.
func (p *Context) Associate(x any) Slot {
	p.slots = append(p.slots, x)

	return Slot(len(p.slots) - 1)
}

// Assoc returns the object stored at slot.
// Reading an unset slot is a broken replay order.
func (p *Context) Assoc(s Slot) any {
	if s < 0 || int(s) >= len(p.slots) {
		panic(fmt.Sprintf("playback: association read before set: slot %d", s))
	}

	return p.slots[s]
}

// Errorf reports an error into the recording's sink.
func (p *Context) Errorf(kind diag.Kind, format string, args ...any) {
	p.sink.Add(kind, format, args...)
}

func (p *Context) ErrorCount() int { return p.sink.Count() }

func (p *Context) Options() *option.Table { return p.opts }

// Close removes intermediate files. Call after Disassociate.
func (p *Context) Close(ctx context.Context) {
	p.slots = nil

	if p.dir == "" {
		return
	}

	tr := tlog.SpanFromContext(ctx)

	if p.opts.Bool(option.KeepIntermediates) {
		tr.Printw("keeping intermediate files", "dir", p.dir, "compile_id", p.ID)
		fmt.Fprintf(p.chatter(), "%s: intermediate files kept in %s\n", p.opts.Str(option.ProgName), p.dir)

		return
	}

	err := os.RemoveAll(p.dir)
	if err != nil {
		tr.Printw("remove temp dir", "dir", p.dir, "err", err)
	}

	p.dir = ""
}

// chatter is where human-readable chatter goes.
func (p *Context) chatter() io.Writer {
	if p.sink.W != nil {
		return p.sink.W
	}

	return os.Stderr
}

func (p *Context) phase(name string, start time.Time) {
	d := metrics.Since(name, start)

	p.timings = append(p.timings, timing{phase: name, dur: d})
}
