// Package jit records a program description and compiles it into loadable machine code.
//
// A Context is filled through factory methods. Each factory validates its
// arguments and either returns a new memento or records an error and returns nil.
// Compile replays the recording into the native tree under a process-wide lock
// and loads the result.
package jit

import (
	"context"
	"io"

	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/option"
	"github.com/slowlang/jit/compiler/playback"
)

type (
	Context struct {
		mementos []recorded

		strings map[string]*String
		files   []*locFile

		opts option.Table
		sink diag.Sink
	}

	StrOption  = option.Str
	IntOption  = option.Int
	BoolOption = option.Bool
)

const (
	ProgName   = option.ProgName
	Driver     = option.Driver
	TempPrefix = option.TempPrefix

	OptimizationLevel = option.OptimizationLevel

	DebugInfo         = option.DebugInfo
	DumpInitialTree   = option.DumpInitialTree
	DumpLoweredTree   = option.DumpLoweredTree
	DumpGeneratedCode = option.DumpGeneratedCode
	DumpSummary       = option.DumpSummary
	SelfCheckGC       = option.SelfCheckGC
	KeepIntermediates = option.KeepIntermediates
	DumpEverything    = option.DumpEverything
)

func New() *Context {
	c := &Context{
		strings: map[string]*String{},
	}

	c.sink.ProgName = func() string { return c.opts.Str(option.ProgName) }

	return c
}

// SetDiagnostics redirects diagnostic lines. Nil means stderr.
func (c *Context) SetDiagnostics(w io.Writer) {
	c.sink.W = w
}

func (c *Context) owner() *Context { return c }

// ReplayInto materializes all mementos in creation order.
func (c *Context) ReplayInto(ctx context.Context, p *playback.Context) {
	tr := tlog.SpanFromContext(ctx)

	for i, m := range c.mementos {
		m.replayInto(p)

		if p.ErrorCount() != 0 {
			tr.Printw("replay stopped", "at", i, "of", len(c.mementos), "from", m.base().from)
			return
		}
	}

	if tr.If("replay") {
		tr.Printw("replayed", "mementos", len(c.mementos), "nodes", len(p.Pkg.Nodes))
	}
}

// Disassociate drops every playback association.
func (c *Context) Disassociate() {
	for _, m := range c.mementos {
		m.base().slot = playback.NoSlot
	}
}
