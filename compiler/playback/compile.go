package playback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/back"
	"github.com/slowlang/jit/compiler/diag"
	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/loader"
	"github.com/slowlang/jit/compiler/option"
	"github.com/slowlang/jit/compiler/toolchain"
)

// Compile runs the whole pipeline and returns the loaded library.
// Failures are reported into the sink and yield nil.
func (p *Context) Compile(ctx context.Context) (lib *loader.Lib) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "playback: compile", "compile_id", p.ID)
	defer func() {
		tr.Finish("errors", p.ErrorCount(), "loaded", lib != nil)
	}()

	o := p.opts

	p.back.Config = back.Config{
		SelfCheck:   o.Bool(option.SelfCheckGC),
		DumpInitial: o.Bool(option.DumpInitialTree),
		DumpLowered: o.Bool(option.DumpLoweredTree),
		Dump:        p.chatter(),
	}

	if p.back.Toolchain == nil {
		p.back.Toolchain = toolchain.New(o.Str(option.Driver))
	}

	start := time.Now()

	p.rec.ReplayInto(ctx, p)

	p.phase("replay", start)

	if p.ErrorCount() != 0 {
		return nil
	}

	start = time.Now()

	err := p.handleLocations(ctx)
	if err != nil {
		p.Errorf(diag.Internal, "locations: %v", err)
		return nil
	}

	p.phase("locations", start)
	start = time.Now()

	for _, f := range p.funcs {
		if f.Kind == enum.Imported {
			continue
		}

		err = p.back.Finalize(ctx, p.Pkg, f.Node)
		if _, ok := err.(*back.UnplacedLabelError); ok {
			p.Errorf(diag.InvalidArgument, "%v", err)
			return nil
		}

		if err != nil {
			p.Errorf(diag.Internal, "finalize: %v", err)
			return nil
		}
	}

	p.phase("finalize", start)

	p.dir, err = os.MkdirTemp("", o.Str(option.TempPrefix)+"-")
	if err != nil {
		p.Errorf(diag.ToolchainFailure, "create temp dir: %v", err)
		return nil
	}

	tr.V("tempdir").Printw("temp dir", "dir", p.dir)

	start = time.Now()

	args := back.DriverArgs(back.Flags{
		ProgName:  o.Str(option.ProgName),
		Input:     filepath.Join(p.dir, "fake.c"),
		Opt:       o.Int(option.OptimizationLevel),
		Debug:     o.Bool(option.DebugInfo),
		Quiet:     !o.Bool(option.DumpSummary),
		SelfCheck: o.Bool(option.SelfCheckGC),
		DumpAll:   o.Bool(option.DumpEverything),
	})

	asm, err := p.back.Main(ctx, p.Pkg, args)
	if err != nil {
		p.Errorf(diag.ToolchainFailure, "%v", err)
		return nil
	}

	p.phase("backend", start)

	if o.Bool(option.DumpGeneratedCode) {
		text, err := os.ReadFile(asm)
		if err != nil {
			p.Errorf(diag.ToolchainFailure, "read generated code: %v", err)
			return nil
		}

		_, _ = p.chatter().Write(text)
	}

	start = time.Now()

	so := filepath.Join(p.dir, "fake.so")

	err = p.back.Toolchain.Link(ctx, asm, so)
	if err != nil {
		p.Errorf(diag.ToolchainFailure, "%v", err)
		return nil
	}

	p.phase("link", start)
	start = time.Now()

	lib, err = loader.Open(so)
	if err != nil {
		p.Errorf(diag.LoadFailure, "%v", err)
		return nil
	}

	p.phase("load", start)

	if o.Bool(option.DumpSummary) {
		p.summary()
	}

	return lib
}

func (p *Context) summary() {
	w := tabwriter.NewWriter(p.chatter(), 0, 8, 2, ' ', 0)

	var total time.Duration

	fmt.Fprintf(w, "compile %v\n", p.ID)

	for _, t := range p.timings {
		fmt.Fprintf(w, "  %s\t%v\n", t.phase, t.dur)
		total += t.dur
	}

	fmt.Fprintf(w, "  total\t%v\n", total)

	_ = w.Flush()
}
