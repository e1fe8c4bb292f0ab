package back

import (
	"io"
	"os"
	"sync"

	"github.com/slowlang/jit/compiler/metrics"
	"github.com/slowlang/jit/compiler/toolchain"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	// Backend is the process-wide code generator state.
	// Only one playback may hold it at a time.
	Backend struct {
		Config

		Lines     tree.LineTable
		Toolchain *toolchain.Toolchain

		units  []unit
		active bool
	}

	Config struct {
		SelfCheck   bool
		DumpInitial bool
		DumpLowered bool

		// Dump receives tree dumps and driver chatter. Nil means os.Stderr.
		Dump io.Writer
	}

	unit struct {
		fn   tree.Node
		text []byte
	}
)

var (
	mu     sync.Mutex
	global Backend
)

// Acquire locks the backend for one playback.
func Acquire() *Backend {
	mu.Lock()

	if global.active {
		mu.Unlock()
		panic("back: playback already active")
	}

	global.active = true
	global.reset()

	metrics.ActivePlaybacks.Inc()

	return &global
}

// Release resets backend state and unlocks it.
func (b *Backend) Release() {
	if !b.active {
		panic("back: release of inactive backend")
	}

	b.reset()
	b.active = false

	metrics.ActivePlaybacks.Dec()

	mu.Unlock()
}

func (b *Backend) Active() bool { return b.active }

func (b *Backend) reset() {
	b.Config = Config{}
	b.Lines.Reset()
	b.Toolchain = nil
	b.units = b.units[:0]
}

func (b *Backend) dump() io.Writer {
	if b.Dump != nil {
		return b.Dump
	}

	return os.Stderr
}
