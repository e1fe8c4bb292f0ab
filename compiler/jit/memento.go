package jit

import (
	"fmt"

	"tlog.app/go/loc"

	"github.com/slowlang/jit/compiler/playback"
)

type (
	// memento is the common part of every recorded object.
	memento struct {
		ctx  *Context
		from loc.PC

		slot playback.Slot
	}

	recorded interface {
		base() *memento
		replayInto(p *playback.Context)
	}

	String struct {
		memento

		text string
	}
)

func (m *memento) base() *memento { return m }

// Context returns the owning context.
func (m *memento) Context() *Context { return m.ctx }

func (m *memento) associate(p *playback.Context, x any) {
	m.slot = p.Associate(x)
}

func (m *memento) assoc(p *playback.Context) any {
	if m.slot == playback.NoSlot {
		panic(fmt.Sprintf("jit: memento created at %v read before replay", m.from))
	}

	return p.Assoc(m.slot)
}

// record appends m to the context so it's replayed in creation order.
func (c *Context) record(m recorded) {
	b := m.base()

	b.ctx = c
	b.from = loc.Caller(2)
	b.slot = playback.NoSlot

	c.mementos = append(c.mementos, m)
}

// NewString returns the interned string memento.
func (c *Context) NewString(s string) *String {
	if x, ok := c.strings[s]; ok {
		return x
	}

	x := &String{text: s}
	c.record(x)

	c.strings[s] = x

	return x
}

func (s *String) replayInto(p *playback.Context) {
	s.associate(p, s.text)
}

func (s *String) String() string {
	if s == nil {
		return "<nil>"
	}

	return s.text
}
