package jit

import (
	"strconv"

	"github.com/slowlang/jit/compiler/playback"
)

type (
	Location struct {
		memento

		file *String
		line int
		col  int
	}

	locFile struct {
		name  *String
		lines []*locLine
	}

	locLine struct {
		n    int
		cols []*Location
	}
)

// NewLocation returns the location for the triple.
// Identical triples yield the identical *Location.
func (c *Context) NewLocation(file string, line, col int) *Location {
	if file == "" {
		c.errorf(InvalidArgument, "NULL filename")
		return nil
	}

	if line < 0 || col < 0 {
		c.errorf(InvalidArgument, "%s: negative location %d:%d", file, line, col)
		return nil
	}

	var f *locFile

	for _, x := range c.files {
		if x.name.text == file {
			f = x
			break
		}
	}

	if f == nil {
		f = &locFile{name: c.NewString(file)}
		c.files = append(c.files, f)
	}

	var l *locLine

	for _, x := range f.lines {
		if x.n == line {
			l = x
			break
		}
	}

	if l == nil {
		l = &locLine{n: line}
		f.lines = append(f.lines, l)
	}

	for _, x := range l.cols {
		if x.col == col {
			return x
		}
	}

	x := &Location{file: f.name, line: line, col: col}
	c.record(x)

	l.cols = append(l.cols, x)

	return x
}

func (l *Location) replayInto(p *playback.Context) {
	l.associate(p, p.NewLocation(l.file.text, l.line, l.col))
}

// native is nil-safe. Locations are optional everywhere.
func (l *Location) native(p *playback.Context) *playback.Location {
	if l == nil {
		return nil
	}

	return l.assoc(p).(*playback.Location)
}

func (l *Location) File() string { return l.file.text }
func (l *Location) Line() int    { return l.line }
func (l *Location) Col() int     { return l.col }

func (l *Location) String() string {
	if l == nil {
		return "<unknown>"
	}

	return l.file.text + ":" + strconv.Itoa(l.line) + ":" + strconv.Itoa(l.col)
}

func (l *Location) owner() *Context {
	if l == nil {
		return nil
	}

	return l.ctx
}
