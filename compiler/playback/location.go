package playback

import (
	"context"
	"strconv"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/tree"
)

type (
	Location struct {
		file *srcFile
		line *srcLine
		col  int

		pos tree.Pos
	}

	srcFile struct {
		name  string
		lines []*srcLine
	}

	srcLine struct {
		n    int
		locs []*Location
	}

	pending struct {
		node tree.Node
		loc  *Location
	}
)

// NewLocation finds or creates the playback location.
func (p *Context) NewLocation(file string, line, col int) *Location {
	var f *srcFile

	for _, x := range p.files {
		if x.name == file {
			f = x
			break
		}
	}

	if f == nil {
		f = &srcFile{name: file}
		p.files = append(p.files, f)
	}

	var l *srcLine

	for _, x := range f.lines {
		if x.n == line {
			l = x
			break
		}
	}

	if l == nil {
		l = &srcLine{n: line}
		f.lines = append(f.lines, l)
	}

	for _, x := range l.locs {
		if x.col == col {
			return x
		}
	}

	loc := &Location{file: f, line: l, col: col}
	l.locs = append(l.locs, loc)

	return loc
}

// setLocation defers position assignment until all locations are known.
func (p *Context) setLocation(n tree.Node, loc *Location) {
	if loc == nil || n == tree.None {
		return
	}

	p.pending = append(p.pending, pending{node: n, loc: loc})
}

// handleLocations registers locations with the line table in file,
// line, column order and assigns resolved positions to pending nodes.
func (p *Context) handleLocations(ctx context.Context) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "playback: locations", "files", len(p.files), "pending", len(p.pending))
	defer tr.Finish("err", &err)

	lt := &p.back.Lines

	for _, f := range p.files {
		err = lt.Enter(f.name)
		if err != nil {
			return errors.Wrap(err, "enter")
		}

		lines := heap.Heap[*srcLine]{Less: linesLess}

		for _, l := range f.lines {
			lines.Push(l)
		}

		for lines.Len() != 0 {
			l := lines.Pop()

			cols := heap.Heap[*Location]{Less: colsLess}
			maxCol := 0

			for _, c := range l.locs {
				cols.Push(c)

				if c.col > maxCol {
					maxCol = c.col
				}
			}

			err = lt.LineStart(l.n, maxCol)
			if err != nil {
				return errors.Wrap(err, "line start")
			}

			for cols.Len() != 0 {
				c := cols.Pop()

				c.pos, err = lt.PositionForColumn(c.col)
				if err != nil {
					return errors.Wrap(err, "column")
				}
			}
		}

		lt.Leave()
	}

	for _, x := range p.pending {
		p.Pkg.Pos[x.node] = x.loc.pos
	}

	return nil
}

// Pos is the resolved position. Valid after location handling.
func (l *Location) Pos() tree.Pos { return l.pos }

func (l *Location) String() string {
	return l.file.name + ":" + strconv.Itoa(l.line.n) + ":" + strconv.Itoa(l.col)
}

func linesLess(d []*srcLine, i, j int) bool { return d[i].n < d[j].n }

func colsLess(d []*Location, i, j int) bool { return d[i].col < d[j].col }
