package tree

import (
	"tlog.app/go/errors"
)

type (
	// LineTable maps positions to source locations.
	// Registration must go file by file, lines ascending within a file
	// and columns ascending within a line. Positions are allocated
	// monotonically so a Pos is only meaningful once that order holds.
	LineTable struct {
		files []string
		locs  []Expanded

		file   int
		line   int
		maxCol int
		col    int
	}

	Expanded struct {
		File string
		Line int
		Col  int
	}
)

const noFile = -1

func (t *LineTable) Reset() {
	t.files = t.files[:0]
	t.locs = t.locs[:0]
	t.file = noFile
	t.line = -1
	t.col = -1
}

func (t *LineTable) Enter(file string) error {
	if t.file != noFile && len(t.files) != 0 {
		return errors.New("enter %q: still inside %q", file, t.files[t.file])
	}

	t.files = append(t.files, file)
	t.file = len(t.files) - 1
	t.line = -1
	t.maxCol = 0
	t.col = -1

	return nil
}

func (t *LineTable) Leave() {
	t.file = noFile
}

func (t *LineTable) LineStart(line, maxCol int) error {
	if t.file == noFile || len(t.files) == 0 {
		return errors.New("line %d: no file entered", line)
	}

	if line <= t.line {
		return errors.New("%s: line %d after line %d", t.files[t.file], line, t.line)
	}

	t.line = line
	t.maxCol = maxCol
	t.col = -1

	return nil
}

func (t *LineTable) PositionForColumn(col int) (Pos, error) {
	if t.file == noFile || len(t.files) == 0 || t.line < 0 {
		return NoPos, errors.New("column %d: no line started", col)
	}

	if col <= t.col {
		return NoPos, errors.New("%s:%d: column %d after column %d", t.files[t.file], t.line, col, t.col)
	}

	if col > t.maxCol {
		return NoPos, errors.New("%s:%d: column %d beyond max column %d", t.files[t.file], t.line, col, t.maxCol)
	}

	t.col = col
	t.locs = append(t.locs, Expanded{
		File: t.files[t.file],
		Line: t.line,
		Col:  col,
	})

	return Pos(len(t.locs)), nil
}

func (t *LineTable) Expand(pos Pos) (Expanded, bool) {
	if pos <= NoPos || int(pos) > len(t.locs) {
		return Expanded{}, false
	}

	return t.locs[pos-1], true
}

// Len is the number of registered positions.
func (t *LineTable) Len() int { return len(t.locs) }
