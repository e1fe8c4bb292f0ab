package jit

import (
	"fmt"

	"github.com/slowlang/jit/compiler/enum"
	"github.com/slowlang/jit/compiler/playback"
	"github.com/slowlang/jit/compiler/tree"
)

type (
	FunctionKind = enum.FunctionKind

	Function struct {
		memento

		loc      *Location
		kind     FunctionKind
		ret      *Type
		name     string
		params   []*Param
		variadic bool
	}

	Label struct {
		memento

		fn     *Function
		name   string
		placed *Location
		at     bool
	}

	stmtKind int

	statement struct {
		memento

		kind stmtKind
		fn   *Function
		loc  *Location

		x     *RValue
		lv    *LValue
		op    BinaryOp
		text  string
		label *Label
		other *Label
	}

	// Loop is sugar over three labels: condition, body and end.
	Loop struct {
		fn *Function

		cond, body, end *Label
	}
)

const (
	evalStmt stmtKind = iota
	assignStmt
	assignOpStmt
	commentStmt
	placeStmt
	jumpStmt
	condStmt
	returnStmt
)

const (
	Exported     = enum.Exported
	Internal     = enum.Internal
	Imported     = enum.Imported
	AlwaysInline = enum.AlwaysInline
)

func (c *Context) NewFunction(loc *Location, kind FunctionKind, ret *Type, name string, params []*Param, variadic bool) *Function {
	switch {
	case !kind.Valid():
		c.errorf(UnrecognizedEnum, "unrecognized (enum.FunctionKind) value: %d", int(kind))
		return nil
	case ret == nil:
		c.errorf(InvalidArgument, "NULL return type")
		return nil
	case name == "":
		c.errorf(InvalidArgument, "NULL name")
		return nil
	}

	for i, p := range params {
		if p == nil {
			c.errorf(InvalidArgument, "%s: NULL param %d", name, i)
			return nil
		}

		if p.fn != nil {
			c.errorf(InvalidArgument, "%s: param %s already belongs to %s", name, p.name, p.fn.name)
			return nil
		}
	}

	f := &Function{
		loc:      loc,
		kind:     kind,
		ret:      ret,
		name:     name,
		params:   params,
		variadic: variadic,
	}

	for _, p := range params {
		p.fn = f
	}

	c.record(f)

	return f
}

func (f *Function) replayInto(p *playback.Context) {
	params := make([]tree.Node, len(f.params))

	for i, x := range f.params {
		params[i] = x.native(p)
	}

	pf := p.NewFunction(f.loc.native(p), f.kind, f.ret.native(p), f.name, params, f.variadic)

	f.associate(p, pf)
}

func (f *Function) native(p *playback.Context) *playback.Function {
	return f.assoc(p).(*playback.Function)
}

func (f *Function) Name() string { return f.name }

func (f *Function) Param(i int) *Param { return f.params[i] }

func (f *Function) owner() *Context {
	if f == nil {
		return nil
	}

	return f.ctx
}

func (f *Function) body() bool {
	if f == nil {
		ctxOf().errorf(InvalidArgument, "NULL function")
		return false
	}

	if f.kind == Imported {
		panic(fmt.Sprintf("jit: statement added to imported function %s (created at %v)", f.name, f.from))
	}

	return true
}

func (f *Function) NewLocal(loc *Location, t *Type, name string) *LValue {
	if !f.body() {
		return nil
	}

	switch {
	case t == nil:
		f.ctx.errorf(InvalidArgument, "NULL type")
		return nil
	case name == "":
		f.ctx.errorf(InvalidArgument, "NULL name")
		return nil
	case t.isVoid():
		f.ctx.errorf(InvalidArgument, "local %s: void type", name)
		return nil
	}

	return f.ctx.newLValue(&LValue{RValue: RValue{kind: local, loc: loc, tp: t, name: name, local: f}})
}

// NewForwardLabel declares a label which may be jumped to before it's placed.
func (f *Function) NewForwardLabel(name string) *Label {
	if !f.body() {
		return nil
	}

	l := &Label{fn: f, name: name}
	f.ctx.record(l)

	return l
}

// NewLabel declares a label and places it at the current position.
func (f *Function) NewLabel(loc *Location, name string) *Label {
	l := f.NewForwardLabel(name)
	if l == nil {
		return nil
	}

	f.PlaceLabel(loc, l)

	return l
}

func (l *Label) replayInto(p *playback.Context) {
	l.associate(p, l.fn.native(p).NewForwardLabel(l.name))
}

func (l *Label) native(p *playback.Context) tree.Node {
	return l.assoc(p).(tree.Node)
}

func (l *Label) Name() string { return l.name }

// Placed reports whether the label has been placed.
func (l *Label) Placed() bool { return l.at }

func (l *Label) owner() *Context {
	if l == nil {
		return nil
	}

	return l.ctx
}

func (f *Function) add(s *statement) {
	s.fn = f
	f.ctx.record(s)
}

func (f *Function) AddEval(loc *Location, x Value) {
	if !f.body() {
		return
	}

	r := rv(x)
	if r == nil {
		f.ctx.errorf(InvalidArgument, "%s: NULL rvalue", f.name)
		return
	}

	f.add(&statement{kind: evalStmt, loc: loc, x: r})
}

func (f *Function) AddAssignment(loc *Location, dst Assignable, x Value) {
	if !f.body() {
		return
	}

	l, r := lv(dst), rv(x)
	if l == nil || r == nil {
		f.ctx.errorf(InvalidArgument, "%s: NULL lvalue or rvalue", f.name)
		return
	}

	f.add(&statement{kind: assignStmt, loc: loc, lv: l, x: r})
}

// AddAssignmentOp is dst = dst op x.
func (f *Function) AddAssignmentOp(loc *Location, dst Assignable, op BinaryOp, x Value) {
	if !f.body() {
		return
	}

	l, r := lv(dst), rv(x)

	switch {
	case !op.Valid():
		f.ctx.errorf(UnrecognizedEnum, "unrecognized (enum.BinaryOp) value: %d", int(op))
		return
	case l == nil || r == nil:
		f.ctx.errorf(InvalidArgument, "%s: NULL lvalue or rvalue", f.name)
		return
	}

	f.add(&statement{kind: assignOpStmt, loc: loc, lv: l, op: op, x: r})
}

func (f *Function) AddComment(loc *Location, text string) {
	if !f.body() {
		return
	}

	f.add(&statement{kind: commentStmt, loc: loc, text: text})
}

// AddConditional jumps to onTrue if cond holds, to onFalse otherwise.
// onFalse may be nil to fall through.
func (f *Function) AddConditional(loc *Location, cond Value, onTrue, onFalse *Label) {
	if !f.body() {
		return
	}

	r := rv(cond)

	switch {
	case r == nil:
		f.ctx.errorf(InvalidArgument, "%s: NULL condition", f.name)
		return
	case onTrue == nil:
		f.ctx.errorf(InvalidArgument, "%s: NULL on_true label", f.name)
		return
	case !f.owns(onTrue) || onFalse != nil && !f.owns(onFalse):
		return
	}

	f.add(&statement{kind: condStmt, loc: loc, x: r, label: onTrue, other: onFalse})
}

// PlaceLabel places l at the current position. Placing it twice panics.
func (f *Function) PlaceLabel(loc *Location, l *Label) {
	if !f.body() {
		return
	}

	if l == nil {
		f.ctx.errorf(InvalidArgument, "%s: NULL label", f.name)
		return
	}

	if !f.owns(l) {
		return
	}

	if l.at {
		panic(fmt.Sprintf("jit: label %q placed twice: first at %v, again at %v", l.name, l.placed, loc))
	}

	l.at = true
	l.placed = loc

	f.add(&statement{kind: placeStmt, loc: loc, label: l})
}

func (f *Function) AddJump(loc *Location, target *Label) {
	if !f.body() {
		return
	}

	if target == nil {
		f.ctx.errorf(InvalidArgument, "%s: NULL target", f.name)
		return
	}

	if !f.owns(target) {
		return
	}

	f.add(&statement{kind: jumpStmt, loc: loc, label: target})
}

// AddReturn returns x, or nothing if x is nil.
func (f *Function) AddReturn(loc *Location, x Value) {
	if !f.body() {
		return
	}

	r := rv(x)

	switch {
	case r == nil && !f.ret.isVoid():
		f.ctx.errorf(InvalidArgument, "%s: return without value from non-void function", f.name)
		return
	case r != nil && f.ret.isVoid():
		f.ctx.errorf(InvalidArgument, "%s: return with value from void function", f.name)
		return
	}

	f.add(&statement{kind: returnStmt, loc: loc, x: r})
}

func (f *Function) owns(l *Label) bool {
	if l.fn != f {
		f.ctx.errorf(InvalidArgument, "label %q belongs to %s, not %s", l.name, l.fn.name, f.name)
		return false
	}

	return true
}

// NewLoop records the loop head: place cond; if (cond) goto body else goto end; place body.
func (f *Function) NewLoop(loc *Location, cond Value) *Loop {
	if !f.body() {
		return nil
	}

	if rv(cond) == nil {
		f.ctx.errorf(InvalidArgument, "%s: NULL loop condition", f.name)
		return nil
	}

	lp := &Loop{
		fn:   f,
		cond: f.NewForwardLabel("loop_cond"),
		body: f.NewForwardLabel("loop_body"),
		end:  f.NewForwardLabel("loop_end"),
	}

	f.PlaceLabel(loc, lp.cond)
	f.AddConditional(loc, cond, lp.body, lp.end)
	f.PlaceLabel(loc, lp.body)

	return lp
}

// End records the loop tail: goto cond; place end.
func (lp *Loop) End(loc *Location) {
	if lp == nil {
		ctxOf().errorf(InvalidArgument, "NULL loop")
		return
	}

	lp.fn.AddJump(loc, lp.cond)
	lp.fn.PlaceLabel(loc, lp.end)
}

func (s *statement) replayInto(p *playback.Context) {
	f := s.fn.native(p)
	loc := s.loc.native(p)

	switch s.kind {
	case evalStmt:
		f.AddEval(loc, s.x.native(p))
	case assignStmt:
		f.AddAssignment(loc, s.lv.native(p), s.x.native(p))
	case assignOpStmt:
		f.AddAssignmentOp(loc, s.lv.native(p), s.op, s.x.native(p))
	case commentStmt:
		f.AddComment(loc, s.text)
	case placeStmt:
		f.PlaceLabel(loc, s.label.native(p))
	case jumpStmt:
		f.AddJump(loc, s.label.native(p))
	case condStmt:
		other := tree.None
		if s.other != nil {
			other = s.other.native(p)
		}

		f.AddConditional(loc, s.x.native(p), s.label.native(p), other)
	case returnStmt:
		x := tree.None
		if s.x != nil {
			x = s.x.native(p)
		}

		f.AddReturn(loc, x)
	default:
		panic(s.kind)
	}

	s.associate(p, nil)
}
