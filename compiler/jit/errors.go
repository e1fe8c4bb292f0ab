package jit

import (
	"github.com/slowlang/jit/compiler/diag"
)

type (
	Error     = diag.Error
	ErrorKind = diag.Kind
)

const (
	InvalidArgument  = diag.InvalidArgument
	UnrecognizedEnum = diag.UnrecognizedEnum
	FieldNotFound    = diag.FieldNotFound
	ToolchainFailure = diag.ToolchainFailure
	LoadFailure      = diag.LoadFailure
	InternalError    = diag.Internal
)

type owned interface {
	owner() *Context
}

// errorf records an error. A nil context only prints it.
func (c *Context) errorf(kind ErrorKind, format string, args ...any) {
	if c == nil {
		var orphan diag.Sink
		orphan.Add(kind, format, args...)

		return
	}

	c.sink.Add(kind, format, args...)
}

// ctxOf returns the context of the first owned object known.
func ctxOf(xs ...owned) *Context {
	for _, x := range xs {
		if x == nil {
			continue
		}

		if c := x.owner(); c != nil {
			return c
		}
	}

	return nil
}

// ErrorCount is the number of errors recorded so far, recording and playback alike.
func (c *Context) ErrorCount() int { return c.sink.Count() }

// FirstError returns the first error message or "".
func (c *Context) FirstError() string { return c.sink.First() }

// Err returns the first error as *Error or nil.
func (c *Context) Err() error { return c.sink.Err() }

func (c *Context) Errors() []*Error { return c.sink.Errors() }
