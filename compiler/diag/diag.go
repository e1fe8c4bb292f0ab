package diag

import (
	"fmt"
	"io"
	"os"

	"tlog.app/go/tlog"
)

type (
	Kind int

	Error struct {
		Kind Kind
		Msg  string
	}

	// Sink accumulates errors of one recording context.
	// Playback forwards into the same sink.
	Sink struct {
		// W receives one diagnostic line per error. Nil means os.Stderr.
		W io.Writer

		// ProgName prefixes diagnostic lines.
		ProgName func() string

		errs []*Error
	}
)

const (
	InvalidArgument Kind = iota
	UnrecognizedEnum
	FieldNotFound
	ToolchainFailure
	LoadFailure
	Internal
)

func (s *Sink) Add(kind Kind, format string, args ...any) *Error {
	e := &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}

	s.errs = append(s.errs, e)

	prog := "slowjit"
	if s.ProgName != nil {
		prog = s.ProgName()
	}

	w := s.W
	if w == nil {
		w = os.Stderr
	}

	fmt.Fprintf(w, "%s: %s\n", prog, e.Msg)

	tlog.V("errors").Printw("error", "kind", kind, "msg", e.Msg, "count", len(s.errs))

	return e
}

func (s *Sink) Count() int { return len(s.errs) }

// First returns the first error message or "" if none.
func (s *Sink) First() string {
	if len(s.errs) == 0 {
		return ""
	}

	return s.errs[0].Msg
}

// Err returns the first error or nil.
func (s *Sink) Err() error {
	if len(s.errs) == 0 {
		return nil
	}

	return s.errs[0]
}

func (s *Sink) Errors() []*Error { return s.errs }

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

// Is matches errors of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case UnrecognizedEnum:
		return "unrecognized enum value"
	case FieldNotFound:
		return "field not found"
	case ToolchainFailure:
		return "toolchain failure"
	case LoadFailure:
		return "load failure"
	case Internal:
		return "internal error"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}
