package option

import (
	"strconv"

	"tlog.app/go/errors"
)

type (
	Str  int
	Int  int
	Bool int

	// Table holds per-context options.
	// Zero value is ready to use and reports defaults.
	Table struct {
		str   [NumStr]string
		ints  [NumInt]int
		bools [NumBool]bool
	}
)

const (
	ProgName Str = iota
	Driver
	TempPrefix

	NumStr
)

const (
	OptimizationLevel Int = iota

	NumInt
)

const (
	DebugInfo Bool = iota
	DumpInitialTree
	DumpLoweredTree
	DumpGeneratedCode
	DumpSummary
	SelfCheckGC
	KeepIntermediates
	DumpEverything

	NumBool
)

var strDefaults = [NumStr]string{
	ProgName:   "slowjit",
	Driver:     "cc",
	TempPrefix: "slowjit",
}

func (t *Table) SetStr(o Str, v string) error {
	if o < 0 || o >= NumStr {
		return errors.New("unrecognized (option.Str) value: %d", int(o))
	}

	t.str[o] = v

	return nil
}

func (t *Table) SetInt(o Int, v int) error {
	if o < 0 || o >= NumInt {
		return errors.New("unrecognized (option.Int) value: %d", int(o))
	}

	t.ints[o] = v

	return nil
}

func (t *Table) SetBool(o Bool, v bool) error {
	if o < 0 || o >= NumBool {
		return errors.New("unrecognized (option.Bool) value: %d", int(o))
	}

	t.bools[o] = v

	return nil
}

// Str returns the option value or its default if unset.
func (t *Table) Str(o Str) string {
	if o < 0 || o >= NumStr {
		return ""
	}

	if t.str[o] != "" {
		return t.str[o]
	}

	return strDefaults[o]
}

func (t *Table) Int(o Int) int {
	if o < 0 || o >= NumInt {
		return 0
	}

	return t.ints[o]
}

func (t *Table) Bool(o Bool) bool {
	if o < 0 || o >= NumBool {
		return false
	}

	return t.bools[o]
}

func (o Str) String() string {
	switch o {
	case ProgName:
		return "progname"
	case Driver:
		return "driver"
	case TempPrefix:
		return "temp_prefix"
	}

	return "str_option(" + strconv.Itoa(int(o)) + ")"
}

func (o Int) String() string {
	switch o {
	case OptimizationLevel:
		return "optimization_level"
	}

	return "int_option(" + strconv.Itoa(int(o)) + ")"
}

func (o Bool) String() string {
	switch o {
	case DebugInfo:
		return "debug_info"
	case DumpInitialTree:
		return "dump_initial_tree"
	case DumpLoweredTree:
		return "dump_lowered_tree"
	case DumpGeneratedCode:
		return "dump_generated_code"
	case DumpSummary:
		return "dump_summary"
	case SelfCheckGC:
		return "selfcheck_gc"
	case KeepIntermediates:
		return "keep_intermediates"
	case DumpEverything:
		return "dump_everything"
	}

	return "bool_option(" + strconv.Itoa(int(o)) + ")"
}
