package jit

import (
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/jit/compiler/option"
)

func (c *Context) SetStrOption(o StrOption, v string) {
	if err := c.opts.SetStr(o, v); err != nil {
		c.errorf(UnrecognizedEnum, "%v", err)
	}
}

func (c *Context) SetIntOption(o IntOption, v int) {
	if err := c.opts.SetInt(o, v); err != nil {
		c.errorf(UnrecognizedEnum, "%v", err)
		return
	}

	if o == OptimizationLevel && (v < 0 || v > 3) {
		c.errorf(InvalidArgument, "optimization level out of range: %d", v)
	}
}

func (c *Context) SetBoolOption(o BoolOption, v bool) {
	if err := c.opts.SetBool(o, v); err != nil {
		c.errorf(UnrecognizedEnum, "%v", err)
	}
}

func (c *Context) StrOption(o StrOption) string { return c.opts.Str(o) }
func (c *Context) IntOption(o IntOption) int    { return c.opts.Int(o) }
func (c *Context) BoolOption(o BoolOption) bool { return c.opts.Bool(o) }

// ApplyOptions sets every option present in f.
func (c *Context) ApplyOptions(f *option.File) {
	f.Apply(&c.opts)

	if v := c.opts.Int(option.OptimizationLevel); v < 0 || v > 3 {
		c.errorf(InvalidArgument, "optimization level out of range: %d", v)
	}
}

// LoadOptions reads a YAML options file into the context.
func (c *Context) LoadOptions(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open options")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close options")
		}
	}()

	of, err := option.Decode(f)
	if err != nil {
		return errors.Wrap(err, "%v", path)
	}

	c.ApplyOptions(of)

	tlog.V("options").Printw("options loaded", "path", path, "opt", c.opts.Int(option.OptimizationLevel))

	return nil
}
