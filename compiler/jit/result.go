package jit

import (
	"unsafe"

	"github.com/slowlang/jit/compiler/loader"
)

// Result is a loaded compiled program.
// It outlives the Context it was compiled from.
type Result struct {
	lib *loader.Lib
}

// Code returns the entry address of an exported function or global.
func (r *Result) Code(name string) (unsafe.Pointer, error) {
	return r.lib.Sym(name)
}

// Func returns name as a function callable from Go with word-sized arguments.
func (r *Result) Func(name string) (*loader.Func, error) {
	return r.lib.Func(name)
}

// Path is the loaded shared object. It may be already removed from disk.
func (r *Result) Path() string { return r.lib.Path() }

// Close unloads the code. Pointers obtained from Code are invalid afterwards.
func (r *Result) Close() error {
	return r.lib.Close()
}
