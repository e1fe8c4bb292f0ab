// Package loader maps compiled shared objects into the process.
package loader

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

static void* sj_dlopen(const char* path, char** err) {
	dlerror();
	void* h = dlopen(path, RTLD_NOW | RTLD_LOCAL);
	if (!h) *err = dlerror();
	return h;
}

static void* sj_dlsym(void* h, const char* name, char** err) {
	dlerror();
	void* p = dlsym(h, name);
	char* e = dlerror();
	if (e) { *err = e; return NULL; }
	*err = NULL;
	return p;
}

static int sj_dlclose(void* h) {
	return dlclose(h);
}

typedef uintptr_t u;

static u sj_call(void* fn, int n, u* a) {
	switch (n) {
	case 0: return ((u (*)(void))fn)();
	case 1: return ((u (*)(u))fn)(a[0]);
	case 2: return ((u (*)(u, u))fn)(a[0], a[1]);
	case 3: return ((u (*)(u, u, u))fn)(a[0], a[1], a[2]);
	case 4: return ((u (*)(u, u, u, u))fn)(a[0], a[1], a[2], a[3]);
	case 5: return ((u (*)(u, u, u, u, u))fn)(a[0], a[1], a[2], a[3], a[4]);
	case 6: return ((u (*)(u, u, u, u, u, u))fn)(a[0], a[1], a[2], a[3], a[4], a[5]);
	}
	return 0;
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	Lib struct {
		path string

		mu   sync.Mutex
		h    unsafe.Pointer
		syms map[string]unsafe.Pointer
	}

	// Func is an entry point taking and returning integer or pointer words.
	Func struct {
		Name string
		Addr unsafe.Pointer
	}
)

// MaxArgs is the number of arguments Func.Call supports.
const MaxArgs = 6

var ErrClosed = errors.New("library closed")

// Open loads the library resolving all symbols immediately.
func Open(path string) (*Lib, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var cerr *C.char

	h := C.sj_dlopen(cpath, &cerr)
	if h == nil {
		return nil, errors.New("dlopen %s: %s", path, dlerr(cerr))
	}

	tlog.V("loader").Printw("opened", "path", path)

	return &Lib{
		path: path,
		h:    h,
		syms: map[string]unsafe.Pointer{},
	}, nil
}

func (l *Lib) Path() string { return l.path }

// Sym returns the address of the named symbol.
func (l *Lib) Sym(name string) (unsafe.Pointer, error) {
	defer l.mu.Unlock()
	l.mu.Lock()

	if l.h == nil {
		return nil, ErrClosed
	}

	if p, ok := l.syms[name]; ok {
		return p, nil
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cerr *C.char

	p := C.sj_dlsym(l.h, cname, &cerr)
	if cerr != nil {
		return nil, errors.New("dlsym %s: %s", name, dlerr(cerr))
	}
	if p == nil {
		return nil, errors.New("dlsym %s: nil symbol", name)
	}

	l.syms[name] = p

	return p, nil
}

func (l *Lib) Func(name string) (*Func, error) {
	p, err := l.Sym(name)
	if err != nil {
		return nil, err
	}

	return &Func{Name: name, Addr: p}, nil
}

// Close unloads the library. Addresses obtained from it become invalid.
func (l *Lib) Close() error {
	defer l.mu.Unlock()
	l.mu.Lock()

	if l.h == nil {
		return nil
	}

	rc := C.sj_dlclose(l.h)

	l.h = nil
	l.syms = nil

	if rc != 0 {
		return errors.New("dlclose %s: %s", l.path, dlerr(C.dlerror()))
	}

	return nil
}

// Call invokes the function with up to MaxArgs word-sized arguments.
func (f *Func) Call(args ...uintptr) uintptr {
	if len(args) > MaxArgs {
		panic("loader: too many arguments")
	}

	var a [MaxArgs]C.uintptr_t

	for i, x := range args {
		a[i] = C.uintptr_t(x)
	}

	r := C.sj_call(f.Addr, C.int(len(args)), &a[0])

	return uintptr(r)
}

// Int calls a function taking and returning C int.
func (f *Func) Int(args ...int) int {
	w := make([]uintptr, len(args))

	for i, x := range args {
		w[i] = uintptr(int32(x))
	}

	return int(int32(f.Call(w...)))
}

func dlerr(e *C.char) string {
	if e == nil {
		return "unknown dlerror"
	}

	return C.GoString(e)
}
