package relic

/*
#include <dlfcn.h>
#include <stdlib.h>

typedef int (*relic_entry_fn)(void);

static int relic_call_entry(void *sym) {
	return ((relic_entry_fn)sym)();
}
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"
)

// loadedLibrary is a dynamic library this runtime has dlopen'd, retained
// for the lifetime of the process (§5: "loaded dynamic libraries ...
// unloaded only on process exit").
type loadedLibrary struct {
	handle unsafe.Pointer
}

// loadDynamicLibrary dlopens path, grounding the original's libloading use
// in cgo since nothing in the pack provides a pure-Go dlopen of an
// arbitrary host .so (see DESIGN.md).
func loadDynamicLibrary(path string) (*loadedLibrary, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW)
	if handle == nil {
		return nil, fmt.Errorf("dlopen %s: %s", path, C.GoString(C.dlerror()))
	}
	return &loadedLibrary{handle: handle}, nil
}

// callEntryFn resolves funcName in lib and calls it as an `int (*)(void)`,
// per §6/package.rs's "function must return 0 to succeed" convention. Must
// be called with the runtime lock released: foreign code may re-enter the
// public API.
func callEntryFn(lib *loadedLibrary, funcName string) error {
	cname := C.CString(funcName)
	defer C.free(unsafe.Pointer(cname))

	C.dlerror() // clear any pending error
	sym := C.dlsym(lib.handle, cname)
	if sym == nil {
		if errmsg := C.dlerror(); errmsg != nil {
			return fmt.Errorf("dlsym %s: %s", funcName, C.GoString(errmsg))
		}
	}

	ret := C.relic_call_entry(sym)
	if ret != 0 {
		return fmt.Errorf("function %s returned %d", funcName, ret)
	}
	return nil
}

// Import implements §6's library loading contract: a no-op if name is
// already loaded; otherwise it looks for a prebuilt shared object under
// ./lib/{name}.relic (dlopen + call its entry point), falling back to a
// source module ./lib/{name}.lisp (parse, preprocess and JIT-compile it,
// which itself produces and loads a .relic).
func (rt *Runtime) Import(name string) error {
	rt.mu.Lock()
	if _, ok := rt.packages[name]; ok {
		rt.mu.Unlock()
		logDebug("import %s: already loaded", name)
		return nil
	}
	rt.mu.Unlock()

	soPath := fmt.Sprintf("./lib/%s.relic", name)
	if _, err := os.Stat(soPath); err == nil {
		logDebug("import %s: loading prebuilt %s", name, soPath)
		return rt.importSharedObject(name, soPath)
	}

	srcPath := fmt.Sprintf("./lib/%s.lisp", name)
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("import %s: no ./lib/%s.relic or ./lib/%s.lisp", name, name, name)
	}
	logDebug("import %s: JIT-compiling %s", name, srcPath)
	if err := rt.JITCompileSource(name, string(src)); err != nil {
		return err
	}
	// Record the module so a later Import of the same name is a no-op.
	rt.mu.Lock()
	rt.packages[name] = &loadedLibrary{}
	rt.mu.Unlock()
	return nil
}

func (rt *Runtime) importSharedObject(name, path string) error {
	lib, err := loadDynamicLibrary(path)
	if err != nil {
		return err
	}
	if err := callEntryFn(lib, name); err != nil {
		return err
	}
	rt.mu.Lock()
	rt.packages[name] = lib
	rt.mu.Unlock()
	return nil
}
