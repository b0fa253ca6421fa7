package relic

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const jitWorkDir = "/tmp/relic"

// JITCompileSource parses, preprocesses and compiles src to C, invokes the
// host C compiler to produce a shared object, loads it, and calls its
// entry point (§6's JIT pipeline and library-loading-from-source
// contract). The generated C includes runtime.h, looked up under
// ./c_runtime, and calls rt_* entry points; this package neither ships
// that header nor exports those entry points from Go. name seeds
// the generated library's file and symbol names; call sites that don't
// care about a stable name (import of a .lisp module) should still pass
// one, since it doubles as the exported C entry symbol.
func (rt *Runtime) JITCompileSource(name, src string) error {
	n, err := ParseProgram(src)
	if err != nil {
		return err
	}
	pre := NewPreprocessor()
	n, err = pre.Preprocess(n)
	if err != nil {
		return err
	}

	libName := fmt.Sprintf("jit_%s_%d", name, nextCodegenID())

	cg := NewCodeGen()
	if err := Compile(n, cg); err != nil {
		return err
	}
	cSource := cg.EmitLibrary(libName)

	if err := os.MkdirAll(jitWorkDir, 0o755); err != nil {
		return fmt.Errorf("jit: %w", err)
	}

	cPath := filepath.Join(jitWorkDir, libName+".c")
	if err := os.WriteFile(cPath, []byte(cSource), 0o644); err != nil {
		return fmt.Errorf("jit: %w", err)
	}

	libPath := filepath.Join("lib", libName+".relic")
	if err := os.MkdirAll("lib", 0o755); err != nil {
		return fmt.Errorf("jit: %w", err)
	}

	if err := compileSharedObject(cPath, libPath); err != nil {
		return err
	}

	return rt.importSharedObject(libName, libPath)
}

// compileSharedObject shells out to the host C compiler to turn cPath into
// a shared object at libPath, linking against the c_runtime headers the
// generated source `#include`s and keeping every symbol exported so the
// JIT-loaded module's closures can resolve `func_<k>` back into the
// runtime (§6: "cc -Ic_runtime -shared -fPIC -O3 -g" plus a
// platform-specific flag to keep undefined runtime symbols resolvable at
// load time).
func compileSharedObject(cPath, libPath string) error {
	args := []string{"-Ic_runtime", "-shared", "-fPIC", "-O3", "-g", "-o", libPath, cPath}
	switch runtime.GOOS {
	case "darwin":
		args = append(args, "-undefined", "dynamic_lookup")
	default:
		args = append(args, "-Wl,--export-dynamic")
	}

	cmd := exec.Command("cc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("jit: compiling %s: %w", cPath, err)
	}
	return nil
}
