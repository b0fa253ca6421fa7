package relic

import (
	"fmt"
	"sync"
)

// Runtime is the process-wide instance described in §5: a heap, a root
// set, an operand stack, loaded dynamic libraries, and debugger state,
// guarded by a single reader/writer lock. Every public API entry point
// (§6) acquires the lock on entry (the write lock, or the read lock for
// pure queries) and releases it before returning,
// except across a closure call, where the lock must be released so the
// re-entrant call into the runtime from foreign code cannot deadlock.
type Runtime struct {
	mu sync.RWMutex

	heap  *heap
	roots map[string]int
	stack []int

	packages map[string]*loadedLibrary

	dbgLevel    DbgLevel
	dbgCallback DbgCallback

	closureSeq int
}

// NextClosureName returns a fresh unique name to seed a newly created
// closure's generated argument-variable names (§4.5). Used by the
// tree-walking evaluator when building a Closure out of a `lambda` form;
// the C code generator numbers its `func_<k>` names with nextCodegenID
// (compile.go) instead.
func (rt *Runtime) NextClosureName(hint string) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closureSeq++
	return fmt.Sprintf("%s_%d", hint, rt.closureSeq)
}

// reserved root names (§4.2).
const (
	rootTopEnv = "__top_env"
	rootCurEnv = "__cur_env"
)

// NewRuntime allocates a Runtime with semi-spaces of the given cell
// capacity. Start must be called once before any other API entry point.
func NewRuntime(size int) *Runtime {
	return &Runtime{
		heap:     newHeap(size),
		roots:    make(map[string]int),
		packages: make(map[string]*loadedLibrary),
		dbgLevel: DbgNormal,
	}
}

// Start initializes __top_env and __cur_env. It must be called exactly
// once before any other API entry point (§6).
func (rt *Runtime) Start() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, ok := rt.roots[rootTopEnv]; ok {
		panic("relic: Start called twice")
	}
	idx := rt.allocateWithGC(environmentCell("top", 0, false))
	rt.roots[rootTopEnv] = idx
	rt.roots[rootCurEnv] = idx
}

// Clear resets the runtime to an empty, unstarted state.
func (rt *Runtime) Clear() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.heap = newHeap(rt.heap.Size())
	rt.roots = make(map[string]int)
	rt.stack = nil
	rt.packages = make(map[string]*loadedLibrary)
	rt.dbgCallback = nil
	rt.dbgLevel = DbgNormal
}

func (rt *Runtime) allocate(c Cell) int {
	return rt.heap.allocate(c)
}

// allocateWithGC performs §4.1's allocate_with_gc: try_collect, then an
// unconditional allocate that cannot itself trigger another collection.
func (rt *Runtime) allocateWithGC(c Cell) int {
	rt.heap.tryCollect(rt)
	return rt.heap.allocate(c)
}

// forEachRoot and forEachStackSlot satisfy rootProvider so heap.collect
// can walk the two keep-alive mechanisms of §4.2 without importing
// Runtime's concrete type. Root names are visited in sorted order purely
// for deterministic test output — forwarding is idempotent (tombstones),
// so the traversal order never affects correctness.
func (rt *Runtime) forEachRoot(visit func(name string, idx int) int) {
	names := make([]string, 0, len(rt.roots))
	for name := range rt.roots {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		rt.roots[name] = visit(name, rt.roots[name])
	}
}

func (rt *Runtime) forEachStackSlot(visit func(idx int) int) {
	for i, idx := range rt.stack {
		rt.stack[i] = visit(idx)
	}
}

// Free, Size and ForceGC are the observability hooks §4.1 requires tests
// to have access to.
func (rt *Runtime) Free() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.heap.Free()
}

func (rt *Runtime) Size() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.heap.Size()
}

func (rt *Runtime) ForceGC() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.heap.collect(rt)
}

func sortStrings(s []string) {
	// insertion sort: root sets are tiny (a handful of names plus a few
	// short-lived "__"-prefixed helpers), so this avoids pulling in
	// sort just for a handful of comparisons at GC time.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
