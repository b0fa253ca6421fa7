package relic

// This file rounds out the §6 runtime API entries not already covered by
// heap.go/roots.go/env.go/closure.go/vm.go/printer.go/debug.go: the
// typed constructors and accessors emitted/foreign code uses to move
// values between C-land and the heap.

// NewInteger allocates an Int cell and pushes it.
func (rt *Runtime) NewInteger(i int64) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	idx := rt.allocateWithGC(intCell(i))
	rt.pushLocked(idx)
	return idx
}

// NewFloat allocates a Float cell and pushes it.
func (rt *Runtime) NewFloat(f float64) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	idx := rt.allocateWithGC(floatCell(f))
	rt.pushLocked(idx)
	return idx
}

// PushSymbol interns name as a built-in tag or a user symbol, allocates the
// cell, and pushes it (the `new_symbol` entry of §6).
func (rt *Runtime) PushSymbol(name string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	idx := rt.allocateWithGC(symbolCell(NewSymbol(name)))
	rt.pushLocked(idx)
	return idx
}

// NewConstant parses exactly one expression out of src and loads it onto
// the heap via the C8 loader, pushing the result (the `new_constant`
// entry of §6, also the implementation of the `read` special form and of
// `'quoted` literals reached through the JIT/compiled path rather than the
// tree-walking evaluator).
func (rt *Runtime) NewConstant(src string) (int, error) {
	return rt.Read(src)
}

// PushStringLiteral allocates a user symbol cell named s and pushes it —
// how string literals (§3's closed value-kind taxonomy has no String kind)
// reach the heap without risking collision with the builtin-tag interning
// NewSymbol/PushSymbol perform (a string literally spelled "t" or "nil"
// must stay a string, not become the boolean constant).
func (rt *Runtime) PushStringLiteral(s string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	idx := rt.allocateWithGC(symbolCell(Symbol{Tag: SymUser, Name: s}))
	rt.pushLocked(idx)
	return idx
}

// SetCar mutates the Pair at pairIdx in place and returns its index, or an
// error if pairIdx is not a pair.
func (rt *Runtime) SetCar(pairIdx, value int) (int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	c := rt.heap.cell(pairIdx)
	if c.Kind != KindPair {
		return 0, NewRuntimeError("set-car!: %s is not a pair", rt.displayLocked(pairIdx))
	}
	c.Car = value
	return pairIdx, nil
}

// SetCdr mutates the Pair at pairIdx in place and returns its index, or an
// error if pairIdx is not a pair. Mutating Cdr is how `make-cycle` in §8's
// scenario 4 builds a circular list.
func (rt *Runtime) SetCdr(pairIdx, value int) (int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	c := rt.heap.cell(pairIdx)
	if c.Kind != KindPair {
		return 0, NewRuntimeError("set-cdr!: %s is not a pair", rt.displayLocked(pairIdx))
	}
	c.Cdr = value
	return pairIdx, nil
}

// GetInteger returns the Int value at idx.
func (rt *Runtime) GetInteger(idx int) (int64, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	if c.Kind != KindInt {
		return 0, NewRuntimeError("%s is not an integer", rt.displayLocked(idx))
	}
	return c.Num.I, nil
}

// GetFloat returns the Float value at idx.
func (rt *Runtime) GetFloat(idx int) (float64, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	if c.Kind != KindFloat {
		return 0, NewRuntimeError("%s is not a float", rt.displayLocked(idx))
	}
	return c.Num.F, nil
}

// GetSymbol returns the textual name of the symbol at idx.
func (rt *Runtime) GetSymbol(idx int) (string, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	if c.Kind != KindSymbol {
		return "", NewRuntimeError("%s is not a symbol", rt.displayLocked(idx))
	}
	return c.Sym.String(), nil
}

// GetBool reports whether idx is anything other than the nil symbol, the
// dialect's truthiness rule (§3: "nil ... is also the false value").
func (rt *Runtime) GetBool(idx int) bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	return !(c.Kind == KindSymbol && c.Sym.IsNil())
}

// IsSymbol reports whether idx holds a Symbol cell.
func (rt *Runtime) IsSymbol(idx int) bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.heap.cell(idx).Kind == KindSymbol
}

// KindOf reports idx's Kind, for collaborators (the tree-walking evaluator,
// the C code generator) that need to branch on a value's shape without
// reaching into the heap directly.
func (rt *Runtime) KindOf(idx int) Kind {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.heap.cell(idx).Kind
}

// SymbolTagOf returns the SymbolTag of the Symbol cell at idx, erroring if
// idx is not a Symbol.
func (rt *Runtime) SymbolTagOf(idx int) (SymbolTag, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	if c.Kind != KindSymbol {
		return 0, NewRuntimeError("%s is not a symbol", rt.displayLocked(idx))
	}
	return c.Sym.Tag, nil
}
