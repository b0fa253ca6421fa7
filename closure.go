package relic

import "fmt"

// argName is the generated variable name a compiled closure body uses to
// read its i-th formal parameter (§4.5's "variable naming discipline").
func argName(i int, closureName string) string {
	return fmt.Sprintf("#%d_func_%s", i, closureName)
}

// NewClosure captures the current environment and allocates a Closure cell
// bound to body, pushing its index (the `new_closure` entry of §6).
func (rt *Runtime) NewClosure(name string, body ClosureBody, arity int, variadic bool) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	clo := Closure{
		Name:     name,
		Body:     body,
		Env:      rt.currentEnvLocked(),
		Arity:    arity,
		Variadic: variadic,
	}
	idx := rt.allocateWithGC(closureCell(clo))
	rt.pushLocked(idx)
	return idx
}

// zipStackNodesLocked pops k indices off the stack and builds a single
// proper list of them, from nil up, in the order they were originally
// pushed. It returns the list's index without pushing it. The variadic
// residual-argument packer in PrepareArgs is its only caller; the `list`
// primitive (vm.go) builds its list separately.
func (rt *Runtime) zipStackNodesLocked(k int) int {
	items := make([]int, k)
	for i := k - 1; i >= 0; i-- {
		items[i] = rt.popLocked()
	}
	list := rt.allocateWithGC(symbolCell(NewSymbol("nil")))
	for i := k - 1; i >= 0; i-- {
		list = rt.allocateWithGC(pairCell(items[i], list))
	}
	return list
}

// PrepareArgs implements §4.5 step 2. closureIdx is supplied by the caller
// (the emitted/interpreted call site already knows it), not popped; it pops
// the argument count off the stack top, then that many arguments below it,
// checks arity, builds a fresh call environment, binds formals, and makes
// it current.
func (rt *Runtime) PrepareArgs(closureIdx int) (*Closure, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	c := rt.heap.cell(closureIdx)
	if c.Kind != KindClosure {
		return nil, NewRuntimeError("prepare_args: %s is not a closure", rt.displayLocked(closureIdx))
	}
	clo := c.Clo

	nIdx := rt.popLocked()
	n, err := rt.heap.cell(nIdx).Num.ToUsize()
	if err != nil {
		return nil, NewRuntimeError("prepare_args: argument count is not an integer: %v", err)
	}

	if clo.Variadic {
		if n < clo.Arity-1 {
			return nil, NewRuntimeError("%s: expected at least %d arguments, got %d", clo.Name, clo.Arity-1, n)
		}
	} else if n != clo.Arity {
		return nil, NewRuntimeError("%s: expected %d arguments, got %d", clo.Name, clo.Arity, n)
	}

	env := rt.newEnvLocked(clo.Name, clo.Env)

	fixed := clo.Arity
	if clo.Variadic {
		fixed = clo.Arity - 1
	}

	if clo.Variadic {
		residual := n - fixed
		if residual < 0 {
			residual = 0
		}
		rest := rt.zipStackNodesLocked(residual)
		rt.defineLocked(env, argName(fixed, clo.Name), rest)
	}

	for i := fixed - 1; i >= 0; i-- {
		rt.defineLocked(env, argName(i, clo.Name), rt.popLocked())
	}

	rt.moveToEnvLocked(env)
	return &clo, nil
}

// CallClosure runs the full §4.5 call protocol around a closure body: it
// saves __cur_env, calls PrepareArgs, releases the runtime lock before
// invoking clo.Body (the "never hold the lock across foreign code" rule of
// §5), then restores __cur_env and leaves the body's single return value on
// the stack.
func (rt *Runtime) CallClosure(closureIdx int) error {
	savedEnv := rt.CurrentEnv()

	clo, err := rt.PrepareArgs(closureIdx)
	if err != nil {
		logError("call failed before entering body: %v", err)
		return err
	}

	if err := clo.Body(rt); err != nil {
		logError("%s: %v", clo.Name, err)
		rt.MoveToEnv(savedEnv)
		return err
	}

	result := rt.Pop()
	rt.MoveToEnv(savedEnv)
	rt.Push(result)
	return nil
}
