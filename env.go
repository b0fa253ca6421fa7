package relic

import "fmt"

// NewEnv allocates an Environment cell whose outer is outer, making it
// current only if the caller calls MoveToEnv afterwards. outer is pinned
// on the stack across the allocation so a collection triggered by the
// allocation cannot invalidate it (§4.4's "environments are ordinary heap
// cells").
func (rt *Runtime) NewEnv(name string, outer int) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.newEnvLocked(name, outer)
}

func (rt *Runtime) newEnvLocked(name string, outer int) int {
	rt.pushLocked(outer)
	rt.heap.tryCollect(rt)
	outer = rt.popLocked()
	return rt.allocate(environmentCell(name, outer, true))
}

// CurrentEnv returns the index of __cur_env.
func (rt *Runtime) CurrentEnv() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.currentEnvLocked()
}

func (rt *Runtime) currentEnvLocked() int {
	return rt.getRootLocked(rootCurEnv)
}

// MoveToEnv updates __cur_env to env, which must already be an
// Environment cell.
func (rt *Runtime) MoveToEnv(env int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.moveToEnvLocked(env)
}

func (rt *Runtime) moveToEnvLocked(env int) {
	if rt.heap.cell(env).Kind != KindEnvironment {
		panic("relic: not an environment")
	}
	rt.setRootLocked(rootCurEnv, env)
}

func (rt *Runtime) outerEnvLocked(env int) (int, bool) {
	c := rt.heap.cell(env)
	if c.Kind != KindEnvironment {
		panic("relic: not an environment")
	}
	return c.EnvOuter, c.EnvHasOuter
}

func (rt *Runtime) lookupInEnvLocked(env int, name string) (int, bool) {
	c := rt.heap.cell(env)
	if c.Kind != KindEnvironment {
		panic("relic: not an environment")
	}
	idx, ok := c.EnvVars[name]
	return idx, ok
}

// getLocked walks the outer chain per the lookup protocol of §4.4: check
// the current frame, then recurse into the outer, returning an error once
// the chain is exhausted. It starts at env, not necessarily __cur_env, so
// the closure-call protocol (§4.5) can also use it against an
// already-built argument environment.
func (rt *Runtime) getLocked(env int, name string) (int, error) {
	for {
		if idx, ok := rt.lookupInEnvLocked(env, name); ok {
			return idx, nil
		}
		outer, hasOuter := rt.outerEnvLocked(env)
		if !hasOuter {
			return 0, NewRuntimeError("unbound variable: %s", name)
		}
		env = outer
	}
}

// defineLocked installs name -> value in env, shadowing any outer binding.
func (rt *Runtime) defineLocked(env int, name string, value int) {
	c := rt.heap.cell(env)
	if c.Kind != KindEnvironment {
		panic("relic: not an environment")
	}
	c.EnvVars[name] = value
}

// setLocked walks the outer chain to find the innermost environment that
// already binds name, updates it in place, and returns the old value. It
// reports unbound if no environment in the chain binds name.
func (rt *Runtime) setLocked(env int, name string, value int) (int, error) {
	cur := env
	for {
		if old, ok := rt.lookupInEnvLocked(cur, name); ok {
			rt.heap.cell(cur).EnvVars[name] = value
			return old, nil
		}
		outer, hasOuter := rt.outerEnvLocked(cur)
		if !hasOuter {
			return 0, NewRuntimeError("unbound variable: %s", name)
		}
		cur = outer
	}
}

// Get looks up name starting at the current environment (§6 "define / set
// / get").
func (rt *Runtime) Get(name string) (int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.getLocked(rt.currentEnvLocked(), name)
}

// Define installs name in the current environment, per §4.4.
func (rt *Runtime) Define(name string, value int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.defineLocked(rt.currentEnvLocked(), name, value)
}

// Set walks the outer chain from the current environment per §4.4.
func (rt *Runtime) Set(name string, value int) (int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.setLocked(rt.currentEnvLocked(), name, value)
}

// EnvironmentName returns the display name an Environment cell was
// created with, used by the graphviz printer (graph.go).
func (rt *Runtime) EnvironmentName(idx int) (string, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c := rt.heap.cell(idx)
	if c.Kind != KindEnvironment {
		return "", fmt.Errorf("%s is not an environment", rt.displayLocked(idx))
	}
	return c.EnvName, nil
}
