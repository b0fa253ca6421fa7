package relic

import (
	"fmt"
	"sort"
	"strings"
)

// Graphviz renders the reachable object graph starting from the current
// environment as a DOT digraph named name: every value reachable from a
// binding (following Pair car/cdr and Closure captured environments) plus
// the environment chain itself, each environment as its own filled
// subgraph with a dashed edge to its outer scope. This is purely a
// debugging aid (the `graphviz` special form) — it has no effect on
// evaluation.
func (rt *Runtime) Graphviz(name string) string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.graphvizLocked(name)
}

type graphEnv struct {
	name     string
	vars     map[string]int
	outer    int
	hasOuter bool
}

func (rt *Runtime) graphvizLocked(name string) string {
	nodes := make(map[int]bool)
	envs := make(map[int]*graphEnv)
	queued := make(map[int]bool)
	frontier := []int{rt.currentEnvLocked()}
	queued[frontier[0]] = true

	var addNode func(idx int)
	addNode = func(idx int) {
		if nodes[idx] {
			return
		}
		nodes[idx] = true
		c := rt.heap.cell(idx)
		switch c.Kind {
		case KindPair:
			addNode(c.Car)
			addNode(c.Cdr)
		case KindClosure:
			if !queued[c.Clo.Env] {
				queued[c.Clo.Env] = true
				frontier = append(frontier, c.Clo.Env)
			}
		}
	}

	for i := 0; i < len(frontier); i++ {
		envIdx := frontier[i]
		c := rt.heap.cell(envIdx)
		info := &graphEnv{name: c.EnvName, vars: make(map[string]int, len(c.EnvVars))}
		for k, v := range c.EnvVars {
			info.vars[k] = v
			addNode(v)
		}
		if c.EnvHasOuter {
			info.outer = c.EnvOuter
			info.hasOuter = true
			if !queued[c.EnvOuter] {
				queued[c.EnvOuter] = true
				frontier = append(frontier, c.EnvOuter)
			}
		}
		envs[envIdx] = info
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n\n", name)

	nodeIdxs := sortedKeys(nodes)
	for _, idx := range nodeIdxs {
		c := rt.heap.cell(idx)
		fmt.Fprintf(&b, "\tnode_%d [label=%q, shape=box]\n", idx, rt.displayLocked(idx))
		switch c.Kind {
		case KindPair:
			fmt.Fprintf(&b, "\tnode_%d -> node_%d\n", idx, c.Car)
			fmt.Fprintf(&b, "\tnode_%d -> node_%d\n", idx, c.Cdr)
		case KindClosure:
			fmt.Fprintf(&b, "\tnode_%d -> env_node_%d [label=\"env\", style=dashed]\n", idx, c.Clo.Env)
		}
	}

	envIdxs := sortedKeysEnv(envs)
	for _, envIdx := range envIdxs {
		info := envs[envIdx]
		fmt.Fprintf(&b, "\tsubgraph cluster_%d {\n", envIdx)
		fmt.Fprintf(&b, "\t\tlabel=\"Env %s\"\n", info.name)
		fmt.Fprintf(&b, "\t\tstyle=filled;\n")
		fmt.Fprintf(&b, "\t\tcolor=lightgrey;\n")
		fmt.Fprintf(&b, "\t\tenv_node_%d [label=\"\", shape=point, style=invis];\n\n", envIdx)
		keys := make([]string, 0, len(info.vars))
		for k := range info.vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			val := info.vars[key]
			safe := sanitizeDotID(key)
			fmt.Fprintf(&b, "\t\tkey_%s_%d [label=%q, shape=box];\n", safe, val, key)
			fmt.Fprintf(&b, "\t\tkey_%s_%d -> node_%d;\n", safe, val, val)
		}
		fmt.Fprintf(&b, "\t}\n")
		if info.hasOuter {
			fmt.Fprintf(&b, "\tenv_node_%d -> env_node_%d [label=\"outer\", style=dashed];\n", envIdx, info.outer)
		}
	}

	fmt.Fprintf(&b, "}\n")
	return b.String()
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedKeysEnv(m map[int]*graphEnv) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// sanitizeDotID replaces characters DOT identifiers can't contain (the
// generated argument names already contain # and digits) with underscores.
func sanitizeDotID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
