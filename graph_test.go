package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphvizProducesValidDigraph(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()
	rt.Define("x", rt.NewInteger(1))
	rt.Pop()

	out := rt.Graphviz("state")
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "cluster_")
}

func TestGraphvizHandlesCycles(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	idx, _ := rt.NewConstant(`(a)`)
	rt.SetCdr(idx, idx)
	rt.Define("cyc", idx)
	rt.Pop()

	// Must terminate and produce output even though the structure is
	// self-referential.
	out := rt.Graphviz("state")
	assert.Contains(t, out, "digraph")
}
