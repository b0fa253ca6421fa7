package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodeBuildsHeapStructure(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	n, err := Parse(NewLexer(`(1 2 . 3)`))
	require.NoError(t, err)
	idx, err := rt.LoadNode(n)
	require.NoError(t, err)
	assert.Equal(t, "(1 2 . 3)", rt.DisplayNodeIdx(idx))
	assert.Equal(t, idx, rt.Pop())
}

func TestLoadNodeStringBecomesUserSymbol(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	n, err := Parse(NewLexer(`"t"`))
	require.NoError(t, err)
	idx, err := rt.LoadNode(n)
	require.NoError(t, err)
	// A literal string spelled "t" must not collide with the boolean
	// constant symbol t.
	s, err := rt.GetSymbol(idx)
	require.NoError(t, err)
	assert.Equal(t, "t", s)
	assert.True(t, rt.GetBool(idx), "a string literal is truthy regardless of its spelling")
}

func TestReadParsesAndLoadsOneExpression(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	idx, err := rt.Read(`(a b)`)
	require.NoError(t, err)
	assert.Equal(t, "(a b)", rt.DisplayNodeIdx(idx))
}

func TestLoadNodeUnwindsStackOnFailure(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	rt.NewInteger(1)
	rt.Pop()
	depthBefore := stackDepth(rt)

	// A well-formed node never errors mid-load, so a node of no known kind
	// in cdr position is used to reach the failure path after the car has
	// already been pinned on the stack.
	bad := pairNode(numberNode(IntNumber(1)), &Node{Kind: NodeKind(-1)})
	_, err := rt.LoadNode(bad)
	require.Error(t, err)
	assert.Equal(t, depthBefore, stackDepth(rt))

	// On success LoadNode pushes exactly one value.
	n, err := Parse(NewLexer(`42`))
	require.NoError(t, err)
	_, err = rt.LoadNode(n)
	require.NoError(t, err)
	assert.Equal(t, depthBefore+1, stackDepth(rt))
	rt.Pop()
}

func stackDepth(rt *Runtime) int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.stack)
}
