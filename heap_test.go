package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocateAndFree(t *testing.T) {
	h := newHeap(4)
	assert.Equal(t, 4, h.Size())
	assert.Equal(t, 4, h.Free())

	idx := h.allocate(intCell(7))
	assert.Equal(t, 3, h.Free())
	assert.Equal(t, int64(7), h.cell(idx).Num.I)
}

func TestHeapCollectReclaimsUnreachable(t *testing.T) {
	rt := NewRuntime(4)
	rt.Start()

	rt.NewInteger(1)
	rt.Pop() // now unreachable from any root or stack slot

	before := rt.Free()
	rt.ForceGC()
	assert.Greater(t, rt.Free(), before-1) // the garbage int was not copied forward
}

func TestHeapCollectKeepsRootsAndStack(t *testing.T) {
	rt := NewRuntime(4)
	rt.Start()

	rt.Define("x", rt.NewInteger(42))
	rt.Pop()
	rt.NewInteger(1) // left on the stack

	rt.ForceGC()

	idx, err := rt.Get("x")
	require.NoError(t, err)
	v, err := rt.GetInteger(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	top := rt.Top()
	v, err = rt.GetInteger(top)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestHeapCollectPreservesCycles(t *testing.T) {
	rt := NewRuntime(8)
	rt.Start()

	rt.NewConstant(`(a)`)
	pairIdx := rt.Pop()
	rt.SetCdr(pairIdx, pairIdx)
	rt.Define("cycle", pairIdx)

	rt.ForceGC()

	idx, err := rt.Get("cycle")
	require.NoError(t, err)
	assert.Equal(t, "(a . #0#)", rt.DisplayNodeIdx(idx))
}

func TestHeapGrowsWhenNothingIsReclaimed(t *testing.T) {
	rt := NewRuntime(2)
	rt.Start()

	names := []string{"a", "b", "c", "d", "e"}
	for _, n := range names {
		rt.Define(n, rt.NewInteger(1))
		rt.Pop()
	}

	for _, n := range names {
		idx, err := rt.Get(n)
		require.NoError(t, err)
		v, err := rt.GetInteger(idx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	}
	assert.Greater(t, rt.Size(), 2)
}
