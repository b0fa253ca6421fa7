package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplaySimpleValues(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	assert.Equal(t, "1", rt.DisplayNodeIdx(rt.NewInteger(1)))
	assert.Equal(t, "1.5", rt.DisplayNodeIdx(rt.NewFloat(1.5)))
	assert.Equal(t, "foo", rt.DisplayNodeIdx(rt.PushSymbol("foo")))
}

func TestDisplayProperAndImproperLists(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	idx, err := rt.NewConstant(`(a b c)`)
	require.NoError(t, err)
	assert.Equal(t, "(a b c)", rt.DisplayNodeIdx(idx))

	idx, err = rt.NewConstant(`(a . b)`)
	require.NoError(t, err)
	assert.Equal(t, "(a . b)", rt.DisplayNodeIdx(idx))
}

func TestDisplayCyclicTail(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	idx, err := rt.NewConstant(`(a b c)`)
	require.NoError(t, err)

	// Walk to the last pair (c . nil) and make it point back to the head,
	// reproducing §8 scenario 4's make-cycle.
	last := idx
	for {
		c := rt.heap.cell(last)
		next := rt.heap.cell(c.Cdr)
		if next.Kind == KindSymbol && next.Sym.IsNil() {
			break
		}
		last = c.Cdr
	}
	rt.SetCdr(last, idx)

	assert.Equal(t, "(a b c . #0#)", rt.DisplayNodeIdx(idx))
}
