package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeVectorizeProperList(t *testing.T) {
	n := nodesToList([]*Node{numberNode(IntNumber(1)), numberNode(IntNumber(2))})
	items, err := vectorize(n)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Num.I)
}

func TestNodeVectorizeImproperListErrors(t *testing.T) {
	n := pairNode(numberNode(IntNumber(1)), numberNode(IntNumber(2)))
	_, err := vectorize(n)
	assert.Error(t, err)
}

func TestNodeReplaceSubstitutesFreeSymbolOnly(t *testing.T) {
	n := pairNode(symbolNode(NewSymbol("x")), pairNode(symbolNode(NewSymbol("y")), nilNode))
	replaced := n.replace("x", numberNode(IntNumber(9)))
	assert.Equal(t, "(9 y)", replaced.String())
}

func TestNodeDeepCopyDoesNotAlias(t *testing.T) {
	orig := pairNode(symbolNode(NewSymbol("a")), nilNode)
	cp := orig.deepCopy()
	cp.Car.Sym = NewSymbol("b")
	assert.Equal(t, "a", orig.Car.Sym.String())
	assert.Equal(t, "b", cp.Car.Sym.String())
}

func TestNodeAsUserSymbolRejectsBuiltins(t *testing.T) {
	_, err := symbolNode(NewSymbol("+")).asUserSymbol()
	assert.Error(t, err)

	name, err := symbolNode(NewSymbol("x")).asUserSymbol()
	require.NoError(t, err)
	assert.Equal(t, "x", name)
}

func TestNodeStringRendersDottedPairs(t *testing.T) {
	n := pairNode(numberNode(IntNumber(1)), numberNode(IntNumber(2)))
	assert.Equal(t, "(1 . 2)", n.String())
}
