package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyAndPop(t *testing.T, rt *Runtime, op string, args ...int) int {
	t.Helper()
	for _, a := range args {
		rt.Push(a)
	}
	rt.NewInteger(int64(len(args)))
	rt.PushSymbol(op)
	require.NoError(t, rt.Apply())
	return rt.Pop()
}

func TestApplyArithmetic(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	t.Run("+ folds across all args", func(t *testing.T) {
		a, b, c := rt.NewInteger(1), rt.NewInteger(2), rt.NewInteger(3)
		rt.Pop()
		rt.Pop()
		rt.Pop()
		v, err := rt.GetInteger(applyAndPop(t, rt, "+", a, b, c))
		require.NoError(t, err)
		assert.Equal(t, int64(6), v)
	})

	t.Run("- with one arg negates", func(t *testing.T) {
		a := rt.NewInteger(5)
		rt.Pop()
		v, err := rt.GetInteger(applyAndPop(t, rt, "-", a))
		require.NoError(t, err)
		assert.Equal(t, int64(-5), v)
	})

	t.Run("/ with one arg reciprocates and widens to float", func(t *testing.T) {
		a := rt.NewInteger(4)
		rt.Pop()
		v, err := rt.GetFloat(applyAndPop(t, rt, "/", a))
		require.NoError(t, err)
		assert.Equal(t, 0.25, v)
	})

	t.Run("division by zero errors", func(t *testing.T) {
		a, b := rt.NewInteger(1), rt.NewInteger(0)
		rt.Pop()
		rt.Pop()
		rt.Push(a)
		rt.Push(b)
		rt.NewInteger(2)
		rt.PushSymbol("/")
		assert.Error(t, rt.Apply())
	})
}

func TestApplyIntDivOps(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	a, b := rt.NewInteger(7), rt.NewInteger(2)
	rt.Pop()
	rt.Pop()

	v, err := rt.GetInteger(applyAndPop(t, rt, "quotient", a, b))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = rt.GetInteger(applyAndPop(t, rt, "remainder", a, b))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestApplyComparisons(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	a, b := rt.NewInteger(3), rt.NewInteger(5)
	rt.Pop()
	rt.Pop()

	assert.True(t, rt.GetBool(applyAndPop(t, rt, "<", a, b)))
	assert.False(t, rt.GetBool(applyAndPop(t, rt, ">", a, b)))
	assert.True(t, rt.GetBool(applyAndPop(t, rt, "<=", a, a)))
}

func TestApplyPairPrimitives(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	a, b := rt.NewInteger(1), rt.NewInteger(2)
	rt.Pop()
	rt.Pop()

	consIdx := applyAndPop(t, rt, "cons", a, b)
	assert.Equal(t, "(1 . 2)", rt.DisplayNodeIdx(consIdx))

	carIdx := applyAndPop(t, rt, "car", consIdx)
	v, err := rt.GetInteger(carIdx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	listIdx := applyAndPop(t, rt, "list", a, b)
	assert.Equal(t, "(1 2)", rt.DisplayNodeIdx(listIdx))

	assert.True(t, rt.GetBool(applyAndPop(t, rt, "atom?", a)))
	assert.False(t, rt.GetBool(applyAndPop(t, rt, "atom?", consIdx)))

	assert.True(t, rt.GetBool(applyAndPop(t, rt, "number?", a)))
}

func TestApplyEqStructural(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	l1 := applyAndPop(t, rt, "list", rt.NewInteger(1), rt.NewInteger(2))
	l2 := applyAndPop(t, rt, "list", rt.NewInteger(1), rt.NewInteger(2))
	assert.True(t, rt.GetBool(applyAndPop(t, rt, "eq?", l1, l2)))
}

func TestApplyUnknownOperatorErrors(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	rt.NewInteger(0)
	rt.PushSymbol("nil") // not a registered primitive operator
	assert.Error(t, rt.Apply())
}
