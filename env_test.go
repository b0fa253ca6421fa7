package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvDefineGetSet(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	rt.Define("x", rt.NewInteger(1))
	rt.Pop()

	idx, err := rt.Get("x")
	require.NoError(t, err)
	v, err := rt.GetInteger(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	old, err := rt.Set("x", rt.NewInteger(2))
	require.NoError(t, err)
	oldVal, err := rt.GetInteger(old)
	require.NoError(t, err)
	assert.Equal(t, int64(1), oldVal)
	rt.Pop()

	idx, err = rt.Get("x")
	require.NoError(t, err)
	v, err = rt.GetInteger(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestEnvUnboundIsHardError(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	_, err := rt.Get("nope")
	require.Error(t, err)

	_, err = rt.Set("nope", rt.NewInteger(1))
	require.Error(t, err)
}

func TestEnvLookupWalksOuterChain(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	rt.Define("outerVar", rt.NewInteger(10))
	rt.Pop()

	top := rt.CurrentEnv()
	inner := rt.NewEnv("inner", top)
	rt.MoveToEnv(inner)

	idx, err := rt.Get("outerVar")
	require.NoError(t, err)
	v, err := rt.GetInteger(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	rt.Define("innerVar", rt.NewInteger(20))
	rt.Pop()

	rt.MoveToEnv(top)
	_, err = rt.Get("innerVar")
	assert.Error(t, err, "a binding in a child environment must not leak to its parent")
}

func TestEnvironmentName(t *testing.T) {
	rt := NewRuntime(64)
	rt.Start()

	env := rt.NewEnv("frame", rt.CurrentEnv())
	name, err := rt.EnvironmentName(env)
	require.NoError(t, err)
	assert.Equal(t, "frame", name)
}
