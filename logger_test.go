package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	lvl, err := parseLogLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, LogDebug, lvl)

	lvl, err = parseLogLevel("WARNING")
	assert.NoError(t, err)
	assert.Equal(t, LogWarning, lvl)

	lvl, err = parseLogLevel("error")
	assert.NoError(t, err)
	assert.Equal(t, LogError, lvl)

	_, err = parseLogLevel("trace")
	assert.Error(t, err)
}

func TestLoggerGatesBySeverity(t *testing.T) {
	l := &logger{level: LogWarning}
	// debug() and warning() must not panic regardless of whether they
	// actually print; this exercises the level-gating branch directly.
	l.debug("suppressed below floor")
	l.warning("at floor, printed")
	l.error("above floor, printed")
}

func TestGCReclaimAndGrowthLogWithoutPanicking(t *testing.T) {
	// collect() and its growth path call logDebug/logWarning; this just
	// confirms they run cleanly as part of a real collection, not that
	// anything was printed (parseLogLevel/defaultLogger already cover
	// that in isolation).
	rt := NewRuntime(1)
	rt.Start()
	rt.Define("a", rt.NewInteger(1))
	rt.Pop()
	rt.Define("b", rt.NewInteger(2))
	rt.Pop()
}
