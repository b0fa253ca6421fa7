package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, 1024, c.GetInt("heap.initial_size"))
	assert.Equal(t, false, c.GetBool("debug.enabled"))
	assert.Equal(t, "ERROR", c.GetString("log.level"))
}

func TestConfigSetAndGetRoundTrip(t *testing.T) {
	c := NewConfig()
	c.SetString("log.level", "DEBUG")
	assert.Equal(t, "DEBUG", c.GetString("log.level"))
}

func TestConfigTypeMismatchPanics(t *testing.T) {
	c := NewConfig()
	assert.Panics(t, func() { c.GetString("heap.initial_size") })
}

func TestConfigMissingPathPanics(t *testing.T) {
	c := NewConfig()
	assert.Panics(t, func() { c.GetInt("does.not.exist") })
}
