package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSymbolInternsBuiltins(t *testing.T) {
	s := NewSymbol("+")
	assert.Equal(t, SymAdd, s.Tag)
	assert.Equal(t, "+", s.String())

	s = NewSymbol("my-var")
	assert.Equal(t, SymUser, s.Tag)
	assert.Equal(t, "my-var", s.String())
}

func TestSymbolIsNil(t *testing.T) {
	assert.True(t, NewSymbol("nil").IsNil())
	assert.False(t, NewSymbol("t").IsNil())
}

func TestLookupSpecialForm(t *testing.T) {
	tag, ok := LookupSpecialForm("lambda")
	assert.True(t, ok)
	assert.Equal(t, FormLambda, tag)

	_, ok = LookupSpecialForm("not-a-form")
	assert.False(t, ok)
}

func TestBuiltinAndSpecialFormNamesAreComplete(t *testing.T) {
	names := BuiltinNames()
	assert.Contains(t, names, "+")
	assert.Contains(t, names, "car")
	assert.Len(t, names, int(SymNumber))

	forms := SpecialFormNames()
	assert.Contains(t, forms, "if")
	assert.Contains(t, forms, "define")
	assert.Len(t, forms, int(FormRead)+1)
}
