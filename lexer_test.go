package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokensAndComments(t *testing.T) {
	l := NewLexer(`(+ 1 -2.5 "hi") ; trailing comment
	'sym`)

	want := []TokenKind{
		TokLParen, TokSymbol, TokNumber, TokNumber, TokString, TokRParen, TokQuote, TokSymbol,
	}
	for i, k := range want {
		tok, err := l.Next()
		require.NoErrorf(t, err, "token %d", i)
		assert.Equalf(t, k, tok.Kind, "token %d", i)
	}
	_, err := l.Next()
	assert.ErrorIs(t, err, ErrEOF)
}

func TestLexerNegativeNumberVsMinusOperator(t *testing.T) {
	l := NewLexer(`(- 1 -2)`)
	_, _ = l.Next() // (
	minus, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokSymbol, minus.Kind)
	assert.Equal(t, "-", minus.Text)

	_, _ = l.Next() // 1
	neg, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokNumber, neg.Kind)
	assert.Equal(t, int64(-2), neg.Num.I)
}

func TestLexerFloatLiteral(t *testing.T) {
	l := NewLexer(`3.14`)
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokNumber, tok.Kind)
	assert.True(t, tok.Num.IsFloat)
	assert.Equal(t, 3.14, tok.Num.F)
}

func TestLexerDottedPairTokens(t *testing.T) {
	l := NewLexer(`(a . b)`)
	kinds := []TokenKind{TokLParen, TokSymbol, TokDot, TokSymbol, TokRParen}
	for _, k := range kinds {
		tok, err := l.Next()
		require.NoError(t, err)
		assert.Equal(t, k, tok.Kind)
	}
}
