package relic

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) string {
	t.Helper()
	n, err := ParseProgram(src)
	require.NoError(t, err)
	n, err = NewPreprocessor().Preprocess(n)
	require.NoError(t, err)
	cg := NewCodeGen()
	require.NoError(t, Compile(n, cg))
	return cg.EmitLibrary("main")
}

func TestCompileArithmeticEmitsStackPushes(t *testing.T) {
	c := compileSrc(t, `(+ 1 2)`)
	assert.Contains(t, c, "rt_new_integer(1)")
	assert.Contains(t, c, "rt_new_integer(2)")
	assert.Contains(t, c, "rt_push(rt_new_integer(2));\nrt_push(rt_new_symbol(\"+\"))") // nargs pushed before the operator
	assert.Contains(t, c, `rt_push(rt_new_symbol("+"))`)
	assert.Contains(t, c, "rt_is_symbol(rt_top())")
	assert.Contains(t, c, "rt_apply();")
}

func TestCompileLambdaEmitsSeparateFunction(t *testing.T) {
	c := compileSrc(t, `(define (sq x) (* x x))`)
	assert.Contains(t, c, "rt_new_closure(")

	decl := regexp.MustCompile(`static void func_(\d+)\(\) \{`).FindStringSubmatch(c)
	require.NotNil(t, decl, "expected the compiled lambda to emit its own static function")
	assert.Contains(t, c, `rt_get("#0_func_`+decl[1]+`")`)
}

func TestCompileIfEmitsBranch(t *testing.T) {
	c := compileSrc(t, `(if (> 1 2) 'a 'b)`)
	assert.Contains(t, c, "if (rt_get_bool(rt_pop())) {")
	assert.Contains(t, c, "} else {")
}

func TestCompileQuoteEmitsConstant(t *testing.T) {
	c := compileSrc(t, `'(a b c)`)
	assert.Contains(t, c, "rt_new_constant(")
}

func TestCompileDefineSyntaxRuleReachingCompilerErrors(t *testing.T) {
	// The preprocessor always removes define-syntax-rule/cond/and/or/let
	// before Compile runs; calling compileSpecialForm on one directly
	// (bypassing Preprocess) must still be rejected defensively.
	cg := NewCodeGen()
	cdr := pairNode(nilNode, nilNode)
	err := compileSpecialForm(FormDefineSyntaxRule, cdr, cg)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reached the compiler unexpanded"))
}

func TestCompileNumberInHeadPositionErrors(t *testing.T) {
	cg := NewCodeGen()
	n := pairNode(numberNode(IntNumber(1)), nilNode)
	err := Compile(n, cg)
	assert.Error(t, err)
}

func TestCompileEmitLibraryIncludesRuntimeHeader(t *testing.T) {
	c := compileSrc(t, `1`)
	assert.True(t, strings.HasPrefix(c, "#include \"runtime.h\""))
	assert.Contains(t, c, "int main() {")
}
