package relic

import "fmt"

// Macro is a define-syntax-rule definition: a pattern describing the
// call's parameter shape (an improper list of formal names) and a
// template body the call's arguments are substituted into. Expansion is
// dynamically scoped textual substitution, not a hygienic macro system —
// deliberately out of scope per SPEC_FULL's non-goals.
type Macro struct {
	Params   *Node // the formal pattern, still a Node (possibly dotted)
	Template *Node
}

// Preprocessor runs one pass over a program expanding macros and
// desugaring `cond`/`and`/`or`/`let`/`(define (f ...) ...)` into the
// smaller set of forms the evaluator and compiler handle directly (`if`,
// `lambda`, `begin`, `define`, `quote`, `set!`).
type Preprocessor struct {
	macros map[string]*Macro
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{macros: make(map[string]*Macro)}
}

// Preprocess rewrites n, expanding any macro invocation and desugaring
// every recognized special form. It may be called again on its own output:
// desugaring is not idempotent-sensitive (already-desugared forms fall
// through the default case unchanged).
func (p *Preprocessor) Preprocess(n *Node) (*Node, error) {
	switch n.Kind {
	case NodeNumber, NodeSymbol, NodeString, NodeSpecialForm:
		return n.deepCopy(), nil
	case NodePair:
		car, err := p.Preprocess(n.Car)
		if err != nil {
			return nil, err
		}
		cdr, err := p.Preprocess(n.Cdr)
		if err != nil {
			return nil, err
		}
		return p.preprocessPair(car, cdr)
	default:
		return nil, fmt.Errorf("unknown node kind")
	}
}

func (p *Preprocessor) preprocessPair(car, cdr *Node) (*Node, error) {
	if car.Kind == NodeSymbol && car.Sym.Tag == SymUser {
		if m, ok := p.macros[car.Sym.Name]; ok {
			return expandMacro(m, cdr)
		}
	}

	if car.Kind != NodeSpecialForm {
		return pairNode(car, cdr), nil
	}

	switch car.Form {
	case FormDefineSyntaxRule:
		return p.defineSyntaxRule(cdr)
	case FormDefine:
		return desugarDefine(car, cdr)
	case FormCond:
		return desugarCond(cdr)
	case FormAnd:
		return desugarAnd(cdr)
	case FormOr:
		return desugarOr(cdr)
	case FormLet:
		return desugarLet(cdr)
	default:
		return pairNode(car, cdr), nil
	}
}

func (p *Preprocessor) defineSyntaxRule(cdr *Node) (*Node, error) {
	sig, body, err := cdr.asPair()
	if err != nil {
		return nil, err
	}
	nameNode, params, err := sig.asPair()
	if err != nil {
		return nil, err
	}
	name, err := nameNode.asUserSymbol()
	if err != nil {
		return nil, err
	}
	p.macros[name] = &Macro{
		Params:   params,
		Template: pairNode(specialFormNode(FormBegin), body),
	}
	return nilNode, nil
}

// expandMacro binds call's arguments against m's formal pattern (which may
// itself be an improper list ending in a variadic rest parameter) and
// substitutes them into a deep copy of the template.
func expandMacro(m *Macro, call *Node) (*Node, error) {
	bindings := make(map[string]*Node)
	if err := matchPattern(m.Params, call, bindings); err != nil {
		return nil, err
	}
	body := m.Template.deepCopy()
	for name, value := range bindings {
		body = body.replace(name, value)
	}
	return body, nil
}

// matchPattern destructures actual against pattern, an improper list of
// symbols, binding each name to the corresponding sublist of actual.
func matchPattern(pattern, actual *Node, bindings map[string]*Node) error {
	switch {
	case pattern.Kind == NodeSymbol && pattern.Sym.Tag == SymUser:
		bindings[pattern.Sym.Name] = actual
		return nil
	case pattern.isNil():
		if !actual.isNil() {
			return fmt.Errorf("macro parameter mismatch: expected end of arguments, got %s", actual)
		}
		return nil
	case pattern.Kind == NodePair:
		if actual.Kind != NodePair {
			return fmt.Errorf("macro parameter mismatch: expected %s, got %s", pattern, actual)
		}
		name, err := pattern.Car.asUserSymbol()
		if err != nil {
			return err
		}
		bindings[name] = actual.Car
		return matchPattern(pattern.Cdr, actual.Cdr, bindings)
	default:
		return fmt.Errorf("invalid macro pattern %s", pattern)
	}
}

// desugarDefine rewrites `(define (f . args) body...)` into
// `(define f (lambda args body...))`; plain `(define x v)` is unchanged.
func desugarDefine(car *Node, cdr *Node) (*Node, error) {
	pattern, body, err := cdr.asPair()
	if err != nil {
		return nil, err
	}
	if pattern.Kind != NodePair {
		return pairNode(car, cdr), nil
	}
	name := pattern.Car
	params := pattern.Cdr
	lambda := pairNode(specialFormNode(FormLambda), pairNode(params, body))
	return nodesToList([]*Node{car, name, lambda}), nil
}

// desugarCond rewrites `(cond (c1 v1...) (c2 v2...) ...)` into nested
// `if`/`begin` forms.
func desugarCond(cdr *Node) (*Node, error) {
	clauses, err := vectorize(cdr)
	if err != nil {
		return nil, err
	}
	body := nilNode
	for i := len(clauses) - 1; i >= 0; i-- {
		cond, value, err := clauses[i].asPair()
		if err != nil {
			return nil, err
		}
		body = nodesToList([]*Node{
			specialFormNode(FormIf),
			cond,
			pairNode(specialFormNode(FormBegin), value),
			body,
		})
	}
	return body, nil
}

// desugarAnd rewrites `(and x1 x2 ... xn)` into nested `if`s, short
// circuiting on the first nil value.
func desugarAnd(cdr *Node) (*Node, error) {
	params, err := vectorize(cdr)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return symbolNode(NewSymbol("t")), nil
	}
	body := params[len(params)-1]
	for i := len(params) - 2; i >= 0; i-- {
		v := params[i]
		test := nodesToList([]*Node{symbolNode(NewSymbol("eq?")), v, nilNode})
		body = nodesToList([]*Node{specialFormNode(FormIf), test, v, body})
	}
	return body, nil
}

// desugarOr rewrites `(or x1 x2 ... xn)` into nested `if`s returning the
// first non-nil value.
func desugarOr(cdr *Node) (*Node, error) {
	params, err := vectorize(cdr)
	if err != nil {
		return nil, err
	}
	body := nilNode
	for i := len(params) - 1; i >= 0; i-- {
		v := params[i]
		body = nodesToList([]*Node{specialFormNode(FormIf), v, v, body})
	}
	return body, nil
}

// desugarLet rewrites `(let ((x1 e1) (x2 e2) ...) body...)` into
// `((lambda (x1 x2 ...) body...) e1 e2 ...)`.
func desugarLet(cdr *Node) (*Node, error) {
	bindingsNode, body, err := cdr.asPair()
	if err != nil {
		return nil, err
	}
	bindings, err := vectorize(bindingsNode)
	if err != nil {
		return nil, err
	}
	var keys, values []*Node
	for _, b := range bindings {
		k, v, err := b.asPair()
		if err != nil {
			return nil, err
		}
		val, _, err := v.asPair()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, val)
	}
	lambda := pairNode(specialFormNode(FormLambda), pairNode(nodesToList(keys), body))
	return pairNode(lambda, nodesToList(values)), nil
}
