package relic

import (
	"fmt"
	"io"
)

// Evaluator is the tree-walking executor: one of the three ways a program
// reaches the runtime (the others are the C code generator and the JIT
// driver). It shares the runtime's heap, stack, environments and closure
// protocol with those other two — a `lambda` form becomes an ordinary
// Closure cell whose body is a Go function that recurses back into Eval,
// exactly as §4.5 describes for the interpreted case.
type Evaluator struct {
	rt  *Runtime
	pre *Preprocessor
	Out io.Writer
}

func NewEvaluator(rt *Runtime, out io.Writer) *Evaluator {
	return &Evaluator{rt: rt, pre: NewPreprocessor(), Out: out}
}

// Run parses, preprocesses and evaluates an entire source string as one
// implicit `(begin ...)` form, returning the index of its final value.
func (e *Evaluator) Run(src string) (int, error) {
	n, err := ParseProgram(src)
	if err != nil {
		return 0, err
	}
	n, err = e.pre.Preprocess(n)
	if err != nil {
		return 0, err
	}
	if err := e.Eval(n); err != nil {
		e.rt.ReportError(err.Error())
		return 0, err
	}
	return e.rt.Pop(), nil
}

// Eval evaluates n and leaves exactly one resulting value on the operand
// stack — the same contract Apply and CallClosure already honor, so a
// sub-evaluation composes with them directly.
func (e *Evaluator) Eval(n *Node) error {
	switch n.Kind {
	case NodeNumber:
		if n.Num.IsFloat {
			e.rt.NewFloat(n.Num.F)
		} else {
			e.rt.NewInteger(n.Num.I)
		}
		return nil
	case NodeString:
		e.rt.PushStringLiteral(n.Str)
		return nil
	case NodeSpecialForm:
		e.rt.PushSymbol(n.Form.String())
		return nil
	case NodeSymbol:
		return e.evalSymbol(n.Sym)
	case NodePair:
		return e.evalPair(n)
	default:
		return fmt.Errorf("eval: unknown node kind")
	}
}

func (e *Evaluator) evalSymbol(sym Symbol) error {
	if sym.Tag != SymUser {
		e.rt.PushSymbol(sym.String())
		return nil
	}
	idx, err := e.rt.Get(sym.Name)
	if err != nil {
		return err
	}
	e.rt.Push(idx)
	return nil
}

func (e *Evaluator) evalPair(n *Node) error {
	if n.Car.Kind == NodeSpecialForm {
		return e.evalSpecialForm(n.Car.Form, n.Cdr)
	}

	if err := e.Eval(n.Car); err != nil {
		return err
	}
	headIdx := e.rt.Pop()
	kind := e.rt.KindOf(headIdx)

	var applyErr error
	switch kind {
	case KindSymbol:
		tag, err := e.rt.SymbolTagOf(headIdx)
		if err != nil {
			return err
		}
		if tag == SymUser {
			return fmt.Errorf("%s can not be the head of a list", e.rt.DisplayNodeIdx(headIdx))
		}
		applyErr = e.applyPrimitive(tag, n.Cdr)
	case KindClosure:
		applyErr = e.applyClosure(headIdx, n.Cdr)
	default:
		return fmt.Errorf("%s can not be the head of a list", e.rt.DisplayNodeIdx(headIdx))
	}
	if applyErr == nil {
		e.rt.Evaluated(n.String(), false)
	}
	return applyErr
}

func (e *Evaluator) applyPrimitive(tag SymbolTag, cdr *Node) error {
	args, err := vectorize(cdr)
	if err != nil {
		return err
	}
	for _, a := range args {
		if err := e.Eval(a); err != nil {
			return err
		}
	}
	e.rt.NewInteger(int64(len(args)))
	e.rt.PushSymbol(tag.String())
	return e.rt.Apply()
}

func (e *Evaluator) applyClosure(closureIdx int, cdr *Node) error {
	args, err := vectorize(cdr)
	if err != nil {
		return err
	}
	for _, a := range args {
		if err := e.Eval(a); err != nil {
			return err
		}
	}
	e.rt.NewInteger(int64(len(args)))
	return e.rt.CallClosure(closureIdx)
}

func (e *Evaluator) evalSpecialForm(form SpecialFormTag, cdr *Node) error {
	switch form {
	case FormQuote:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		_, err = e.rt.LoadNode(params[0])
		return err

	case FormIf:
		params, err := getNParams(cdr, 3)
		if err != nil {
			return err
		}
		if err := e.Eval(params[0]); err != nil {
			return err
		}
		cond := e.rt.Pop()
		if e.rt.GetBool(cond) {
			return e.Eval(params[1])
		}
		return e.Eval(params[2])

	case FormDefine:
		params, err := getNParams(cdr, 2)
		if err != nil {
			return err
		}
		name, err := params[0].asUserSymbol()
		if err != nil {
			return err
		}
		if err := e.Eval(params[1]); err != nil {
			return err
		}
		e.rt.Define(name, e.rt.Pop())
		e.rt.PushSymbol("nil")
		return nil

	case FormSet:
		params, err := getNParams(cdr, 2)
		if err != nil {
			return err
		}
		name, err := params[0].asUserSymbol()
		if err != nil {
			return err
		}
		if err := e.Eval(params[1]); err != nil {
			return err
		}
		if _, err := e.rt.Set(name, e.rt.Pop()); err != nil {
			return err
		}
		e.rt.PushSymbol("nil")
		return nil

	case FormSetCar, FormSetCdr:
		params, err := getNParams(cdr, 2)
		if err != nil {
			return err
		}
		name, err := params[0].asUserSymbol()
		if err != nil {
			return err
		}
		target, err := e.rt.Get(name)
		if err != nil {
			return err
		}
		if err := e.Eval(params[1]); err != nil {
			return err
		}
		value := e.rt.Pop()
		if form == FormSetCar {
			_, err = e.rt.SetCar(target, value)
		} else {
			_, err = e.rt.SetCdr(target, value)
		}
		if err != nil {
			return err
		}
		e.rt.PushSymbol("nil")
		return nil

	case FormLambda:
		params, body, err := cdr.asPair()
		if err != nil {
			return err
		}
		return e.makeClosure(params, body)

	case FormBegin:
		exprs, err := vectorize(cdr)
		if err != nil {
			return err
		}
		if len(exprs) == 0 {
			e.rt.PushSymbol("nil")
			return nil
		}
		for _, expr := range exprs[:len(exprs)-1] {
			if err := e.Eval(expr); err != nil {
				return err
			}
			e.rt.Pop()
		}
		return e.Eval(exprs[len(exprs)-1])

	case FormDisplay:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		if err := e.Eval(params[0]); err != nil {
			return err
		}
		fmt.Fprint(e.Out, e.rt.DisplayNodeIdx(e.rt.Pop()))
		e.rt.PushSymbol("nil")
		return nil

	case FormNewline:
		if _, err := getNParams(cdr, 0); err != nil {
			return err
		}
		fmt.Fprint(e.Out, "\n")
		e.rt.PushSymbol("nil")
		return nil

	case FormGraphviz:
		fmt.Fprint(e.Out, e.rt.Graphviz("state"))
		e.rt.PushSymbol("nil")
		return nil

	case FormBreakpoint:
		e.rt.Breakpoint()
		e.rt.PushSymbol("nil")
		return nil

	case FormImport:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		name, err := params[0].asUserSymbol()
		if err != nil {
			return err
		}
		if err := e.rt.Import(name); err != nil {
			return err
		}
		e.rt.PushSymbol("nil")
		return nil

	case FormRead:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		if params[0].Kind != NodeString {
			return fmt.Errorf("read: expected a string literal")
		}
		_, err = e.rt.Read(params[0].Str)
		return err

	case FormDefineSyntaxRule, FormCond, FormAnd, FormOr, FormLet:
		return fmt.Errorf("%s reached the evaluator unexpanded", form)

	default:
		return fmt.Errorf("unhandled special form %s", form)
	}
}

// makeClosure implements §4.5's variable naming discipline for the
// interpreted path: free references to the formals inside body are
// rewritten to the generated `#i_func_{name}` scheme before the Closure is
// built, so PrepareArgs's bindings (env.go/closure.go) are exactly what the
// body looks up. This is what lets the tree-walking evaluator share C6's
// call protocol with the compiled and JIT paths instead of keeping its own
// parallel environment model.
func (e *Evaluator) makeClosure(params, body *Node) error {
	names, variadic, err := lambdaFormals(params)
	if err != nil {
		return err
	}
	name := e.rt.NextClosureName("lambda")

	rewritten := pairNode(specialFormNode(FormBegin), body)
	for i, formal := range names {
		rewritten = rewritten.replace(formal, symbolNode(Symbol{Tag: SymUser, Name: argName(i, name)}))
	}

	closureBody := func(rt *Runtime) error {
		return e.Eval(rewritten)
	}

	e.rt.NewClosure(name, closureBody, len(names), variadic)
	return nil
}

// lambdaFormals walks a parameter pattern — a proper list, an improper
// (dotted) list, or a bare symbol — into its positional names and whether
// the last one is variadic.
func lambdaFormals(params *Node) ([]string, bool, error) {
	if params.Kind == NodeSymbol {
		name, err := params.asUserSymbol()
		if err != nil {
			return nil, false, err
		}
		return []string{name}, true, nil
	}

	var names []string
	cur := params
	for {
		if cur.isNil() {
			return names, false, nil
		}
		if cur.Kind != NodePair {
			name, err := cur.asUserSymbol()
			if err != nil {
				return nil, false, err
			}
			return append(names, name), true, nil
		}
		name, err := cur.Car.asUserSymbol()
		if err != nil {
			return nil, false, err
		}
		names = append(names, name)
		cur = cur.Cdr
	}
}
