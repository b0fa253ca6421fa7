package relic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// codegenCounter hands out the unique closure/library ids the compiled
// output and the JIT driver both rely on, mirroring the monotonic counter
// the original C code generator kept behind a mutex.
var codegenCounter struct {
	mu sync.Mutex
	n  int
}

func nextCodegenID() int {
	codegenCounter.mu.Lock()
	defer codegenCounter.mu.Unlock()
	codegenCounter.n++
	return codegenCounter.n
}

// CodeGen accumulates the C source for one function. The compiler creates
// a fresh CodeGen for every `lambda` it compiles, writes that closure's
// body into it, then merges it into the enclosing generator — so by the
// time the outermost (main) generator is done, it holds the C text for
// every function the program defines.
type CodeGen struct {
	id       *int // nil for the top-level/main generator
	closures map[int]string
	body     strings.Builder
}

// NewCodeGen returns the top-level generator that will become `main`'s (or
// a loaded library's entry function's) body.
func NewCodeGen() *CodeGen {
	return &CodeGen{closures: make(map[int]string)}
}

func newClosureCodeGen() *CodeGen {
	id := nextCodegenID()
	return &CodeGen{id: &id, closures: make(map[int]string)}
}

func (cg *CodeGen) appendCode(format string, args ...any) {
	fmt.Fprintf(&cg.body, format, args...)
}

// merge absorbs a closure generator's own nested closures and its body,
// keyed by the closure generator's id.
func (cg *CodeGen) merge(func_ *CodeGen) {
	for id, body := range func_.closures {
		cg.closures[id] = body
	}
	cg.closures[*func_.id] = func_.body.String()
}

// EmitLibrary renders cg (which must be the top-level generator) as a
// standalone C translation unit exporting a single no-argument entry point
// named entryName, the shape `import`/the JIT driver expects (§6's library
// loading contract): a function that evaluates the whole compiled program
// at the side effect of running it, returning 0 on success.
func (cg *CodeGen) EmitLibrary(entryName string) string {
	var out strings.Builder
	fmt.Fprintf(&out, "#include \"runtime.h\"\n\n")

	ids := make([]int, 0, len(cg.closures))
	for id := range cg.closures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(&out, "static void func_%d();\n", id)
	}

	fmt.Fprintf(&out, "\nint %s() {\n", entryName)
	fmt.Fprintf(&out, "%s\n", cg.body.String())
	fmt.Fprintf(&out, "    return 0;\n}\n")

	for _, id := range ids {
		fmt.Fprintf(&out, "\nstatic void func_%d() {\n%s\n}\n", id, cg.closures[id])
	}
	return out.String()
}

// Compile translates n into C statements appended to cg's body. The
// generated code's contract matches the evaluator's: running it leaves
// exactly one value pushed onto the runtime's operand stack.
func Compile(n *Node, cg *CodeGen) error {
	switch n.Kind {
	case NodeNumber:
		if n.Num.IsFloat {
			cg.appendCode("rt_push(rt_new_float(%s));\n", n.Num.String())
		} else {
			cg.appendCode("rt_push(rt_new_integer(%s));\n", n.Num.String())
		}
		return nil
	case NodeSymbol:
		return compileSymbol(n.Sym, cg)
	case NodeString:
		cg.appendCode("rt_push(rt_new_symbol(%q));\n", n.Str)
		return nil
	case NodeSpecialForm:
		return fmt.Errorf("%s can not appear outside head position", n.Form)
	case NodePair:
		return compilePair(n, cg)
	default:
		return fmt.Errorf("compile: unknown node kind")
	}
}

func compileSymbol(sym Symbol, cg *CodeGen) error {
	if sym.Tag == SymUser {
		cg.appendCode("rt_push(rt_get(%q));\n", sym.Name)
	} else {
		cg.appendCode("rt_push(rt_new_symbol(%q));\n", sym.String())
	}
	return nil
}

func compilePair(n *Node, cg *CodeGen) error {
	if n.Car.Kind == NodeNumber {
		return fmt.Errorf("%s can not be the head of a list", n.Car)
	}
	if n.Car.Kind == NodeSpecialForm {
		return compileSpecialForm(n.Car.Form, n.Cdr, cg)
	}

	// Generic application: a user symbol resolving to either a primitive
	// (dispatched through apply) or a closure, decided at runtime because
	// the head's Kind isn't known until it's evaluated.
	operands, err := vectorize(n.Cdr)
	if err != nil {
		return err
	}
	for _, op := range operands {
		if err := Compile(op, cg); err != nil {
			return err
		}
	}
	cg.appendCode("rt_push(rt_new_integer(%d));\n", len(operands))
	if err := Compile(n.Car, cg); err != nil {
		return err
	}
	cg.appendCode(`if (rt_is_symbol(rt_top())) {
    rt_apply();
} else {
    size_t __callee = rt_pop();
    rt_call_closure(__callee);
}
`)
	return nil
}

func compileSpecialForm(form SpecialFormTag, cdr *Node, cg *CodeGen) error {
	switch form {
	case FormLambda:
		return compileLambda(cdr, cg)

	case FormDisplay:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		if err := Compile(params[0], cg); err != nil {
			return err
		}
		cg.appendCode(`printf("%%s", rt_display_node_idx(rt_pop()));
fflush(NULL);
rt_push(rt_new_symbol("nil"));
`)
		return nil

	case FormNewline:
		if _, err := getNParams(cdr, 0); err != nil {
			return err
		}
		cg.appendCode("printf(\"\\n\");\nrt_push(rt_new_symbol(\"nil\"));\n")
		return nil

	case FormBreakpoint, FormGraphviz:
		if _, err := getNParams(cdr, 0); err != nil {
			return err
		}
		cg.appendCode("rt_push(rt_new_symbol(\"nil\"));\n")
		return nil

	case FormDefine:
		params, err := getNParams(cdr, 2)
		if err != nil {
			return err
		}
		name, err := params[0].asUserSymbol()
		if err != nil {
			return err
		}
		if err := Compile(params[1], cg); err != nil {
			return err
		}
		cg.appendCode("rt_define(%q, rt_pop());\nrt_push(rt_new_symbol(\"nil\"));\n", name)
		return nil

	case FormSet:
		return compileSetFamily("rt_set(%q, rt_pop());\n", cdr, cg, false)
	case FormSetCar:
		return compileSetFamily("rt_set_car(rt_get(%q), rt_pop());\n", cdr, cg, true)
	case FormSetCdr:
		return compileSetFamily("rt_set_cdr(rt_get(%q), rt_pop());\n", cdr, cg, true)

	case FormIf:
		params, err := getNParams(cdr, 3)
		if err != nil {
			return err
		}
		if err := Compile(params[0], cg); err != nil {
			return err
		}
		cg.appendCode("if (rt_get_bool(rt_pop())) {\n")
		if err := Compile(params[1], cg); err != nil {
			return err
		}
		cg.appendCode("} else {\n")
		if err := Compile(params[2], cg); err != nil {
			return err
		}
		cg.appendCode("}\n")
		return nil

	case FormQuote:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		cg.appendCode("rt_push(rt_new_constant(%q));\n", params[0].String())
		return nil

	case FormBegin:
		exprs, err := vectorize(cdr)
		if err != nil {
			return err
		}
		for i, expr := range exprs {
			if i > 0 {
				cg.appendCode("rt_pop();\n")
			}
			if err := Compile(expr, cg); err != nil {
				return err
			}
		}
		if len(exprs) == 0 {
			cg.appendCode("rt_push(rt_new_symbol(\"nil\"));\n")
		}
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
		cg.appendCode("rt_import(%q);\nrt_push(rt_new_symbol(\"nil\"));\n", name)
		return nil

	case FormRead:
		params, err := getNParams(cdr, 1)
		if err != nil {
			return err
		}
		if params[0].Kind != NodeString {
			return fmt.Errorf("read: expected a string literal")
		}
		cg.appendCode("rt_push(rt_new_constant(%q));\n", params[0].Str)
		return nil

	case FormDefineSyntaxRule, FormCond, FormAnd, FormOr, FormLet:
		return fmt.Errorf("%s reached the compiler unexpanded", form)

	default:
		return fmt.Errorf("unhandled special form %s", form)
	}
}

func compileSetFamily(stmt string, cdr *Node, cg *CodeGen, targetIsGet bool) error {
	params, err := getNParams(cdr, 2)
	if err != nil {
		return err
	}
	name, err := params[0].asUserSymbol()
	if err != nil {
		return err
	}
	if err := Compile(params[1], cg); err != nil {
		return err
	}
	cg.appendCode(stmt, name)
	cg.appendCode("rt_push(rt_new_symbol(\"nil\"));\n")
	return nil
}

// compileLambda gives the closure its own CodeGen (so it gets a fresh id
// before anything about its body is known), rewrites free references to
// the formals using the same `#i_func_{id}` naming the interpreted path
// uses, compiles the rewritten body into that generator, then merges it
// back into cg and emits the `new_closure` call that wires the generated
// C function in as the closure's foreign body.
func compileLambda(cdr *Node, cg *CodeGen) error {
	pattern, body, err := cdr.asPair()
	if err != nil {
		return err
	}
	names, variadic, err := lambdaFormals(pattern)
	if err != nil {
		return err
	}

	lambdaGen := newClosureCodeGen()
	lambdaID := *lambdaGen.id
	lambdaName := fmt.Sprintf("%d", lambdaID)

	rewritten := pairNode(specialFormNode(FormBegin), body)
	for i, formal := range names {
		rewritten = rewritten.replace(formal, symbolNode(Symbol{Tag: SymUser, Name: argName(i, lambdaName)}))
	}

	if err := Compile(rewritten, lambdaGen); err != nil {
		return err
	}
	cg.merge(lambdaGen)

	cg.appendCode("rt_push(rt_new_closure(%q, func_%d, %d, %d));\n",
		lambdaName, lambdaID, len(names), boolToC(variadic))
	return nil
}

func boolToC(b bool) int {
	if b {
		return 1
	}
	return 0
}
