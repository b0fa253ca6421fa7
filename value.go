package relic

// Kind is the closed set of heap-resident value kinds (C1, §3).
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindSymbol
	KindPair
	KindEnvironment
	KindClosure
	KindForwarded
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindSymbol:
		return "Symbol"
	case KindPair:
		return "Pair"
	case KindEnvironment:
		return "Environment"
	case KindClosure:
		return "Closure"
	case KindForwarded:
		return "Forwarded"
	default:
		return "<unknown kind>"
	}
}

// ClosureBody is the foreign-function-backed entry point of a Closure
// (C6). It is invoked with the runtime lock released (see §5): the
// function reads its parameters out of the current environment and must
// leave exactly one return value on the operand stack before returning.
//
// The interpreted evaluator builds closures whose body evaluates their
// AST. No code in this package wraps a C function pointer as a
// ClosureBody.
type ClosureBody func(rt *Runtime) error

// Closure is the C6 procedure value: a unique name (used to derive the
// generated argument-variable names #i_func_{name}), a foreign function
// body, the environment captured at creation time, its arity, and whether
// the last parameter receives the residual argument list.
type Closure struct {
	Name     string
	Body     ClosureBody
	Env      int
	Arity    int
	Variadic bool
}

// Cell is a single heap-resident value (C1). Exactly one Kind's fields are
// meaningful at a time; this mirrors the original Rust `RuntimeNode` enum
// using a tagged struct, which is the idiomatic Go rendition of a closed
// sum type with per-variant payloads.
type Cell struct {
	Kind Kind

	// KindInt / KindFloat
	Num Number

	// KindSymbol
	Sym Symbol

	// KindPair: (Car, Cdr) indices.
	Car, Cdr int

	// KindEnvironment
	EnvName  string
	EnvVars  map[string]int
	EnvOuter int  // only meaningful when EnvHasOuter
	EnvHasOuter bool

	// KindClosure
	Clo Closure

	// KindForwarded: the tombstone written during GC (§4.1). New is the
	// index of the copy already made in the inactive semi-space.
	New int
}

func intCell(n int64) Cell      { return Cell{Kind: KindInt, Num: IntNumber(n)} }
func floatCell(f float64) Cell  { return Cell{Kind: KindFloat, Num: FloatNumber(f)} }
func symbolCell(s Symbol) Cell  { return Cell{Kind: KindSymbol, Sym: s} }
func pairCell(car, cdr int) Cell { return Cell{Kind: KindPair, Car: car, Cdr: cdr} }

func environmentCell(name string, outer int, hasOuter bool) Cell {
	return Cell{
		Kind:        KindEnvironment,
		EnvName:     name,
		EnvVars:     make(map[string]int),
		EnvOuter:    outer,
		EnvHasOuter: hasOuter,
	}
}

func closureCell(c Closure) Cell { return Cell{Kind: KindClosure, Clo: c} }

func forwardedCell(new int) Cell { return Cell{Kind: KindForwarded, New: new} }
