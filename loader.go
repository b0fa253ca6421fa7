package relic

import "fmt"

// LoadNode is the C8 parser-to-heap loader: it materializes an AST Node
// (already parsed by Parse/ParseProgram) as heap values and pushes the
// result. It backs the `quote` special form, the `read` special form, and
// `new_constant` (§6), and is also how the JIT driver seeds compiled-in
// literal data.
func (rt *Runtime) LoadNode(n *Node) (int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	before := len(rt.stack)
	idx, err := rt.loadNodeLocked(n)
	if err != nil {
		// Unwind whatever partial sub-structure loadNodeLocked pushed
		// before failing, leaving the stack exactly as found (§4.7).
		rt.stack = rt.stack[:before]
		return 0, err
	}
	rt.pushLocked(idx)
	return idx, nil
}

func (rt *Runtime) loadNodeLocked(n *Node) (int, error) {
	switch n.Kind {
	case NodeNumber:
		if n.Num.IsFloat {
			return rt.allocateWithGC(floatCell(n.Num.F)), nil
		}
		return rt.allocateWithGC(intCell(n.Num.I)), nil
	case NodeSymbol:
		return rt.allocateWithGC(symbolCell(n.Sym)), nil
	case NodeString:
		// String literals desugar to a plain user symbol, not a built-in
		// tag lookup — "t" or "nil" spelled as a string must stay a
		// string, not collide with the boolean constants.
		return rt.allocateWithGC(symbolCell(Symbol{Tag: SymUser, Name: n.Str})), nil
	case NodeSpecialForm:
		return rt.allocateWithGC(symbolCell(NewSymbol(n.Form.String()))), nil
	case NodePair:
		carIdx, err := rt.loadNodeLocked(n.Car)
		if err != nil {
			return 0, err
		}
		// Pin car across the cdr sub-load, which may itself allocate (and
		// therefore collect).
		rt.pushLocked(carIdx)
		cdrIdx, err := rt.loadNodeLocked(n.Cdr)
		if err != nil {
			return 0, err
		}
		carIdx = rt.popLocked()
		return rt.allocateWithGC(pairCell(carIdx, cdrIdx)), nil
	default:
		return 0, fmt.Errorf("loader: unknown node kind")
	}
}

// Read implements the `read` special form: parse one expression out of src
// and load it onto the heap, pushing the result.
func (rt *Runtime) Read(src string) (int, error) {
	l := NewLexer(src)
	n, err := Parse(l)
	if err != nil {
		return 0, err
	}
	return rt.LoadNode(n)
}
