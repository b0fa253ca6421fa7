package relic

import (
	"fmt"
	"strings"
)

// DisplayNodeIdx renders the value at idx using the cycle-safe Lisp-style
// printer of C7, §4.6. Cycle detection is by cell identity (heap index),
// not extensional equality — the printer must terminate even when eq?
// would recurse forever comparing the same cyclic structure.
func (rt *Runtime) DisplayNodeIdx(idx int) string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.displayLocked(idx)
}

func (rt *Runtime) displayLocked(idx int) string {
	var b strings.Builder
	visited := make(map[int]int)
	rt.printCell(&b, idx, visited, 0)
	return b.String()
}

// printCell prints the cell at idx. visited maps a heap index to the id
// it was assigned the first time it was seen as the target of some car
// or cdr field; a repeat sighting prints "#id#" instead of recursing.
func (rt *Runtime) printCell(b *strings.Builder, idx int, visited map[int]int, id int) {
	c := rt.heap.cell(idx)
	switch c.Kind {
	case KindInt, KindFloat:
		fmt.Fprint(b, c.Num.String())
	case KindSymbol:
		fmt.Fprint(b, c.Sym.String())
	case KindEnvironment:
		fmt.Fprintf(b, "#<environment %s>", c.EnvName)
	case KindClosure:
		fmt.Fprintf(b, "#<closure %s>", c.Clo.Name)
	case KindForwarded:
		fmt.Fprintf(b, "#<forwarded %d>", c.New)
	case KindPair:
		rt.printPairChain(b, idx, visited, id)
	default:
		fmt.Fprintf(b, "#<unknown>")
	}
}

func (rt *Runtime) printPairChain(b *strings.Builder, idx int, visited map[int]int, id int) {
	c := rt.heap.cell(idx)

	if prevID, ok := visited[c.Cdr]; ok {
		fmt.Fprintf(b, "#%d#", prevID)
		return
	}
	visited[c.Cdr] = id

	if prevID, ok := visited[c.Car]; ok {
		fmt.Fprintf(b, "(#%d#", prevID)
	} else {
		b.WriteByte('(')
		rt.printCell(b, c.Car, visited, id)
		visited[c.Car] = id
	}

	current := c.Cdr
	currentID := id
	for {
		node := rt.heap.cell(current)
		if node.Kind == KindSymbol && node.Sym.IsNil() {
			break
		}
		if node.Kind != KindPair {
			fmt.Fprint(b, " . ")
			rt.printCell(b, current, visited, currentID)
			break
		}

		if prevID, ok := visited[node.Cdr]; ok {
			fmt.Fprintf(b, " . #%d#", prevID)
			break
		}
		nextID := currentID + 1
		visited[node.Cdr] = nextID

		if prevID, ok := visited[node.Car]; ok {
			fmt.Fprintf(b, " #%d#", prevID)
		} else {
			b.WriteByte(' ')
			rt.printCell(b, node.Car, visited, nextID)
			visited[node.Car] = nextID
		}

		current = node.Cdr
		currentID = nextID
	}
	b.WriteByte(')')
}
