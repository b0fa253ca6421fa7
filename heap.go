package relic

// heap is the semi-space copying (Cheney) collector of C2, §4.1. Exactly
// one of areas[0]/areas[1] is active at any time; allocation appends to it,
// collection copies live cells into the other one and swaps.
type heap struct {
	areas  [2][]Cell
	active int
	size   int
}

func newHeap(size int) *heap {
	return &heap{
		areas: [2][]Cell{
			make([]Cell, 0, size),
			make([]Cell, 0, size),
		},
		active: 0,
		size:   size,
	}
}

func (h *heap) inactive() int { return 1 - h.active }

// Free returns the number of unused cells left in the active semi-space.
func (h *heap) Free() int { return h.size - len(h.areas[h.active]) }

// Size returns the capacity (in cells) of each semi-space.
func (h *heap) Size() int { return h.size }

func (h *heap) cell(idx int) *Cell { return &h.areas[h.active][idx] }

// allocate appends a cell to the active semi-space without considering
// whether a collection is needed; it is the implementer's job to ensure
// there is headroom (used internally once a GC pass already ran).
func (h *heap) allocate(c Cell) int {
	idx := len(h.areas[h.active])
	h.areas[h.active] = append(h.areas[h.active], c)
	return idx
}

// rootProvider is implemented by Runtime to let the collector enumerate
// everything that must survive a collection (§4.2's two keep-alive
// mechanisms) without heap.go needing to know about roots/the stack
// directly.
type rootProvider interface {
	forEachRoot(func(name string, idx int) int)
	forEachStackSlot(func(idx int) int)
}

// collect runs one Cheney collection pass: every root and stack slot is
// forwarded (recursively copying reachable cells into the inactive
// semi-space), then the semi-spaces swap. If the pass reclaimed no cells
// at all, the semi-space size doubles once and the pass is repeated
// directly into the bigger buffer — growth is a single extra pass, not a
// recursive re-check, since a live set that didn't shrink the first time
// never will against the same roots (§4.1 step 4).
func (h *heap) collect(rp rootProvider) {
	oldFree := h.Free()
	h.sweep(rp)

	if h.Free() == oldFree {
		h.size *= 2
		logWarning("gc: pass reclaimed nothing, growing heap to %d cells per semi-space", h.size)
		h.areas[h.inactive()] = make([]Cell, 0, h.size)
		h.sweep(rp)
	}
}

// sweep forwards every root and stack slot into the inactive semi-space
// and swaps it in, without touching h.size. The one piece of collect's
// logic that must never recurse.
func (h *heap) sweep(rp rootProvider) {
	before := len(h.areas[h.active])

	h.areas[h.inactive()] = h.areas[h.inactive()][:0]

	rp.forEachRoot(func(_ string, idx int) int {
		return h.forward(idx)
	})
	rp.forEachStackSlot(func(idx int) int {
		return h.forward(idx)
	})

	h.active = h.inactive()
	logDebug("gc: %d cells live out of %d reclaimed", len(h.areas[h.active]), before)
}

// tryCollect collects only if the active semi-space has no headroom left
// (the allocate_with_gc convenience of §4.1).
func (h *heap) tryCollect(rp rootProvider) {
	if h.Free() > 0 {
		return
	}
	h.collect(rp)
}

// forward implements the Cheney `forward` primitive of §4.1: copy the
// cell at old (in the space that was active before this collection pass
// started, i.e. the space currently addressed by h.inactive()'s opposite)
// into the inactive space, leaving a Forwarded tombstone behind so cycles
// terminate and repeated references are not copied twice.
func (h *heap) forward(old int) int {
	src := h.active
	dst := h.inactive()

	cell := h.areas[src][old]
	if cell.Kind == KindForwarded {
		return cell.New
	}

	newIdx := len(h.areas[dst])
	h.areas[dst] = append(h.areas[dst], cell)
	h.areas[src][old] = forwardedCell(newIdx)

	switch cell.Kind {
	case KindPair:
		newCar := h.forward(cell.Car)
		newCdr := h.forward(cell.Cdr)
		h.areas[dst][newIdx].Car = newCar
		h.areas[dst][newIdx].Cdr = newCdr
	case KindEnvironment:
		newVars := make(map[string]int, len(cell.EnvVars))
		for name, v := range cell.EnvVars {
			newVars[name] = h.forward(v)
		}
		h.areas[dst][newIdx].EnvVars = newVars
		if cell.EnvHasOuter {
			h.areas[dst][newIdx].EnvOuter = h.forward(cell.EnvOuter)
		}
	case KindClosure:
		h.areas[dst][newIdx].Clo.Env = h.forward(cell.Clo.Env)
	}

	return newIdx
}
