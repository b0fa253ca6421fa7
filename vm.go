package relic

// Apply implements the C4 stack-machine dispatch of §4.3: pop an operator
// symbol, pop an argument count, pop that many operands, dispatch to the
// matching primitive, and push exactly one result. It returns an error
// without disturbing the stack below the operator/argument window — every
// primitive below either succeeds and leaves one value, or returns early
// leaving the stack exactly as Apply found it (past the window it already
// consumed).
func (rt *Runtime) Apply() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	opIdx := rt.popLocked()
	opCell := rt.heap.cell(opIdx)
	if opCell.Kind != KindSymbol {
		return NewRuntimeError("apply: operator is not a symbol")
	}

	nIdx := rt.popLocked()
	n, err := rt.heap.cell(nIdx).Num.ToUsize()
	if err != nil {
		return NewRuntimeError("apply: argument count is not an integer: %v", err)
	}

	args := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = rt.popLocked()
	}

	result, err := rt.dispatchLocked(opCell.Sym.Tag, args)
	if err != nil {
		return err
	}
	rt.pushLocked(result)
	return nil
}

func (rt *Runtime) dispatchLocked(tag SymbolTag, args []int) (int, error) {
	switch tag {
	case SymAdd, SymSub, SymMul, SymDiv:
		return rt.foldArith(tag, args)
	case SymRemainder, SymQuotient:
		return rt.intDivOp(tag, args)
	case SymFloor, SymCeiling, SymSin, SymCos, SymAbs:
		return rt.unaryMath(tag, args)
	case SymEqNum, SymGt, SymLt, SymGe, SymLe:
		return rt.numCompare(tag, args)
	case SymEq:
		return rt.eqPrim(args)
	case SymCar:
		return rt.carPrim(args)
	case SymCdr:
		return rt.cdrPrim(args)
	case SymCons:
		return rt.consPrim(args)
	case SymList:
		return rt.listPrim(args)
	case SymAtom:
		return rt.atomPrim(args)
	case SymNumber:
		return rt.numberPrim(args)
	default:
		return 0, NewRuntimeError("apply: unknown primitive operator")
	}
}

func (rt *Runtime) numberOf(idx int) (Number, error) {
	c := rt.heap.cell(idx)
	if c.Kind != KindInt && c.Kind != KindFloat {
		return Number{}, NewRuntimeError("expected a number, got %s", c.Kind)
	}
	return c.Num, nil
}

func (rt *Runtime) pushNumber(n Number) int {
	if n.IsFloat {
		return rt.allocateWithGC(floatCell(n.F))
	}
	return rt.allocateWithGC(intCell(n.I))
}

func (rt *Runtime) foldArith(tag SymbolTag, args []int) (int, error) {
	if len(args) == 0 {
		return 0, NewRuntimeError("%s: expected at least 1 argument, got 0", tag)
	}
	acc, err := rt.numberOf(args[0])
	if err != nil {
		return 0, err
	}
	if tag == SymDiv {
		acc = FloatNumber(acc.AsFloat())
	}
	for _, a := range args[1:] {
		n, err := rt.numberOf(a)
		if err != nil {
			return 0, err
		}
		switch tag {
		case SymAdd:
			acc = numAdd(acc, n)
		case SymSub:
			acc = numSub(acc, n)
		case SymMul:
			acc = numMul(acc, n)
		case SymDiv:
			if n.AsFloat() == 0 {
				return 0, NewRuntimeError("division by zero")
			}
			acc = numDiv(acc, n)
		}
	}
	if tag == SymSub && len(args) == 1 {
		acc = numSub(IntNumber(0), acc)
	}
	if tag == SymDiv && len(args) == 1 {
		if acc.AsFloat() == 0 {
			return 0, NewRuntimeError("division by zero")
		}
		acc = numDiv(IntNumber(1), acc)
	}
	return rt.pushNumber(acc), nil
}

func (rt *Runtime) intDivOp(tag SymbolTag, args []int) (int, error) {
	if len(args) != 2 {
		return 0, NewRuntimeError("%s: expected 2 arguments, got %d", tag, len(args))
	}
	a, err := rt.numberOf(args[0])
	if err != nil {
		return 0, err
	}
	b, err := rt.numberOf(args[1])
	if err != nil {
		return 0, err
	}
	if a.IsFloat || b.IsFloat {
		return 0, NewRuntimeError("%s: requires integer operands", tag)
	}
	if b.I == 0 {
		return 0, NewRuntimeError("division by zero")
	}
	if tag == SymRemainder {
		return rt.pushNumber(IntNumber(a.I % b.I)), nil
	}
	return rt.pushNumber(IntNumber(a.I / b.I)), nil
}

func (rt *Runtime) unaryMath(tag SymbolTag, args []int) (int, error) {
	if len(args) != 1 {
		return 0, NewRuntimeError("%s: expected 1 argument, got %d", tag, len(args))
	}
	n, err := rt.numberOf(args[0])
	if err != nil {
		return 0, err
	}
	return rt.pushNumber(unaryMathOp(tag, n)), nil
}

func (rt *Runtime) numCompare(tag SymbolTag, args []int) (int, error) {
	if len(args) != 2 {
		return 0, NewRuntimeError("%s: expected 2 arguments, got %d", tag, len(args))
	}
	a, err := rt.numberOf(args[0])
	if err != nil {
		return 0, err
	}
	b, err := rt.numberOf(args[1])
	if err != nil {
		return 0, err
	}
	c := numCmp(a, b)
	var ok bool
	switch tag {
	case SymEqNum:
		ok = c == 0
	case SymGt:
		ok = c > 0
	case SymLt:
		ok = c < 0
	case SymGe:
		ok = c >= 0
	case SymLe:
		ok = c <= 0
	}
	return rt.boolCell(ok), nil
}

func (rt *Runtime) boolCell(b bool) int {
	if b {
		return rt.allocateWithGC(symbolCell(NewSymbol("t")))
	}
	return rt.allocateWithGC(symbolCell(NewSymbol("nil")))
}

// eqPrim is the cycle-safe structural equality of §3's invariants; closures
// compare by index identity only.
func (rt *Runtime) eqPrim(args []int) (int, error) {
	if len(args) != 2 {
		return 0, NewRuntimeError("eq?: expected 2 arguments, got %d", len(args))
	}
	return rt.boolCell(rt.structEqual(args[0], args[1], make(map[[2]int]bool))), nil
}

func (rt *Runtime) structEqual(a, b int, seen map[[2]int]bool) bool {
	if a == b {
		return true
	}
	key := [2]int{a, b}
	if seen[key] {
		return true
	}
	ca, cb := rt.heap.cell(a), rt.heap.cell(b)
	if ca.Kind != cb.Kind {
		return false
	}
	switch ca.Kind {
	case KindInt, KindFloat:
		return numEq(ca.Num, cb.Num)
	case KindSymbol:
		return ca.Sym.Tag == cb.Sym.Tag && ca.Sym.Name == cb.Sym.Name
	case KindClosure:
		return false
	case KindPair:
		seen[key] = true
		return rt.structEqual(ca.Car, cb.Car, seen) && rt.structEqual(ca.Cdr, cb.Cdr, seen)
	default:
		return false
	}
}

func (rt *Runtime) carPrim(args []int) (int, error) {
	if len(args) != 1 {
		return 0, NewRuntimeError("car: expected 1 argument, got %d", len(args))
	}
	c := rt.heap.cell(args[0])
	if c.Kind != KindPair {
		return 0, NewRuntimeError("car: %s is not a pair", rt.displayLocked(args[0]))
	}
	return c.Car, nil
}

func (rt *Runtime) cdrPrim(args []int) (int, error) {
	if len(args) != 1 {
		return 0, NewRuntimeError("cdr: expected 1 argument, got %d", len(args))
	}
	c := rt.heap.cell(args[0])
	if c.Kind != KindPair {
		return 0, NewRuntimeError("cdr: %s is not a pair", rt.displayLocked(args[0]))
	}
	return c.Cdr, nil
}

func (rt *Runtime) consPrim(args []int) (int, error) {
	if len(args) != 2 {
		return 0, NewRuntimeError("cons: expected 2 arguments, got %d", len(args))
	}
	return rt.allocateWithGC(pairCell(args[0], args[1])), nil
}

func (rt *Runtime) listPrim(args []int) (int, error) {
	list := rt.allocateWithGC(symbolCell(NewSymbol("nil")))
	for i := len(args) - 1; i >= 0; i-- {
		list = rt.allocateWithGC(pairCell(args[i], list))
	}
	return list, nil
}

func (rt *Runtime) atomPrim(args []int) (int, error) {
	if len(args) != 1 {
		return 0, NewRuntimeError("atom?: expected 1 argument, got %d", len(args))
	}
	return rt.boolCell(rt.heap.cell(args[0]).Kind != KindPair), nil
}

func (rt *Runtime) numberPrim(args []int) (int, error) {
	if len(args) != 1 {
		return 0, NewRuntimeError("number?: expected 1 argument, got %d", len(args))
	}
	k := rt.heap.cell(args[0]).Kind
	return rt.boolCell(k == KindInt || k == KindFloat), nil
}
