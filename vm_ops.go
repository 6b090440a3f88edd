package dne

import "math"

// exec dispatches and executes a single instruction, mutating vm state.
// It returns (haltValue, true, nil) only when a ReturnLocal pops an empty
// call stack — the top-level result handed back to the host (§4.2
// "Execution loop").
func (vm *VM) exec(op Op) (Value, bool, error) {
	switch op.Code {
	case OpNop:
		vm.current.IP++
		return Value{}, false, nil

	case OpCall:
		return vm.execCall(op)
	case OpDynCall:
		return vm.execDynCall(op)
	case OpResume:
		return vm.execResume(op)
	case OpReturnLocal:
		return vm.execReturn(op)
	case OpYield:
		return vm.execYield(op)
	case OpBreak:
		return vm.execBreak(op)

	case OpJump:
		vm.current.IP = op.Index
		return Value{}, false, nil

	case OpBranchTrue:
		v, err := vm.getTypedLocal(op.Src, kindBool)
		if err != nil {
			return Value{}, false, err
		}
		if v.b {
			vm.current.IP = op.Index
		} else {
			vm.current.IP++
		}
		return Value{}, false, nil

	case OpSetLocalData:
		if err := vm.setLocal(op.Dst, op.Data); err != nil {
			return Value{}, false, err
		}
		vm.current.IP++
		return Value{}, false, nil

	case OpSetLocalReturn:
		if vm.ret == nil {
			return Value{}, false, vm.fail(AccessMissingReturn)
		}
		if err := vm.setLocal(op.Dst, *vm.ret); err != nil {
			return Value{}, false, err
		}
		vm.ret = nil
		vm.current.IP++
		return Value{}, false, nil

	case OpSetLocalVar:
		v, err := vm.getLocal(op.Src)
		if err != nil {
			return Value{}, false, err
		}
		if err := vm.setLocal(op.Dst, v); err != nil {
			return Value{}, false, err
		}
		vm.current.IP++
		return Value{}, false, nil

	case OpGetGlobal:
		if op.Index < 0 || op.Index >= len(vm.globals) {
			return Value{}, false, vm.failLocal(RuntimeAccessMissingLocal, op.Index)
		}
		if err := vm.setLocal(op.Dst, vm.globals[op.Index]); err != nil {
			return Value{}, false, err
		}
		vm.current.IP++
		return Value{}, false, nil

	case OpCons:
		return vm.execCons(op)
	case OpDelete:
		return vm.execDelete(op)
	case OpInsertSlot:
		return vm.execInsertSlot(op)
	case OpRemoveSlot:
		return vm.execRemoveSlot(op)
	case OpGetSlot:
		return vm.execGetSlot(op)
	case OpGetLength:
		return vm.execGetLength(op)
	case OpGetType:
		return vm.execGetType(op)

	case OpIsNil:
		v, err := vm.getLocal(op.Src)
		if err != nil {
			return Value{}, false, err
		}
		rv := BoolValue(v.IsNil())
		vm.ret = &rv
		vm.current.IP++
		return Value{}, false, nil

	case OpClosure:
		return vm.execClosure(op)
	case OpCoroutine:
		return vm.execCoroutine(op)
	case OpDynCoroutine:
		return vm.execDynCoroutine(op)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return vm.execArith(op)
	case OpNeg:
		return vm.execNeg(op)
	case OpAnd, OpOr, OpXor:
		return vm.execBoolBin(op)
	case OpNot:
		return vm.execNot(op)
	case OpEq:
		return vm.execEq(op)
	case OpGt, OpLt:
		return vm.execCompare(op)

	case OpToString:
		return vm.execToString(op)
	case OpConcat:
		return vm.execConcat(op)

	default:
		panic("exec: unknown opcode")
	}
}

func (vm *VM) execCall(op Op) (Value, bool, error) {
	if op.ProcID < 0 || op.ProcID >= len(vm.procs) {
		return Value{}, false, vm.fail(ProcDoesNotExist)
	}
	callee := &vm.procs[op.ProcID]
	args, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	locals := fillLocals(args, callee.StackSize)
	vm.current.IP++
	vm.frames = append(vm.frames, vm.current)
	vm.current = Frame{ProcID: op.ProcID, IP: 0, Locals: locals}
	return Value{}, false, nil
}

func (vm *VM) execDynCall(op Op) (Value, bool, error) {
	cv, err := vm.getTypedLocal(op.Src, kindClosure)
	if err != nil {
		return Value{}, false, err
	}
	closure := cv.clo
	if closure.ProcID < 0 || closure.ProcID >= len(vm.procs) {
		return Value{}, false, vm.fail(ProcDoesNotExist)
	}
	callee := &vm.procs[closure.ProcID]
	args, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	base := make([]Value, 0, len(closure.Env)+len(args))
	base = append(base, closure.Env...)
	base = append(base, args...)
	locals := fillLocals(base, callee.StackSize)
	vm.current.IP++
	vm.frames = append(vm.frames, vm.current)
	vm.current = Frame{ProcID: closure.ProcID, IP: 0, Locals: locals}
	return Value{}, false, nil
}

func (vm *VM) execReturn(op Op) (Value, bool, error) {
	v, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	if len(vm.frames) == 0 {
		return v, true, nil
	}
	vm.current = vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.ret = &v
	return Value{}, false, nil
}

func (vm *VM) execYield(op Op) (Value, bool, error) {
	v, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	co, ok := vm.coros.Pop()
	if !ok {
		return Value{}, false, vm.fail(TopLevelYield)
	}
	if len(vm.frames) == 0 {
		return Value{}, false, vm.fail(TopLevelYield)
	}
	vm.current.IP++ // resuming continues at the next instruction
	saved := vm.current
	co.state = coroActive
	co.frame = &saved

	vm.current = vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.ret = &v
	return Value{}, false, nil
}

func (vm *VM) execBreak(Op) (Value, bool, error) {
	co, ok := vm.coros.Pop()
	if !ok {
		return Value{}, false, vm.fail(TopLevelYield)
	}
	if len(vm.frames) == 0 {
		return Value{}, false, vm.fail(TopLevelYield)
	}
	co.state = coroEnded
	co.frame = nil

	vm.current = vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	nilv := Nil
	vm.ret = &nilv
	return Value{}, false, nil
}

func (vm *VM) execResume(op Op) (Value, bool, error) {
	cv, err := vm.getTypedLocal(op.Src, kindCoroutine)
	if err != nil {
		return Value{}, false, err
	}
	co := cv.coro

	switch co.state {
	case coroStart:
		if co.procID < 0 || co.procID >= len(vm.procs) {
			return Value{}, false, vm.fail(ProcDoesNotExist)
		}
		callee := &vm.procs[co.procID]
		locals := fillLocals(co.params, callee.StackSize)
		vm.current.IP++
		vm.frames = append(vm.frames, vm.current)
		vm.coros.Push(co)
		vm.current = Frame{ProcID: co.procID, IP: 0, Locals: locals}
		return Value{}, false, nil

	case coroDynStart:
		if co.closure.ProcID < 0 || co.closure.ProcID >= len(vm.procs) {
			return Value{}, false, vm.fail(ProcDoesNotExist)
		}
		callee := &vm.procs[co.closure.ProcID]
		base := make([]Value, 0, len(co.closure.Env)+len(co.params))
		base = append(base, co.closure.Env...)
		base = append(base, co.params...)
		locals := fillLocals(base, callee.StackSize)
		vm.current.IP++
		vm.frames = append(vm.frames, vm.current)
		vm.coros.Push(co)
		vm.current = Frame{ProcID: co.closure.ProcID, IP: 0, Locals: locals}
		return Value{}, false, nil

	case coroActive:
		vm.current.IP++
		vm.frames = append(vm.frames, vm.current)
		vm.coros.Push(co)
		vm.current = *co.frame
		co.frame = nil
		return Value{}, false, nil

	case coroEnded:
		nilv := Nil
		vm.ret = &nilv
		vm.current.IP++
		return Value{}, false, nil

	default:
		panic("execResume: unknown coroutine state")
	}
}

func (vm *VM) execCons(op Op) (Value, bool, error) {
	sv, err := vm.getTypedLocal(op.Src, kindSymbol)
	if err != nil {
		return Value{}, false, err
	}
	params, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	if vm.heapLimit > 0 {
		live := uint(0)
		for addr := uint(0); int(addr) < vm.heap.Len(); addr++ {
			if vm.heap.Live(addr) {
				live++
			}
		}
		if live >= vm.heapLimit {
			return Value{}, false, vm.fail(HeapLimitExceeded)
		}
	}
	addr := vm.heap.Alloc(sv.sym, params)
	rv := RefValue(addr)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execDelete(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	if !vm.heap.Free(rv.ref) {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execInsertSlot(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	cons, ok := vm.heap.Get(rv.ref)
	if !ok {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	val, err := vm.getLocal(op.Src2)
	if err != nil {
		return Value{}, false, err
	}
	if op.Index < 0 || op.Index > len(cons.Params) {
		return Value{}, false, vm.failSlotIndex(rv.ref, op.Index)
	}
	cons.Params = append(cons.Params, Value{})
	copy(cons.Params[op.Index+1:], cons.Params[op.Index:])
	cons.Params[op.Index] = val
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execRemoveSlot(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	cons, ok := vm.heap.Get(rv.ref)
	if !ok {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	if op.Index < 0 || op.Index >= len(cons.Params) {
		return Value{}, false, vm.failSlotIndex(rv.ref, op.Index)
	}
	cons.Params = append(cons.Params[:op.Index], cons.Params[op.Index+1:]...)
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execGetSlot(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	cons, ok := vm.heap.Get(rv.ref)
	if !ok {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	if op.Index < 0 || op.Index >= len(cons.Params) {
		return Value{}, false, vm.failSlotIndex(rv.ref, op.Index)
	}
	v := cons.Params[op.Index]
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execGetLength(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	cons, ok := vm.heap.Get(rv.ref)
	if !ok {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	v := IntValue(int64(len(cons.Params)))
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execGetType(op Op) (Value, bool, error) {
	rv, err := vm.getTypedLocal(op.Src, kindRef)
	if err != nil {
		return Value{}, false, err
	}
	cons, ok := vm.heap.Get(rv.ref)
	if !ok {
		return Value{}, false, vm.failHeap(rv.ref)
	}
	v := SymbolValue(cons.Name)
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execClosure(op Op) (Value, bool, error) {
	if op.ProcID < 0 || op.ProcID >= len(vm.procs) {
		return Value{}, false, vm.fail(ProcDoesNotExist)
	}
	env, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	v := ClosureValue(&Closure{ProcID: op.ProcID, Env: env})
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execCoroutine(op Op) (Value, bool, error) {
	if op.ProcID < 0 || op.ProcID >= len(vm.procs) {
		return Value{}, false, vm.fail(ProcDoesNotExist)
	}
	params, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	co := &Coroutine{state: coroStart, procID: op.ProcID, params: params}
	v := CoroutineValue(co)
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execDynCoroutine(op Op) (Value, bool, error) {
	cv, err := vm.getTypedLocal(op.Src, kindClosure)
	if err != nil {
		return Value{}, false, err
	}
	params, err := vm.gatherLocals(op.Args)
	if err != nil {
		return Value{}, false, err
	}
	co := &Coroutine{state: coroDynStart, closure: cv.clo.clone(), params: params}
	v := CoroutineValue(co)
	vm.ret = &v
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execArith(op Op) (Value, bool, error) {
	a, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	b, err := vm.getLocal(op.Src2)
	if err != nil {
		return Value{}, false, err
	}

	var result Value
	switch {
	case a.k == kindInt && b.k == kindInt:
		switch op.Code {
		case OpAdd:
			result = IntValue(a.n + b.n)
		case OpSub:
			result = IntValue(a.n - b.n)
		case OpMul:
			result = IntValue(a.n * b.n)
		case OpDiv:
			result = IntValue(a.n / b.n)
		case OpMod:
			result = IntValue(a.n % b.n)
		}
	case a.k == kindFloat && b.k == kindFloat:
		switch op.Code {
		case OpAdd:
			result = FloatValue(a.f + b.f)
		case OpSub:
			result = FloatValue(a.f - b.f)
		case OpMul:
			result = FloatValue(a.f * b.f)
		case OpDiv:
			result = FloatValue(a.f / b.f)
		case OpMod:
			result = FloatValue(math.Mod(a.f, b.f))
		}
	case a.k != kindInt && a.k != kindFloat:
		return Value{}, false, vm.failType(op.Src, TypeInt, a)
	default:
		return Value{}, false, vm.failType(op.Src2, typeOrDefault(a), b)
	}

	vm.ret = &result
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execNeg(op Op) (Value, bool, error) {
	a, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	var result Value
	switch a.k {
	case kindInt:
		result = IntValue(-a.n)
	case kindFloat:
		result = FloatValue(-a.f)
	default:
		return Value{}, false, vm.failType(op.Src, TypeInt, a)
	}
	vm.ret = &result
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execBoolBin(op Op) (Value, bool, error) {
	a, err := vm.getTypedLocal(op.Src, kindBool)
	if err != nil {
		return Value{}, false, err
	}
	b, err := vm.getTypedLocal(op.Src2, kindBool)
	if err != nil {
		return Value{}, false, err
	}
	var r bool
	switch op.Code {
	case OpAnd:
		r = a.b && b.b
	case OpOr:
		r = a.b || b.b
	case OpXor:
		r = a.b != b.b
	}
	rv := BoolValue(r)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execNot(op Op) (Value, bool, error) {
	a, err := vm.getTypedLocal(op.Src, kindBool)
	if err != nil {
		return Value{}, false, err
	}
	rv := BoolValue(!a.b)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execEq(op Op) (Value, bool, error) {
	a, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	b, err := vm.getLocal(op.Src2)
	if err != nil {
		return Value{}, false, err
	}
	result, ok := valuesEqual(a, b)
	if !ok {
		return Value{}, false, vm.failType(op.Src2, typeOrDefault(a), b)
	}
	rv := BoolValue(result)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execCompare(op Op) (Value, bool, error) {
	a, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	b, err := vm.getLocal(op.Src2)
	if err != nil {
		return Value{}, false, err
	}
	var result bool
	switch {
	case a.k == kindInt && b.k == kindInt:
		if op.Code == OpGt {
			result = a.n > b.n
		} else {
			result = a.n < b.n
		}
	case a.k == kindFloat && b.k == kindFloat:
		if op.Code == OpGt {
			result = a.f > b.f
		} else {
			result = a.f < b.f
		}
	case a.k != kindInt && a.k != kindFloat:
		return Value{}, false, vm.failType(op.Src, TypeInt, a)
	default:
		return Value{}, false, vm.failType(op.Src2, typeOrDefault(a), b)
	}
	rv := BoolValue(result)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execToString(op Op) (Value, bool, error) {
	a, err := vm.getLocal(op.Src)
	if err != nil {
		return Value{}, false, err
	}
	rv := StringValue(a.ToString(&vm.sym))
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) execConcat(op Op) (Value, bool, error) {
	a, err := vm.getTypedLocal(op.Src, kindString)
	if err != nil {
		return Value{}, false, err
	}
	b, err := vm.getTypedLocal(op.Src2, kindString)
	if err != nil {
		return Value{}, false, err
	}
	rv := StringValue(a.str + b.str)
	vm.ret = &rv
	vm.current.IP++
	return Value{}, false, nil
}

func (vm *VM) gatherLocals(slots []int) ([]Value, error) {
	vs := make([]Value, len(slots))
	for i, s := range slots {
		v, err := vm.getLocal(s)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

func typeOrDefault(v Value) Type {
	if t, ok := v.Type(); ok {
		return t
	}
	return TypeInt
}
