package dne

import (
	"context"

	"github.com/Verdex/dne/internal/coropool"
)

// VM is a register-based interpreter: call frames, a managed heap, and a
// coroutine-handle stack mirroring the call stack (§4.2).
type VM struct {
	logging

	procs   []Proc
	procMap map[string]int
	sym     symbols

	globals []Value
	heap    Heap

	frames  []Frame
	current Frame
	ret     *Value

	coros coropool.Stack[*Coroutine]

	heapLimit  uint
	initProcID int
}

// newVM constructs a VM from a compiled program; see api.go for the public,
// functional-options constructor.
func newVM(cp *CompiledProgram) *VM {
	return &VM{
		procs:      cp.Procs,
		procMap:    cp.ProcMap,
		sym:        cp.Symbols,
		initProcID: cp.InitProcID,
	}
}

func (vm *VM) curProc() *Proc { return &vm.procs[vm.current.ProcID] }

// Run resolves entryName and executes it to completion, returning its
// result or the first fatal error (§4.2 "Entry").
func (vm *VM) Run(ctx context.Context, entryName string) (Value, error) {
	if err := vm.runInit(vm.initProcID); err != nil {
		return Value{}, err
	}

	entryIdx, ok := vm.procMap[entryName]
	if !ok {
		return Value{}, &RuntimeError{Kind: ProcDoesNotExist}
	}

	entry := &vm.procs[entryIdx]
	vm.current = Frame{ProcID: entryIdx, IP: 0, Locals: make([]Value, entry.StackSize)}
	vm.frames = nil

	return vm.loop(ctx)
}

// runInit executes the synthesized $init procedure directly (outside the
// normal call protocol: it has no control flow, only a SetLocalData per
// global) and adopts its final locals as the global table.
func (vm *VM) runInit(initProcID int) error {
	init := &vm.procs[initProcID]
	locals := make([]Value, init.StackSize)
	for _, op := range init.Instrs {
		if op.Code != OpSetLocalData {
			continue
		}
		locals[op.Dst] = op.Data
	}
	vm.globals = locals
	return nil
}

func (vm *VM) loop(ctx context.Context) (Value, error) {
	for {
		select {
		case <-ctx.Done():
			return Value{}, ctx.Err()
		default:
		}

		proc := vm.curProc()
		if vm.current.IP < 0 || vm.current.IP >= len(proc.Instrs) {
			return Value{}, vm.fail(InstrPointerOutOfRange)
		}

		op := proc.Instrs[vm.current.IP]
		vm.logf("@", "%s.%d %v", proc.Name, vm.current.IP, op.Code)

		result, halted, err := vm.exec(op)
		if err != nil {
			return Value{}, err
		}
		if halted {
			return result, nil
		}
	}
}

// trace builds the stack trace of §4.2: each saved frame oldest-first, then
// the current frame.
func (vm *VM) trace() StackTrace {
	st := make(StackTrace, 0, len(vm.frames)+1)
	for _, f := range vm.frames {
		st = append(st, TraceFrame{Proc: vm.procs[f.ProcID].Name, IP: f.IP})
	}
	st = append(st, TraceFrame{Proc: vm.curProc().Name, IP: vm.current.IP})
	return st
}

func (vm *VM) fail(kind RuntimeErrorKind) *RuntimeError {
	return &RuntimeError{Kind: kind, Proc: vm.curProc().Name, Trace: vm.trace()}
}

func (vm *VM) failLocal(kind RuntimeErrorKind, local int) *RuntimeError {
	return &RuntimeError{Kind: kind, Proc: vm.curProc().Name, Local: local, Trace: vm.trace()}
}

func (vm *VM) failType(local int, expected Type, found Value) *RuntimeError {
	err := &RuntimeError{
		Kind: LocalUnexpectedType, Proc: vm.curProc().Name, Local: local,
		Expected: expected, Trace: vm.trace(),
	}
	if ft, ok := found.Type(); ok {
		err.Found = ft
		err.HasTypes = true
	} else {
		err.FoundNil = true
	}
	return err
}

func (vm *VM) failHeap(addr uint) *RuntimeError {
	return &RuntimeError{Kind: AccessNilHeap, Proc: vm.curProc().Name, Addr: addr, Trace: vm.trace()}
}

func (vm *VM) failSlotIndex(addr uint, index int) *RuntimeError {
	return &RuntimeError{Kind: AccessMissingSlotIndex, Proc: vm.curProc().Name, Addr: addr, Index: index, Trace: vm.trace()}
}

func (vm *VM) getLocal(i int) (Value, error) {
	if i < 0 || i >= len(vm.current.Locals) {
		return Value{}, vm.failLocal(RuntimeAccessMissingLocal, i)
	}
	return vm.current.Locals[i], nil
}

func (vm *VM) setLocal(i int, v Value) error {
	if i < 0 || i >= len(vm.current.Locals) {
		return vm.failLocal(RuntimeAccessMissingLocal, i)
	}
	vm.current.Locals[i] = v
	return nil
}

func (vm *VM) getTypedLocal(i int, want kind) (Value, error) {
	v, err := vm.getLocal(i)
	if err != nil {
		return Value{}, err
	}
	if v.k != want {
		return Value{}, vm.failType(i, kindToType(want), v)
	}
	return v, nil
}
