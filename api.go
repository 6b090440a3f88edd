package dne

import (
	"context"

	"github.com/Verdex/dne/internal/panicerr"
)

// New constructs a VM for a compiled program, applying opts in order.
// Construction and its options live in one file since the option set is
// small: just logging and a heap limit, no I/O plumbing.
func New(cp *CompiledProgram, opts ...VMOption) *VM {
	vm := newVM(cp)
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
	return vm
}

// Run executes entryName to completion, wrapping the interpreter loop in
// internal/panicerr.Recover: any unexpected panic inside the loop surfaces
// as a recovered error with a captured stack rather than crashing the host
// process.
func Run(ctx context.Context, vm *VM, entryName string) (Value, error) {
	var result Value
	err := panicerr.Recover("VM", func() error {
		var rerr error
		result, rerr = vm.Run(ctx, entryName)
		return rerr
	})
	if err != nil {
		return Value{}, err
	}
	return result, nil
}

// VMOption configures a VM at construction time (functional-options
// pattern).
type VMOption interface{ apply(vm *VM) }

// WithLogf installs a trace-logging callback; see logging.logf.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption {
	return withLogfn(logfn)
}

// WithHeapLimit caps the number of live heap cells the VM will allocate.
// Zero (the default) means unlimited.
func WithHeapLimit(limit uint) VMOption { return withHeapLimit(limit) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type withHeapLimit uint

func (lim withHeapLimit) apply(vm *VM) { vm.heapLimit = uint(lim) }
