package dne

import (
	"fmt"
	"strings"
)

// CompileErrorKind is the lowering-time error taxonomy of §4.1/§7. Lowering
// fails fatally at the first error encountered; there are no partial
// programs.
type CompileErrorKind uint8

const (
	DupFunName CompileErrorKind = iota
	ReuseParamName
	AccessMissingLocal
	AccessMissingProc
	AccessMissingLabel
	ProcCallArityMismatch
	TypeMismatch
)

// CompileError carries the enclosing procedure's name, and for call/closure
// errors also the caller and callee names, per §4.1 "Error taxonomy".
type CompileError struct {
	Kind   CompileErrorKind
	Proc   string // enclosing procedure; "$init" for a global initializer
	Callee string // Call/DynCall/Closure/Coroutine target, when applicable
	Name   string // missing/duplicated identifier

	WantArity int
	GotArity  int

	// CalleeParams and CalleeReturn carry the full signature of Callee, so
	// an arity mismatch can pretty-print "expected tgt(Int, Int) -> Int"
	// rather than bare counts.
	CalleeParams []Type
	CalleeReturn Type

	Expected Type
	Found    Type
	HasTypes bool
}

// signature renders a procedure's arity/type signature as "name(T1, T2) -> R",
// grounded on the original's Display-impl style of spelling out context
// around every compile error rather than bare values.
func signature(name string, params []Type, ret Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	b.WriteString(ret.String())
	return b.String()
}

func (e *CompileError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case DupFunName:
		fmt.Fprintf(&b, "duplicate procedure name %q", e.Name)
	case ReuseParamName:
		fmt.Fprintf(&b, "in proc %q: parameter name %q reused", e.Proc, e.Name)
	case AccessMissingLocal:
		fmt.Fprintf(&b, "in proc %q: no such local %q", e.Proc, e.Name)
	case AccessMissingProc:
		fmt.Fprintf(&b, "in proc %q: no such procedure %q", e.Proc, e.Name)
	case AccessMissingLabel:
		fmt.Fprintf(&b, "in proc %q: no such label %q", e.Proc, e.Name)
	case ProcCallArityMismatch:
		fmt.Fprintf(&b, "in proc %q: call to %s expected %d args, got %d",
			e.Proc, signature(e.Callee, e.CalleeParams, e.CalleeReturn), e.WantArity, e.GotArity)
	case TypeMismatch:
		fmt.Fprintf(&b, "in proc %q: type mismatch: expected %v, found %v", e.Proc, e.Expected, e.Found)
	default:
		fmt.Fprintf(&b, "compile error")
	}
	return b.String()
}

func typeMismatch(proc string, expected, found Type) *CompileError {
	return &CompileError{Kind: TypeMismatch, Proc: proc, Expected: expected, Found: found, HasTypes: true}
}

func missingLocal(proc, name string) *CompileError {
	return &CompileError{Kind: AccessMissingLocal, Proc: proc, Name: name}
}

func missingProc(proc, name string) *CompileError {
	return &CompileError{Kind: AccessMissingProc, Proc: proc, Name: name}
}

func missingLabel(proc, name string) *CompileError {
	return &CompileError{Kind: AccessMissingLabel, Proc: proc, Name: name}
}

func arityMismatch(proc string, callee Proc, got int) *CompileError {
	return &CompileError{
		Kind:         ProcCallArityMismatch,
		Proc:         proc,
		Callee:       callee.Name,
		WantArity:    len(callee.ParamTypes),
		GotArity:     got,
		CalleeParams: callee.ParamTypes,
		CalleeReturn: callee.ReturnType,
	}
}

// RuntimeErrorKind is the VM's fatal error taxonomy (§7). Every runtime
// error is fatal. Errors raised while a frame is executing carry a full
// StackTrace; a missing entry procedure is reported before any frame
// exists, so that error has an empty Trace.
type RuntimeErrorKind uint8

const (
	ProcDoesNotExist RuntimeErrorKind = iota
	InstrPointerOutOfRange
	RuntimeAccessMissingLocal
	AccessMissingReturn
	LocalUnexpectedType
	AccessNilHeap
	AccessMissingSlotIndex
	TopLevelYield
	HeapLimitExceeded
)

// TraceFrame is one entry of a stack trace: a procedure name and the
// instruction index active in that frame (§4.2 "Stack trace").
type TraceFrame struct {
	Proc string
	IP   int
}

// StackTrace is produced on every fatal runtime error: for each saved frame
// (oldest first) then the current frame, (procedure name, instruction
// index).
type StackTrace []TraceFrame

func (st StackTrace) String() string {
	var b strings.Builder
	for i, f := range st {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  at %s:%d", f.Proc, f.IP)
	}
	return b.String()
}

// RuntimeError is the fatal error returned by VM.Run (§7).
type RuntimeError struct {
	Kind  RuntimeErrorKind
	Proc  string
	Local int
	Addr  uint
	Index int

	Expected Type
	Found    Type
	HasTypes bool
	FoundNil bool

	Trace StackTrace
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case ProcDoesNotExist:
		fmt.Fprintf(&b, "procedure does not exist")
	case InstrPointerOutOfRange:
		fmt.Fprintf(&b, "in proc %q: instruction pointer out of range", e.Proc)
	case RuntimeAccessMissingLocal:
		fmt.Fprintf(&b, "in proc %q: local %d out of range", e.Proc, e.Local)
	case AccessMissingReturn:
		fmt.Fprintf(&b, "in proc %q: no pending return value", e.Proc)
	case LocalUnexpectedType:
		switch {
		case e.HasTypes:
			fmt.Fprintf(&b, "in proc %q: local %d: expected %v, found %v", e.Proc, e.Local, e.Expected, e.Found)
		case e.FoundNil:
			fmt.Fprintf(&b, "in proc %q: local %d: expected %v, found Nil", e.Proc, e.Local, e.Expected)
		default:
			fmt.Fprintf(&b, "in proc %q: local %d: unexpected type", e.Proc, e.Local)
		}
	case AccessNilHeap:
		fmt.Fprintf(&b, "in proc %q: heap address %d is nil", e.Proc, e.Addr)
	case AccessMissingSlotIndex:
		fmt.Fprintf(&b, "in proc %q: heap address %d has no slot %d", e.Proc, e.Addr, e.Index)
	case TopLevelYield:
		fmt.Fprintf(&b, "yield/break from the root execution")
	case HeapLimitExceeded:
		fmt.Fprintf(&b, "in proc %q: heap limit exceeded", e.Proc)
	default:
		fmt.Fprintf(&b, "runtime error")
	}
	if len(e.Trace) > 0 {
		b.WriteByte('\n')
		b.WriteString(e.Trace.String())
	}
	return b.String()
}
