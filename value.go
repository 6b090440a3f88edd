package dne

import "fmt"

// Type is a static IR type, the closed set from §3 of the data model.
type Type uint8

const (
	TypeInt Type = iota
	TypeFloat
	TypeBool
	TypeSymbol
	TypeString
	TypeRef
	TypeClosure
	TypeCoroutine
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeSymbol:
		return "Symbol"
	case TypeString:
		return "String"
	case TypeRef:
		return "Ref"
	case TypeClosure:
		return "Closure"
	case TypeCoroutine:
		return "Coroutine"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// kind is the runtime tag of a Value; it extends Type with Nil.
type kind uint8

const (
	kindNil kind = iota
	kindBool
	kindInt
	kindFloat
	kindSymbol
	kindString
	kindRef
	kindClosure
	kindCoroutine
)

func (k kind) String() string {
	if k == kindNil {
		return "Nil"
	}
	return kindToType(k).String()
}

func kindToType(k kind) Type {
	switch k {
	case kindBool:
		return TypeBool
	case kindInt:
		return TypeInt
	case kindFloat:
		return TypeFloat
	case kindSymbol:
		return TypeSymbol
	case kindString:
		return TypeString
	case kindRef:
		return TypeRef
	case kindClosure:
		return TypeClosure
	case kindCoroutine:
		return TypeCoroutine
	}
	panic("kindToType: Nil has no static type")
}

func typeToKind(t Type) kind {
	switch t {
	case TypeBool:
		return kindBool
	case TypeInt:
		return kindInt
	case TypeFloat:
		return kindFloat
	case TypeSymbol:
		return kindSymbol
	case TypeString:
		return kindString
	case TypeRef:
		return kindRef
	case TypeClosure:
		return kindClosure
	case TypeCoroutine:
		return kindCoroutine
	}
	panic(fmt.Sprintf("typeToKind: unknown type %v", t))
}

// Value is the tagged runtime value union described in §3.
//
// It is a plain struct rather than an interface: the case set is closed and
// dispatch is by kind switch throughout the VM, not by method set.
type Value struct {
	k    kind
	b    bool
	n    int64
	f    float64
	sym  uint
	str  string
	ref  uint
	clo  *Closure
	coro *Coroutine
}

// Nil is the absence-of-value, used as the initial slot fill and as the
// resume result of an ended coroutine.
var Nil = Value{k: kindNil}

func BoolValue(b bool) Value       { return Value{k: kindBool, b: b} }
func IntValue(n int64) Value       { return Value{k: kindInt, n: n} }
func FloatValue(f float64) Value   { return Value{k: kindFloat, f: f} }
func SymbolValue(sym uint) Value   { return Value{k: kindSymbol, sym: sym} }
func StringValue(s string) Value   { return Value{k: kindString, str: s} }
func RefValue(addr uint) Value     { return Value{k: kindRef, ref: addr} }
func ClosureValue(c *Closure) Value { return Value{k: kindClosure, clo: c} }
func CoroutineValue(c *Coroutine) Value {
	return Value{k: kindCoroutine, coro: c}
}

func (v Value) IsNil() bool { return v.k == kindNil }

// Type returns the value's static type and whether it has one (Nil does not).
func (v Value) Type() (Type, bool) {
	if v.k == kindNil {
		return 0, false
	}
	return kindToType(v.k), true
}

func (v Value) Bool() (bool, bool)           { return v.b, v.k == kindBool }
func (v Value) Int() (int64, bool)           { return v.n, v.k == kindInt }
func (v Value) Float() (float64, bool)       { return v.f, v.k == kindFloat }
func (v Value) Symbol() (uint, bool)         { return v.sym, v.k == kindSymbol }
func (v Value) String_() (string, bool)      { return v.str, v.k == kindString }
func (v Value) Ref() (uint, bool)            { return v.ref, v.k == kindRef }
func (v Value) Closure() (*Closure, bool)    { return v.clo, v.k == kindClosure }
func (v Value) Coroutine() (*Coroutine, bool) { return v.coro, v.k == kindCoroutine }

// ToString renders v using the fixed representation of §4.2 "String support".
func (v Value) ToString(sym *symbols) string {
	switch v.k {
	case kindNil:
		return "nil"
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	case kindInt:
		return fmt.Sprintf("%d", v.n)
	case kindFloat:
		return formatFloat(v.f)
	case kindSymbol:
		return sym.string(v.sym)
	case kindString:
		return v.str
	case kindRef:
		return fmt.Sprintf("ref(%d)", v.ref)
	case kindClosure:
		return "closure"
	case kindCoroutine:
		return "coroutine"
	default:
		panic("ToString: unknown value kind")
	}
}

// formatFloat renders a float in its natural textual form: 0.1 stays
// "0.1", but a whole float prints without a redundant ".0" fraction.
func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

// valuesEqual implements the total Eq relation of §4.2: primitives compare
// structurally, Ref compares address-equal, Closure and Coroutine always
// compare false. Returns (result, ok); ok is false on a type mismatch.
func valuesEqual(a, b Value) (bool, bool) {
	if a.k != b.k {
		return false, false
	}
	switch a.k {
	case kindNil:
		return true, true
	case kindBool:
		return a.b == b.b, true
	case kindInt:
		return a.n == b.n, true
	case kindFloat:
		return a.f == b.f, true
	case kindSymbol:
		return a.sym == b.sym, true
	case kindString:
		return a.str == b.str, true
	case kindRef:
		return a.ref == b.ref, true
	case kindClosure:
		return false, true
	case kindCoroutine:
		return false, true
	default:
		return false, false
	}
}

// Closure pairs a procedure index with its captured environment (§3).
type Closure struct {
	ProcID int
	Env    []Value
}

func (c *Closure) clone() *Closure {
	env := make([]Value, len(c.Env))
	copy(env, c.Env)
	return &Closure{ProcID: c.ProcID, Env: env}
}

// coroState is the coroutine's single occupied variant (§3 "Coroutine state").
type coroState uint8

const (
	coroStart coroState = iota
	coroDynStart
	coroActive
	coroEnded
)

// Coroutine is a resumable, suspendable thread of execution. It is always
// held by pointer so that sharing a Coroutine value (copying it into a
// local, a heap cell, another frame) shares the underlying state, letting
// Yield/Break update the single authoritative instance in place.
type Coroutine struct {
	state   coroState
	procID  int      // Start
	closure *Closure // DynStart
	params  []Value  // Start, DynStart
	frame   *Frame   // Active
}

// Cons is a tagged heap cell: a symbol tag and an ordered sequence of
// value slots (§3 "Heap cell").
type Cons struct {
	Name   uint
	Params []Value
}

// Heap is the dense, growable array of tagged cells described in §3. A
// free slot is represented by !used rather than by a sentinel Value, so
// that a live Cons with zero params is distinguishable from a freed one.
type Heap struct {
	cells []heapCell
}

type heapCell struct {
	used bool
	cons Cons
}

// Alloc allocates a cell at the lowest-indexed free slot, or appends if
// none is free, per the §3/§8 reuse policy.
func (h *Heap) Alloc(name uint, params []Value) uint {
	cp := make([]Value, len(params))
	copy(cp, params)
	for i := range h.cells {
		if !h.cells[i].used {
			h.cells[i] = heapCell{used: true, cons: Cons{Name: name, Params: cp}}
			return uint(i)
		}
	}
	h.cells = append(h.cells, heapCell{used: true, cons: Cons{Name: name, Params: cp}})
	return uint(len(h.cells) - 1)
}

// Get returns the live cell at addr, or ok=false if addr is out of range or
// has been freed.
func (h *Heap) Get(addr uint) (*Cons, bool) {
	if int(addr) >= len(h.cells) || !h.cells[addr].used {
		return nil, false
	}
	return &h.cells[addr].cons, true
}

// Free marks addr's slot as reusable. Future access through the same
// address fails (§3 "access to a freed address fails").
func (h *Heap) Free(addr uint) bool {
	if int(addr) >= len(h.cells) || !h.cells[addr].used {
		return false
	}
	h.cells[addr] = heapCell{}
	return true
}

// Live reports whether addr currently holds a live cell, for execCons's
// heap-limit count.
func (h *Heap) Live(addr uint) bool {
	return int(addr) < len(h.cells) && h.cells[addr].used
}

// Len returns the number of addresses ever allocated (live or freed).
func (h *Heap) Len() int { return len(h.cells) }
