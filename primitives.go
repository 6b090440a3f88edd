package dne

// primitiveDef describes one entry of the fixed primitive table (§4.4).
type primitiveDef struct {
	name   string
	params []Type
	ret    Type
	opCode OpCode

	// negate marks a derived not-equal primitive: opCode (always OpEq) runs
	// first into a synthesized temp slot, then OpNot negates that temp into
	// the return slot. Not-equal is sugar over Eq+Not, not its own VM op.
	negate bool
}

// primitiveDefs is the fixed, ordered list of primitive procedures
// prepended to every compiled program. Names and ordering match §4.4.
var primitiveDefs = []primitiveDef{
	{name: "add_int", params: []Type{TypeInt, TypeInt}, ret: TypeInt, opCode: OpAdd},
	{name: "add_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeFloat, opCode: OpAdd},
	{name: "sub_int", params: []Type{TypeInt, TypeInt}, ret: TypeInt, opCode: OpSub},
	{name: "sub_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeFloat, opCode: OpSub},
	{name: "mul_int", params: []Type{TypeInt, TypeInt}, ret: TypeInt, opCode: OpMul},
	{name: "mul_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeFloat, opCode: OpMul},
	{name: "div_int", params: []Type{TypeInt, TypeInt}, ret: TypeInt, opCode: OpDiv},
	{name: "div_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeFloat, opCode: OpDiv},
	{name: "mod_int", params: []Type{TypeInt, TypeInt}, ret: TypeInt, opCode: OpMod},
	{name: "mod_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeFloat, opCode: OpMod},
	{name: "neg_int", params: []Type{TypeInt}, ret: TypeInt, opCode: OpNeg},
	{name: "neg_float", params: []Type{TypeFloat}, ret: TypeFloat, opCode: OpNeg},
	{name: "and", params: []Type{TypeBool, TypeBool}, ret: TypeBool, opCode: OpAnd},
	{name: "or", params: []Type{TypeBool, TypeBool}, ret: TypeBool, opCode: OpOr},
	{name: "xor", params: []Type{TypeBool, TypeBool}, ret: TypeBool, opCode: OpXor},
	{name: "not", params: []Type{TypeBool}, ret: TypeBool, opCode: OpNot},
	{name: "gt_int", params: []Type{TypeInt, TypeInt}, ret: TypeBool, opCode: OpGt},
	{name: "gt_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeBool, opCode: OpGt},
	{name: "lt_int", params: []Type{TypeInt, TypeInt}, ret: TypeBool, opCode: OpLt},
	{name: "lt_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeBool, opCode: OpLt},
	{name: "eq_int", params: []Type{TypeInt, TypeInt}, ret: TypeBool, opCode: OpEq},
	{name: "eq_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeBool, opCode: OpEq},
	{name: "eq_bool", params: []Type{TypeBool, TypeBool}, ret: TypeBool, opCode: OpEq},
	{name: "eq_symbol", params: []Type{TypeSymbol, TypeSymbol}, ret: TypeBool, opCode: OpEq},
	{name: "eq_ref", params: []Type{TypeRef, TypeRef}, ret: TypeBool, opCode: OpEq},

	// Not-equal: supplemental, absent from the VM's own op table (see
	// DESIGN.md); each is Eq followed by Not over a synthesized temp slot.
	{name: "neq_int", params: []Type{TypeInt, TypeInt}, ret: TypeBool, opCode: OpEq, negate: true},
	{name: "neq_float", params: []Type{TypeFloat, TypeFloat}, ret: TypeBool, opCode: OpEq, negate: true},
	{name: "neq_bool", params: []Type{TypeBool, TypeBool}, ret: TypeBool, opCode: OpEq, negate: true},
	{name: "neq_symbol", params: []Type{TypeSymbol, TypeSymbol}, ret: TypeBool, opCode: OpEq, negate: true},
	{name: "neq_ref", params: []Type{TypeRef, TypeRef}, ret: TypeBool, opCode: OpEq, negate: true},
}

// buildPrimitives compiles primitiveDefs into the leading slice of the
// procedure table. Each ordinary primitive's body is exactly three ops per
// §4.4: the arithmetic/logical op on slots 0 (and 1, if binary),
// SetLocalReturn at the arity-th slot, and ReturnLocal from that same slot.
// A negate (not-equal) primitive inserts an Eq-into-temp/Not-the-temp pair
// in place of the single op, per the supplemented NEq feature (DESIGN.md).
func buildPrimitives() []Proc {
	procs := make([]Proc, len(primitiveDefs))
	for i, d := range primitiveDefs {
		arity := len(d.params)
		k := arity // the return-value slot, one past the parameters

		op := Op{Code: d.opCode, Src: 0}
		if arity == 2 {
			op.Src2 = 1
		}

		var instrs []Op
		stackSize := k + 1
		if d.negate {
			stackSize = k + 2
			instrs = []Op{
				op,
				{Code: OpSetLocalReturn, Dst: k},
				{Code: OpNot, Src: k},
				{Code: OpSetLocalReturn, Dst: k + 1},
				{Code: OpReturnLocal, Src: k + 1},
			}
		} else {
			instrs = []Op{
				op,
				{Code: OpSetLocalReturn, Dst: k},
				{Code: OpReturnLocal, Src: k},
			}
		}

		procs[i] = Proc{
			Name:       d.name,
			ParamTypes: d.params,
			ReturnType: d.ret,
			StackSize:  stackSize,
			Instrs:     instrs,
		}
	}
	return procs
}
