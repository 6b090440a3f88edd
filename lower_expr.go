package dne

import "github.com/Verdex/dne/internal/ast"

// lowerExprInto lowers e so that its value ends up in pl's local slot
// dest, typed destType (§4.1.b/c: "Expressions compile against the type
// of their destination slot").
func (lw *Lowerer) lowerExprInto(pl *procLowering, dest int, destType Type, e ast.Expr) error {
	switch e.Kind {
	case ast.ExprLit:
		val, err := lowerLiteral(lw, pl.name, e.Lit, destType)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpSetLocalData, Dst: dest, Data: val})
		return nil

	case ast.ExprVar:
		slot, ty, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if ty != destType {
			return typeMismatch(pl.name, destType, ty)
		}
		pl.emit(Op{Code: OpSetLocalVar, Dst: dest, Src: slot})
		return nil

	case ast.ExprCall:
		calleeIdx, ok := lw.procMap[e.Name]
		if !ok {
			return missingProc(pl.name, e.Name)
		}
		callee := lw.procs[calleeIdx]
		if len(e.Args) != len(callee.ParamTypes) {
			return arityMismatch(pl.name, callee, len(e.Args))
		}
		argSlots, err := lw.resolveTypedArgs(pl, e.Args, callee.ParamTypes)
		if err != nil {
			return err
		}
		if callee.ReturnType != destType {
			return typeMismatch(pl.name, destType, callee.ReturnType)
		}
		pl.emit(Op{Code: OpCall, ProcID: calleeIdx, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprDynCall:
		slot, ty, err := lw.resolveVar(pl, e.Name)
		if err != nil {
			return err
		}
		if ty != TypeClosure {
			return typeMismatch(pl.name, TypeClosure, ty)
		}
		argSlots, err := lw.resolveArgs(pl, e.Args)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpDynCall, Src: slot, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprCoroutine:
		calleeIdx, ok := lw.procMap[e.Name]
		if !ok {
			return missingProc(pl.name, e.Name)
		}
		callee := lw.procs[calleeIdx]
		if destType != TypeCoroutine {
			return typeMismatch(pl.name, destType, TypeCoroutine)
		}
		if len(e.Args) != len(callee.ParamTypes) {
			return arityMismatch(pl.name, callee, len(e.Args))
		}
		argSlots, err := lw.resolveTypedArgs(pl, e.Args, callee.ParamTypes)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpCoroutine, ProcID: calleeIdx, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprDynCoroutine:
		slot, ty, err := lw.resolveVar(pl, e.Name)
		if err != nil {
			return err
		}
		if ty != TypeClosure {
			return typeMismatch(pl.name, TypeClosure, ty)
		}
		if destType != TypeCoroutine {
			return typeMismatch(pl.name, destType, TypeCoroutine)
		}
		argSlots, err := lw.resolveArgs(pl, e.Args)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpDynCoroutine, Src: slot, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprClosure:
		calleeIdx, ok := lw.procMap[e.Name]
		if !ok {
			return missingProc(pl.name, e.Name)
		}
		callee := lw.procs[calleeIdx]
		if destType != TypeClosure {
			return typeMismatch(pl.name, destType, TypeClosure)
		}
		if len(e.Args) > len(callee.ParamTypes) {
			return arityMismatch(pl.name, callee, len(e.Args))
		}
		argSlots, err := lw.resolveTypedArgs(pl, e.Args, callee.ParamTypes[:len(e.Args)])
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpClosure, ProcID: calleeIdx, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprCons:
		symSlot, symTy, err := lw.resolveVar(pl, e.Name)
		if err != nil {
			return err
		}
		if symTy != TypeSymbol {
			return typeMismatch(pl.name, TypeSymbol, symTy)
		}
		if destType != TypeRef {
			return typeMismatch(pl.name, destType, TypeRef)
		}
		argSlots, err := lw.resolveArgs(pl, e.Args)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpCons, Src: symSlot, Args: argSlots})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprResume:
		slot, ty, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if ty != TypeCoroutine {
			return typeMismatch(pl.name, TypeCoroutine, ty)
		}
		pl.emit(Op{Code: OpResume, Src: slot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprLength:
		slot, ty, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if ty != TypeRef {
			return typeMismatch(pl.name, TypeRef, ty)
		}
		if destType != TypeInt {
			return typeMismatch(pl.name, destType, TypeInt)
		}
		pl.emit(Op{Code: OpGetLength, Src: slot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprType:
		slot, ty, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if ty != TypeRef {
			return typeMismatch(pl.name, TypeRef, ty)
		}
		if destType != TypeSymbol {
			return typeMismatch(pl.name, destType, TypeSymbol)
		}
		pl.emit(Op{Code: OpGetType, Src: slot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprSlot:
		slot, ty, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if ty != TypeRef {
			return typeMismatch(pl.name, TypeRef, ty)
		}
		pl.emit(Op{Code: OpGetSlot, Src: slot, Index: e.Index})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprIsNil:
		slot, _, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if destType != TypeBool {
			return typeMismatch(pl.name, destType, TypeBool)
		}
		pl.emit(Op{Code: OpIsNil, Src: slot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprToString:
		slot, _, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if destType != TypeString {
			return typeMismatch(pl.name, destType, TypeString)
		}
		pl.emit(Op{Code: OpToString, Src: slot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	case ast.ExprConcat:
		aSlot, aTy, err := lw.resolveVar(pl, e.Var)
		if err != nil {
			return err
		}
		if aTy != TypeString {
			return typeMismatch(pl.name, TypeString, aTy)
		}
		bSlot, bTy, err := lw.resolveVar(pl, e.ConcatB)
		if err != nil {
			return err
		}
		if bTy != TypeString {
			return typeMismatch(pl.name, TypeString, bTy)
		}
		if destType != TypeString {
			return typeMismatch(pl.name, destType, TypeString)
		}
		pl.emit(Op{Code: OpConcat, Src: aSlot, Src2: bSlot})
		pl.emit(Op{Code: OpSetLocalReturn, Dst: dest})
		return nil

	default:
		panic("lowerExprInto: unknown expression kind")
	}
}

// resolveArgs resolves a list of argument variable names with no static
// type checking, for dynamic call sites where the callee is not known at
// compile time (DynCall/DynCoroutine/Cons).
func (lw *Lowerer) resolveArgs(pl *procLowering, names []string) ([]int, error) {
	slots := make([]int, len(names))
	for i, n := range names {
		slot, _, err := lw.resolveVar(pl, n)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
	}
	return slots, nil
}

// resolveTypedArgs resolves argument variable names and checks each against
// the corresponding expected parameter type (§4.1.c).
func (lw *Lowerer) resolveTypedArgs(pl *procLowering, names []string, want []Type) ([]int, error) {
	slots := make([]int, len(names))
	for i, n := range names {
		slot, ty, err := lw.resolveVar(pl, n)
		if err != nil {
			return nil, err
		}
		if ty != want[i] {
			return nil, typeMismatch(pl.name, want[i], ty)
		}
		slots[i] = slot
	}
	return slots, nil
}

// lowerLiteral converts a parsed literal to a runtime Value, checking it
// against the expected static type.
func lowerLiteral(lw *Lowerer, ctx string, lit ast.Literal, expected Type) (Value, error) {
	switch lit.Kind {
	case ast.LitInt:
		if expected != TypeInt {
			return Value{}, typeMismatch(ctx, expected, TypeInt)
		}
		return IntValue(lit.Int), nil
	case ast.LitFloat:
		if expected != TypeFloat {
			return Value{}, typeMismatch(ctx, expected, TypeFloat)
		}
		return FloatValue(lit.Float), nil
	case ast.LitBool:
		if expected != TypeBool {
			return Value{}, typeMismatch(ctx, expected, TypeBool)
		}
		return BoolValue(lit.Bool), nil
	case ast.LitSymbol:
		if expected != TypeSymbol {
			return Value{}, typeMismatch(ctx, expected, TypeSymbol)
		}
		return SymbolValue(lw.sym.symbolicate(lit.Symbol)), nil
	case ast.LitString:
		if expected != TypeString {
			return Value{}, typeMismatch(ctx, expected, TypeString)
		}
		return StringValue(lit.String), nil
	default:
		panic("lowerLiteral: unknown literal kind")
	}
}
