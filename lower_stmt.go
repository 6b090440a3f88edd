package dne

import "github.com/Verdex/dne/internal/ast"

// lowerStmt lowers one statement into pl.lops (§4.1.b/c).
func (lw *Lowerer) lowerStmt(pl *procLowering, st ast.Stmt) error {
	switch st.Kind {
	case ast.StmtSet:
		dest, ok := pl.localSlots[st.Var]
		if !ok {
			return missingLocal(pl.name, st.Var)
		}
		destType := pl.localTypes[st.Var]
		return lw.lowerExprInto(pl, dest, destType, st.Expr)

	case ast.StmtJump:
		pl.lops = append(pl.lops, lop{kind: lopJump, label: st.Label})
		return nil

	case ast.StmtLabel:
		pl.lops = append(pl.lops, lop{kind: lopLabel, label: st.Label})
		return nil

	case ast.StmtBranchTrue:
		slot, ty, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if ty != TypeBool {
			return typeMismatch(pl.name, TypeBool, ty)
		}
		pl.lops = append(pl.lops, lop{kind: lopBranch, label: st.Label, branchLocal: slot})
		return nil

	case ast.StmtReturn:
		slot, ty, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if ty != pl.returnType {
			return typeMismatch(pl.name, pl.returnType, ty)
		}
		pl.emit(Op{Code: OpReturnLocal, Src: slot})
		return nil

	case ast.StmtYield:
		slot, ty, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if ty != pl.returnType {
			return typeMismatch(pl.name, pl.returnType, ty)
		}
		pl.emit(Op{Code: OpYield, Src: slot})
		return nil

	case ast.StmtBreak:
		pl.emit(Op{Code: OpBreak})
		return nil

	case ast.StmtSlotInsert:
		refSlot, refTy, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if refTy != TypeRef {
			return typeMismatch(pl.name, TypeRef, refTy)
		}
		valSlot, _, err := lw.resolveVar(pl, st.Input)
		if err != nil {
			return err
		}
		pl.emit(Op{Code: OpInsertSlot, Src: refSlot, Src2: valSlot, Index: st.Index})
		return nil

	case ast.StmtSlotRemove:
		refSlot, refTy, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if refTy != TypeRef {
			return typeMismatch(pl.name, TypeRef, refTy)
		}
		pl.emit(Op{Code: OpRemoveSlot, Src: refSlot, Index: st.Index})
		return nil

	case ast.StmtDelete:
		refSlot, refTy, err := lw.resolveVar(pl, st.Var)
		if err != nil {
			return err
		}
		if refTy != TypeRef {
			return typeMismatch(pl.name, TypeRef, refTy)
		}
		pl.emit(Op{Code: OpDelete, Src: refSlot})
		return nil

	default:
		panic("lowerStmt: unknown statement kind")
	}
}

func (pl *procLowering) emit(op Op) {
	pl.lops = append(pl.lops, lop{kind: lopOp, op: op})
}
