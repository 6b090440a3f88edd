package dne

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Verdex/dne/internal/parser"
)

func lowerSrc(t *testing.T, src string) (*CompiledProgram, error) {
	t.Helper()
	prog, err := parser.Parse("t", src)
	require.NoError(t, err)
	return Lower(prog)
}

func Test_LowerLocalSlotLayout(t *testing.T) {
	cp, err := lowerSrc(t, `
proc f ( a : Int , b : Int ) -> Int {
	set c : Int = a ;
	return c ;
}
`)
	require.NoError(t, err)
	proc := cp.Procs[cp.ProcMap["f"]]
	require.Equal(t, 3, proc.StackSize, "params then first-Set order: a=0 b=1 c=2")
}

func Test_LowerDuplicateProcNameFails(t *testing.T) {
	_, err := lowerSrc(t, `
proc f ( ) -> Int { return a ; }
proc f ( ) -> Int { return a ; }
`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, DupFunName, cerr.Kind)
}

func Test_LowerReuseParamNameFails(t *testing.T) {
	_, err := lowerSrc(t, `proc f ( a : Int , a : Int ) -> Int { return a ; }`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ReuseParamName, cerr.Kind)
}

func Test_LowerCallArityMismatchFails(t *testing.T) {
	_, err := lowerSrc(t, `
proc g ( a : Int ) -> Int { return a ; }
proc f ( ) -> Int {
	set x : Int = call g ( ) ;
	return x ;
}
`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ProcCallArityMismatch, cerr.Kind)
}

func Test_LowerTypeMismatchFails(t *testing.T) {
	_, err := lowerSrc(t, `
proc f ( ) -> Int {
	set x : Bool = 1 ;
	return x ;
}
`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, TypeMismatch, cerr.Kind)
}

func Test_LowerMissingLabelFails(t *testing.T) {
	_, err := lowerSrc(t, `
proc f ( ) -> Int {
	set x : Int = 1 ;
	jump nowhere ;
	return x ;
}
`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, AccessMissingLabel, cerr.Kind)
}

func Test_LowerJumpAndLabelResolveToInstructionIndex(t *testing.T) {
	cp, err := lowerSrc(t, `
proc f ( ) -> Int {
	set x : Int = 1 ;
	jump skip ;
	set x : Int = 2 ;
	label skip ;
	return x ;
}
`)
	require.NoError(t, err)
	proc := cp.Procs[cp.ProcMap["f"]]
	var jumpOp Op
	for _, op := range proc.Instrs {
		if op.Code == OpJump {
			jumpOp = op
		}
	}
	require.Equal(t, OpNop, proc.Instrs[jumpOp.Index].Code, "label resolves to a Nop placeholder")
}

func Test_LowerGlobalReadsEmitGetGlobal(t *testing.T) {
	prog, err := parser.Parse("t", `
global g : Int = 1 ;
proc f ( ) -> Int { return g ; }
`)
	require.NoError(t, err)
	cp, err := Lower(prog)
	require.NoError(t, err)
	proc := cp.Procs[cp.ProcMap["f"]]
	require.Equal(t, OpGetGlobal, proc.Instrs[0].Code)
	require.Equal(t, 0, proc.Instrs[0].Index)
}

func Test_LowerClosurePartialApplication(t *testing.T) {
	cp, err := lowerSrc(t, `
proc add ( a : Int , b : Int ) -> Int { return a ; }
proc f ( a : Int ) -> Closure {
	set c : Closure = closure add ( a ) ;
	return c ;
}
`)
	require.NoError(t, err)
	proc := cp.Procs[cp.ProcMap["f"]]
	require.Equal(t, OpClosure, proc.Instrs[0].Code)
	require.Len(t, proc.Instrs[0].Args, 1, "closure captures only the supplied prefix of params")
}
