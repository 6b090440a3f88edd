package dne

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BuildPrimitivesShape(t *testing.T) {
	procs := buildPrimitives()
	require.Len(t, procs, len(primitiveDefs))

	for i, d := range procs {
		want := primitiveDefs[i]
		require.Equal(t, want.name, d.Name)
		require.Equal(t, want.params, d.ParamTypes)
		require.Equal(t, want.ret, d.ReturnType)
		require.Equal(t, want.opCode, d.Instrs[0].Code)
		if want.negate {
			require.Len(t, d.Instrs, 5, "a not-equal primitive is Eq+Not over a synthesized temp")
			require.Equal(t, OpSetLocalReturn, d.Instrs[1].Code)
			require.Equal(t, OpNot, d.Instrs[2].Code)
			require.Equal(t, OpSetLocalReturn, d.Instrs[3].Code)
			require.Equal(t, OpReturnLocal, d.Instrs[4].Code)
			require.Equal(t, len(want.params)+2, d.StackSize)
		} else {
			require.Len(t, d.Instrs, 3, "every ordinary primitive body is exactly three ops")
			require.Equal(t, OpSetLocalReturn, d.Instrs[1].Code)
			require.Equal(t, OpReturnLocal, d.Instrs[2].Code)
			require.Equal(t, len(want.params)+1, d.StackSize)
		}
	}
}

func Test_BuildPrimitivesNegateChainsEqThenNot(t *testing.T) {
	procs := buildPrimitives()
	idx := indexOfPrimitive(t, procs, "neq_int")
	instrs := procs[idx].Instrs
	require.Equal(t, OpEq, instrs[0].Code)
	require.Equal(t, 0, instrs[0].Src)
	require.Equal(t, 1, instrs[0].Src2)
	require.Equal(t, 2, instrs[1].Dst, "Eq's result lands in the temp slot one past the two params")
	require.Equal(t, 2, instrs[2].Src, "Not reads the same temp slot Eq just wrote")
	require.Equal(t, 3, instrs[3].Dst, "Not's result lands in the final return slot")
	require.Equal(t, 3, instrs[4].Src)
}

func Test_BuildPrimitivesBinaryUsesTwoSlots(t *testing.T) {
	procs := buildPrimitives()
	idx := indexOfPrimitive(t, procs, "add_int")
	require.Equal(t, 0, procs[idx].Instrs[0].Src)
	require.Equal(t, 1, procs[idx].Instrs[0].Src2)
	require.Equal(t, 2, procs[idx].Instrs[1].Dst, "return slot is one past the two params")
}

func Test_BuildPrimitivesUnaryUsesOneSlot(t *testing.T) {
	procs := buildPrimitives()
	idx := indexOfPrimitive(t, procs, "not")
	require.Equal(t, 0, procs[idx].Instrs[0].Src)
	require.Equal(t, 0, procs[idx].Instrs[0].Src2, "unary ops leave Src2 unset")
	require.Equal(t, 1, procs[idx].Instrs[1].Dst)
}

func indexOfPrimitive(t *testing.T, procs []Proc, name string) int {
	t.Helper()
	for i, p := range procs {
		if p.Name == name {
			return i
		}
	}
	t.Fatalf("no primitive named %q", name)
	return -1
}
