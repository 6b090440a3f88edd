package dne

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_OpCodeString(t *testing.T) {
	require.Equal(t, "Call", OpCall.String())
	require.Equal(t, "GetGlobal", OpGetGlobal.String())
	require.Equal(t, "OpUnknown", opCodeCount.String())
}

func Test_OpDocsCoversEveryOpCode(t *testing.T) {
	for c := OpNop; c < opCodeCount; c++ {
		doc, ok := opDocs[c]
		require.True(t, ok, "opDocs missing an entry for %v", c)
		require.NotEmpty(t, doc)
	}
	require.Len(t, opDocs, int(opCodeCount), "opDocs must not carry stale entries either")
}

func Test_FillLocals(t *testing.T) {
	locals := fillLocals([]Value{IntValue(1), IntValue(2)}, 5)
	require.Len(t, locals, 5)
	require.Equal(t, IntValue(1), locals[0])
	require.Equal(t, IntValue(2), locals[1])
	require.Equal(t, Nil, locals[2])
	require.Equal(t, Nil, locals[4])
}

func Test_FillLocalsDoesNotAliasBase(t *testing.T) {
	base := []Value{IntValue(1)}
	locals := fillLocals(base, 2)
	locals[0] = IntValue(9)
	require.Equal(t, IntValue(1), base[0], "fillLocals must copy base, not alias it")
}
