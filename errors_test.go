package dne

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CompileErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *CompileError
		want string
	}{
		{"dup fun", &CompileError{Kind: DupFunName, Name: "f"}, `duplicate procedure name "f"`},
		{"reuse param", &CompileError{Kind: ReuseParamName, Proc: "f", Name: "x"}, `in proc "f": parameter name "x" reused`},
		{"arity", &CompileError{
			Kind: ProcCallArityMismatch, Proc: "f", Callee: "g",
			WantArity: 2, GotArity: 1,
			CalleeParams: []Type{TypeInt, TypeBool}, CalleeReturn: TypeFloat,
		}, `in proc "f": call to g(Int, Bool) -> Float expected 2 args, got 1`},
		{"type mismatch", &CompileError{Kind: TypeMismatch, Proc: "f", Expected: TypeInt, Found: TypeBool},
			`in proc "f": type mismatch: expected Int, found Bool`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func Test_RuntimeErrorMessages(t *testing.T) {
	e := &RuntimeError{Kind: LocalUnexpectedType, Proc: "f", Local: 2, Expected: TypeInt, HasTypes: true, Found: TypeBool}
	require.Equal(t, `in proc "f": local 2: expected Int, found Bool`, e.Error())

	e2 := &RuntimeError{Kind: LocalUnexpectedType, Proc: "f", Local: 2, Expected: TypeInt, FoundNil: true}
	require.Equal(t, `in proc "f": local 2: expected Int, found Nil`, e2.Error())

	e3 := &RuntimeError{Kind: TopLevelYield}
	require.Equal(t, "yield/break from the root execution", e3.Error())

	e4 := &RuntimeError{Kind: HeapLimitExceeded, Proc: "f"}
	require.Equal(t, `in proc "f": heap limit exceeded`, e4.Error())
}

func Test_RuntimeErrorIncludesTrace(t *testing.T) {
	e := &RuntimeError{
		Kind: ProcDoesNotExist,
		Trace: StackTrace{
			{Proc: "main", IP: 3},
			{Proc: "helper", IP: 1},
		},
	}
	want := "procedure does not exist\n  at main:3\n  at helper:1"
	require.Equal(t, want, e.Error())
}

func Test_StackTraceString(t *testing.T) {
	st := StackTrace{{Proc: "main", IP: 0}}
	require.Equal(t, "  at main:0", st.String())

	var empty StackTrace
	require.Equal(t, "", empty.String())
}
