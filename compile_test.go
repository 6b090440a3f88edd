package dne

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CompileSingleSource(t *testing.T) {
	cp, err := Compile(Source{Name: "a.ir", Text: `
proc main ( ) -> Int {
	set x : Int = 1 ;
	return x ;
}
`})
	require.NoError(t, err)
	require.Contains(t, cp.ProcMap, "main")
	require.Contains(t, cp.ProcMap, "add_int", "primitives are prepended")
}

func Test_CompileConcatenatesInArgumentOrder(t *testing.T) {
	cp, err := Compile(
		Source{Name: "globals.ir", Text: `global g : Int = 7 ;`},
		Source{Name: "main.ir", Text: `
proc main ( ) -> Int {
	set x : Int = g ;
	return x ;
}
`},
	)
	require.NoError(t, err)
	require.Equal(t, 1, cp.GlobalCount)

	vm := New(cp)
	result, err := vm.Run(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, IntValue(7), result)
}

func Test_CompileWrapsParseErrorWithFileName(t *testing.T) {
	_, err := Compile(Source{Name: "bad.ir", Text: `oops`})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.ir")
}

func Test_CompilePropagatesLowerError(t *testing.T) {
	_, err := Compile(Source{Name: "a.ir", Text: `
proc f ( ) -> Int { return x ; }
`})
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
}
