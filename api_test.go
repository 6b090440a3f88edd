package dne

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Verdex/dne/internal/panicerr"
)

func Test_NewAppliesOptions(t *testing.T) {
	cp, err := Compile(Source{Name: "t.ir", Text: `
proc main ( ) -> Int {
	set x : Int = 1 ;
	return x ;
}
`})
	require.NoError(t, err)

	var logged []string
	vm := New(cp,
		WithHeapLimit(3),
		WithLogf(func(mess string, args ...interface{}) { logged = append(logged, mess) }),
	)
	require.Equal(t, uint(3), vm.heapLimit)

	_, err = vm.Run(context.Background(), "main")
	require.NoError(t, err)
	require.NotEmpty(t, logged, "WithLogf's callback should receive at least one traced instruction")
}

func Test_RunSucceeds(t *testing.T) {
	cp, err := Compile(Source{Name: "t.ir", Text: `
proc main ( ) -> Int {
	set x : Int = 41 ;
	set one : Int = 1 ;
	set r : Int = call add_int ( x , one ) ;
	return r ;
}
`})
	require.NoError(t, err)
	vm := New(cp)

	result, err := Run(context.Background(), vm, "main")
	require.NoError(t, err)
	require.Equal(t, IntValue(42), result)
}

func Test_RunRecoversPanicFromIntegerDivideByZero(t *testing.T) {
	cp, err := Compile(Source{Name: "t.ir", Text: `
proc main ( ) -> Int {
	set a : Int = 1 ;
	set zero : Int = 0 ;
	set r : Int = call div_int ( a , zero ) ;
	return r ;
}
`})
	require.NoError(t, err)
	vm := New(cp)

	_, err = Run(context.Background(), vm, "main")
	require.Error(t, err)
	require.True(t, panicerr.IsPanic(err), "an unrecovered divide-by-zero inside the interpreter loop surfaces as a recovered panic, not a crash")
}

func Test_RunPropagatesOrdinaryRuntimeErrors(t *testing.T) {
	cp, err := Compile(Source{Name: "t.ir", Text: `
proc main ( ) -> Int {
	set n : Symbol = ~x ;
	set v : Int = 1 ;
	set r : Ref = cons n ( v ) ;
	delete r ;
	set out : Int = slot r 0 ;
	return out ;
}
`})
	require.NoError(t, err)
	vm := New(cp)

	_, err = Run(context.Background(), vm, "main")
	require.Error(t, err)
	require.False(t, panicerr.IsPanic(err))
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, AccessNilHeap, rerr.Kind)
}
