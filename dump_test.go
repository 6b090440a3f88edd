package dne

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DumpRendersFramesGlobalsAndHeap(t *testing.T) {
	cp, err := Compile(
		Source{Name: "globals.ir", Text: `global g : Int = 9 ;`},
		Source{Name: "main.ir", Text: `
proc main ( ) -> Ref {
	set n : Symbol = ~cell ;
	set v : Int = 1 ;
	set r : Ref = cons n ( v ) ;
	return r ;
}
`},
	)
	require.NoError(t, err)

	vm := New(cp)
	_, err = vm.Run(context.Background(), "main")
	require.NoError(t, err)

	var buf bytes.Buffer
	Dump(vm, &buf)
	out := buf.String()

	require.Contains(t, out, "# VM Dump")
	require.Contains(t, out, "frames:")
	require.Contains(t, out, "main@")
	require.Contains(t, out, "globals:[9]")
	require.Contains(t, out, "heap:")
	require.Contains(t, out, "@0 cell[1]")
	require.Contains(t, out, "symbols: 1 interned")
	require.Contains(t, out, "(pop the current frame, yielding a local's value)",
		"the frame line renders opDocs' description of the instruction at IP")
}

func Test_DumpShowsSuspendedCoroutineReachableFromHeap(t *testing.T) {
	cp, err := Compile(Source{Name: "main.ir", Text: `
proc gen ( ) -> Int {
	set v1 : Int = 1 ;
	yield v1 ;
	set v2 : Int = 2 ;
	yield v2 ;
	break ;
}
proc main ( ) -> Ref {
	set n : Symbol = ~parked ;
	set co : Coroutine = coroutine gen ( ) ;
	set r1 : Int = resume co ;
	set cell : Ref = cons n ( co ) ;
	return cell ;
}
`})
	require.NoError(t, err)

	vm := New(cp)
	_, err = vm.Run(context.Background(), "main")
	require.NoError(t, err)

	var buf bytes.Buffer
	Dump(vm, &buf)
	out := buf.String()

	require.Contains(t, out, "coroutines:")
	require.Contains(t, out, "suspended")
	require.Contains(t, out, "gen@")
}

func Test_DumpShowsFreedHeapSlot(t *testing.T) {
	cp, err := Compile(Source{Name: "main.ir", Text: `
proc main ( ) -> Int {
	set n : Symbol = ~x ;
	set v : Int = 1 ;
	set r : Ref = cons n ( v ) ;
	delete r ;
	return v ;
}
`})
	require.NoError(t, err)

	vm := New(cp)
	_, err = vm.Run(context.Background(), "main")
	require.NoError(t, err)

	var buf bytes.Buffer
	Dump(vm, &buf)
	require.Contains(t, buf.String(), "@0 free")
}
