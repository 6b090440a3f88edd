package coropool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_StackPushPopTop(t *testing.T) {
	var s Stack[int]

	_, ok := s.Pop()
	require.False(t, ok, "pop on empty stack fails")
	require.Equal(t, 0, s.Len())

	s.Push(1)
	s.Push(2)
	require.Equal(t, 2, s.Len())

	top, ok := s.Top()
	require.True(t, ok)
	require.Equal(t, 2, top)
	require.Equal(t, 2, s.Len(), "Top must not pop")

	v, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 1, s.Len())

	v, ok = s.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 0, s.Len())
}

func Test_StackOfPointersSharesMutation(t *testing.T) {
	type handle struct{ n int }
	var s Stack[*handle]
	h := &handle{n: 1}
	s.Push(h)

	top, ok := s.Top()
	require.True(t, ok)
	top.n = 2
	require.Equal(t, 2, h.n, "mutating the popped/peeked pointer mutates the shared handle")
}

func Test_EmptyPopError(t *testing.T) {
	err := EmptyPopError{Op: "Yield"}
	require.Equal(t, "coropool: Yield on an empty coroutine stack", err.Error())
}
