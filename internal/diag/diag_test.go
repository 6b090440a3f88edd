package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FormatSingleLine(t *testing.T) {
	src := "abc"
	out := Format("t.ir", src, Range{Start: 1, End: 2}, "bad token")
	lines := strings.Split(out, "\n")
	require.Equal(t, "error at t.ir:1: bad token", lines[0])
	require.Equal(t, "abc", lines[1])
	require.Equal(t, " ^", lines[2])
}

func Test_FormatShowsPreviousLineForContext(t *testing.T) {
	src := "first\nsecond"
	out := Format("t.ir", src, Point(6), "oops")
	require.Contains(t, out, "first\n")
	require.Contains(t, out, "second\n")
}

func Test_FormatWithoutFileName(t *testing.T) {
	out := Format("", "x", Point(0), "oops")
	require.True(t, strings.HasPrefix(out, "error at 1: oops"))
}

func Test_ErrorImplementsError(t *testing.T) {
	var err error = &Error{File: "t.ir", Source: "x", Range: Point(0), Message: "oops"}
	require.Contains(t, err.Error(), "oops")
}
