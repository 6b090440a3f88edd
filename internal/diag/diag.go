// Package diag formats lexer/parser errors that carry a byte range into the
// source, per §6 "Diagnostics": `error at LINE`, the previous line, the
// offending line, and an underline from start to end (or a caret when they
// coincide).
package diag

import (
	"fmt"
	"strings"
)

// Range is a half-open byte-offset span into a source string.
type Range struct {
	Start int
	End   int
}

// Point returns a zero-width Range at offset i, formatted as a caret.
func Point(i int) Range { return Range{Start: i, End: i} }

// Error pairs a message with the source file name and the offending Range.
type Error struct {
	File    string
	Source  string
	Range   Range
	Message string
}

func (e *Error) Error() string {
	return Format(e.File, e.Source, e.Range, e.Message)
}

// Format renders the diagnostic: the file:line header, the previous source
// line for context, the offending line, and an underline beneath the
// offending range.
func Format(file, src string, r Range, message string) string {
	line, col, lineStart, lineEnd := locate(src, r.Start)

	var b strings.Builder
	if file != "" {
		fmt.Fprintf(&b, "error at %s:%d: %s\n", file, line, message)
	} else {
		fmt.Fprintf(&b, "error at %d: %s\n", line, message)
	}

	if line > 1 {
		prevEnd := lineStart - 1 // drop the newline
		prevStart := strings.LastIndexByte(src[:prevEnd], '\n') + 1
		b.WriteString(src[prevStart:prevEnd])
		b.WriteByte('\n')
	}

	offending := src[lineStart:lineEnd]
	b.WriteString(offending)
	b.WriteByte('\n')

	width := r.End - r.Start
	if width <= 0 {
		b.WriteString(strings.Repeat(" ", col))
		b.WriteByte('^')
	} else {
		endCol := col + width
		if endCol > len(offending) {
			endCol = len(offending)
		}
		b.WriteString(strings.Repeat(" ", col))
		b.WriteString(strings.Repeat("^", endCol-col))
	}

	return b.String()
}

// locate finds the 1-based line number, 0-based column, and byte offsets of
// the start and end of the line containing offset pos.
func locate(src string, pos int) (line, col, lineStart, lineEnd int) {
	if pos > len(src) {
		pos = len(src)
	}
	line = 1
	lineStart = 0
	for i := 0; i < pos; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = pos - lineStart

	lineEnd = len(src)
	if idx := strings.IndexByte(src[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	return line, col, lineStart, lineEnd
}
