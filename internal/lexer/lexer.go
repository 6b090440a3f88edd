// Package lexer tokenizes the textual IR grammar of §6.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Verdex/dne/internal/diag"
)

// Kind discriminates a Token.
type Kind uint8

const (
	EOF Kind = iota
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon
	Colon
	Arrow
	Equal

	Ident // a bare identifier, including TYPE names (Int, Float, ...)
	Int
	Float
	String
	SymbolLit // ~ident

	KwTrue
	KwFalse
	KwGlobal
	KwProc
	KwSet
	KwJump
	KwLabel
	KwBranchTrue
	KwReturn
	KwYield
	KwBreak
	KwSlotInsert
	KwSlotRemove
	KwDelete
	KwCall
	KwDynCall
	KwCoroutine
	KwDynCoroutine
	KwClosure
	KwCons
	KwResume
	KwLength
	KwType
	KwSlot
	KwIsNil
	KwToString
	KwConcat
)

var keywords = map[string]Kind{
	"true":          KwTrue,
	"false":         KwFalse,
	"global":        KwGlobal,
	"proc":          KwProc,
	"set":           KwSet,
	"jump":          KwJump,
	"label":         KwLabel,
	"branch_true":   KwBranchTrue,
	"return":        KwReturn,
	"yield":         KwYield,
	"break":         KwBreak,
	"slot_insert":   KwSlotInsert,
	"slot_remove":   KwSlotRemove,
	"delete":        KwDelete,
	"call":          KwCall,
	"dyn_call":      KwDynCall,
	"coroutine":     KwCoroutine,
	"dyn_coroutine": KwDynCoroutine,
	"closure":       KwClosure,
	"cons":          KwCons,
	"resume":        KwResume,
	"length":        KwLength,
	"type":          KwType,
	"slot":          KwSlot,
	"is_nil":        KwIsNil,
	"to_string":     KwToString,
	"concat":        KwConcat,
}

// Token is one lexical unit with its source range.
type Token struct {
	Kind  Kind
	Range diag.Range

	Text      string  // Ident/SymbolLit's name, String's resolved content
	IntVal    int64   // Int
	FloatVal  float64 // Float
}

// Lex tokenizes src, returning a *diag.Error (decorated with file) on any
// lexical failure.
func Lex(file, src string) ([]Token, error) {
	l := &lexer{file: file, src: src}
	return l.run()
}

type lexer struct {
	file string
	src  string
	pos  int
	toks []Token
}

func (l *lexer) run() ([]Token, error) {
	for {
		if err := l.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if l.pos >= len(l.src) {
			return l.toks, nil
		}
		c := l.src[l.pos]
		switch {
		case isIdentStart(c):
			l.ident()
		case c == '~':
			if err := l.symbolLit(); err != nil {
				return nil, err
			}
		case c == '"':
			if err := l.stringLit(); err != nil {
				return nil, err
			}
		case isDigit(c) || c == '-':
			if err := l.numberOrArrow(); err != nil {
				return nil, err
			}
		case c == '(':
			l.emit1(LParen)
		case c == ')':
			l.emit1(RParen)
		case c == '{':
			l.emit1(LBrace)
		case c == '}':
			l.emit1(RBrace)
		case c == ',':
			l.emit1(Comma)
		case c == ';':
			l.emit1(Semicolon)
		case c == ':':
			l.emit1(Colon)
		case c == '=':
			l.emit1(Equal)
		default:
			return nil, l.errorAt(l.pos, l.pos+1, fmt.Sprintf("unexpected character %q", c))
		}
	}
}

func (l *lexer) emit1(k Kind) {
	l.toks = append(l.toks, Token{Kind: k, Range: diag.Range{Start: l.pos, End: l.pos + 1}})
	l.pos++
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peek(1) == '*':
			start := l.pos
			l.pos += 2
			depth := 1
			for depth > 0 {
				if l.pos >= len(l.src) {
					return l.errorAt(start, l.pos, "unterminated block comment")
				}
				if l.src[l.pos] == '/' && l.peek(1) == '*' {
					depth++
					l.pos += 2
				} else if l.src[l.pos] == '*' && l.peek(1) == '/' {
					depth--
					l.pos += 2
				} else {
					l.pos++
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) ident() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	rng := diag.Range{Start: start, End: l.pos}
	if kw, ok := keywords[text]; ok {
		l.toks = append(l.toks, Token{Kind: kw, Range: rng, Text: text})
		return
	}
	l.toks = append(l.toks, Token{Kind: Ident, Range: rng, Text: text})
}

func (l *lexer) symbolLit() error {
	start := l.pos
	l.pos++ // consume ~
	if l.pos >= len(l.src) || !isIdentStart(l.src[l.pos]) {
		return l.errorAt(start, l.pos, "expected identifier after '~'")
	}
	nameStart := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.toks = append(l.toks, Token{
		Kind:  SymbolLit,
		Range: diag.Range{Start: start, End: l.pos},
		Text:  l.src[nameStart:l.pos],
	})
	return nil
}

func (l *lexer) stringLit() error {
	start := l.pos
	l.pos++ // consume opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return l.errorAt(start, l.pos, "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' {
			if l.pos+1 >= len(l.src) {
				return l.errorAt(start, l.pos, "unterminated escape sequence")
			}
			switch l.src[l.pos+1] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '0':
				b.WriteByte(0)
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'n':
				b.WriteByte('\n')
			default:
				return l.errorAt(l.pos, l.pos+2, fmt.Sprintf("unknown escape %q", l.src[l.pos:l.pos+2]))
			}
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	l.toks = append(l.toks, Token{
		Kind:  String,
		Range: diag.Range{Start: start, End: l.pos},
		Text:  b.String(),
	})
	return nil
}

func (l *lexer) numberOrArrow() error {
	start := l.pos
	if l.src[l.pos] == '-' && l.peek(1) == '>' {
		l.pos += 2
		l.toks = append(l.toks, Token{Kind: Arrow, Range: diag.Range{Start: start, End: l.pos}})
		return nil
	}
	if l.src[l.pos] == '-' {
		l.pos++
	}
	if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
		return l.errorAt(start, l.pos, "expected digit")
	}
	for l.pos < len(l.src) && isNumberPart(l.src[l.pos]) {
		l.pos++
	}
	raw := l.src[start:l.pos]

	rng := diag.Range{Start: start, End: l.pos}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		l.toks = append(l.toks, Token{Kind: Int, Range: rng, IntVal: n})
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		l.toks = append(l.toks, Token{Kind: Float, Range: rng, FloatVal: f})
		return nil
	}
	return l.errorAt(start, l.pos, fmt.Sprintf("malformed number %q", raw))
}

func (l *lexer) errorAt(start, end int, message string) error {
	return &diag.Error{File: l.file, Source: l.src, Range: diag.Range{Start: start, End: end}, Message: message}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isNumberPart(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}
