package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_LexKeywordsAndPunctuation(t *testing.T) {
	toks, err := Lex("t", "proc main ( x : Int ) -> Int { return x ; }")
	require.NoError(t, err)

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []Kind{
		KwProc, Ident, LParen, Ident, Colon, Ident, RParen, Arrow, Ident,
		LBrace, KwReturn, Ident, Semicolon, RBrace,
	}, kinds)
}

func Test_LexIntAndFloat(t *testing.T) {
	toks, err := Lex("t", "1 -2 1.5 -1.5")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	require.Equal(t, Int, toks[0].Kind)
	require.Equal(t, int64(1), toks[0].IntVal)
	require.Equal(t, Int, toks[1].Kind)
	require.Equal(t, int64(-2), toks[1].IntVal)
	require.Equal(t, Float, toks[2].Kind)
	require.Equal(t, 1.5, toks[2].FloatVal)
	require.Equal(t, Float, toks[3].Kind)
	require.Equal(t, -1.5, toks[3].FloatVal)
}

func Test_LexArrowNotConfusedWithNegativeNumber(t *testing.T) {
	toks, err := Lex("t", "->")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, Arrow, toks[0].Kind)
}

func Test_LexSymbolLiteral(t *testing.T) {
	toks, err := Lex("t", "~cons")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, SymbolLit, toks[0].Kind)
	require.Equal(t, "cons", toks[0].Text)
}

func Test_LexStringLiteralEscapes(t *testing.T) {
	toks, err := Lex("t", `"a\nb\"c"`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, "a\nb\"c", toks[0].Text)
}

func Test_LexUnterminatedStringErrors(t *testing.T) {
	_, err := Lex("t", `"unterminated`)
	require.Error(t, err)
}

func Test_LexSkipsComments(t *testing.T) {
	toks, err := Lex("t", "// line\nglobal /* block */ x")
	require.NoError(t, err)
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []Kind{KwGlobal, Ident}, kinds)
}

func Test_LexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("t", "@")
	require.Error(t, err)
}
