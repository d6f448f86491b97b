package lexer_test

import (
	"testing"

	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/lexer"
	"github.com/mna/toylang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) ([]lexer.TokenValue, *errs.State) {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	return lexer.Tokenize([]byte(src), e), e
}

func TestTokenizeBasic(t *testing.T) {
	toks, e := tokenize(t, `i := 0; while i < 5 { print(i); }`)
	require.True(t, e.OK())

	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Tok)
	}
	want := []token.Token{
		token.IDENT, token.COLON, token.ASSIGN, token.INT, token.SEMI,
		token.WHILE, token.IDENT, token.LT, token.INT, token.LBRACE,
		token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.SEMI,
		token.RBRACE, token.EOF,
	}
	assert.Equal(t, want, kinds, "print must lex as a plain identifier, not a reserved word")
}

func TestTokenizeLiterals(t *testing.T) {
	toks, e := tokenize(t, `42 3.5 "hi" true false ident`)
	require.True(t, e.OK())
	require.Len(t, toks, 7) // 6 literals + EOF

	assert.Equal(t, token.INT, toks[0].Tok)
	assert.EqualValues(t, 42, toks[0].Int)

	assert.Equal(t, token.FLOAT, toks[1].Tok)
	assert.InDelta(t, 3.5, toks[1].Float, 0.0001)

	assert.Equal(t, token.STRING, toks[2].Tok)
	assert.Equal(t, "hi", toks[2].Str)

	assert.Equal(t, token.TRUE, toks[3].Tok)
	assert.Equal(t, token.FALSE, toks[4].Tok)

	assert.Equal(t, token.IDENT, toks[5].Tok)
	assert.Equal(t, "ident", toks[5].Str)
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	toks, e := tokenize(t, `-> == != <= >= && ||`)
	require.True(t, e.OK())
	want := []token.Token{
		token.ARROW, token.EQL, token.NEQ, token.LE, token.GE, token.AND, token.OR, token.EOF,
	}
	var got []token.Token
	for _, tv := range toks {
		got = append(got, tv.Tok)
	}
	assert.Equal(t, want, got)
}

func TestTokenizeCommentsSkipped(t *testing.T) {
	toks, e := tokenize(t, "1 // line comment\n2 /* block\ncomment */ 3")
	require.True(t, e.OK())
	require.Len(t, toks, 4) // 3 ints + EOF
	assert.EqualValues(t, 1, toks[0].Int)
	assert.EqualValues(t, 2, toks[1].Int)
	assert.EqualValues(t, 3, toks[2].Int)
}

func TestTokenizeRoundTrip(t *testing.T) {
	// Any literal token's text, re-lexed in isolation, yields one token of the
	// same kind.
	literals := []string{"0", "123", "3.14", `"hello world"`, "ident_1"}
	for _, lit := range literals {
		t.Run(lit, func(t *testing.T) {
			toks, e := tokenize(t, lit)
			require.True(t, e.OK())
			require.Len(t, toks, 2) // literal + EOF
			assert.NotEqual(t, token.ILLEGAL, toks[0].Tok)
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	t.Run("unterminated string", func(t *testing.T) {
		_, e := tokenize(t, `"unterminated`)
		assert.False(t, e.OK())
	})
	t.Run("unterminated block comment", func(t *testing.T) {
		_, e := tokenize(t, `/* never closed`)
		assert.False(t, e.OK())
	})
	t.Run("invalid character", func(t *testing.T) {
		_, e := tokenize(t, `@`)
		assert.False(t, e.OK())
	})
}
