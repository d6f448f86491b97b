// Package parser implements a precedence-climbing expression parser and a
// recursive-descent statement parser over the lexer's token stream,
// producing the AST consumed by the scope/entity collector.
package parser

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/lexer"
	"github.com/mna/toylang/lang/token"
)

// precedence levels, low to high, matching the ladder in the component
// design: Assignment < Or < And < Equality < Comparison < AddSub < MulDiv <
// UnaryPrefixes < CallsAndSelectors < Primary.
type precedence int

const (
	precNone precedence = iota
	precOr
	precAnd
	precEquality
	precComparison
	precAddSub
	precMulDiv
	precUnary
	precCallSelector
	precPrimary
)

var binPrec = map[token.Token]precedence{
	token.OR:    precOr,
	token.AND:   precAnd,
	token.EQL:   precEquality,
	token.NEQ:   precEquality,
	token.LT:    precComparison,
	token.LE:    precComparison,
	token.GT:    precComparison,
	token.GE:    precComparison,
	token.PLUS:  precAddSub,
	token.MINUS: precAddSub,
	token.STAR:  precMulDiv,
	token.SLASH: precMulDiv,
}

// parser consumes a pre-scanned token stream. panicking is never used for
// control flow here: on error, the parser records a positioned error. A
// token that cannot start an expression or a statement, or an expression
// statement without its ';', triggers panic-mode recovery, synchronizing
// at the next ';'; a missing token reported by expect is recorded without
// skipping any input.
type parser struct {
	toks []lexer.TokenValue
	pos  int
	errs *errs.State

	// noStructLit suppresses struct-literal parsing of `Ident { ... }` while
	// parsing an if/while condition, the same way composite literals are
	// disallowed in Go's if/for/switch headers - otherwise `if x { ... }`
	// would misparse its body as a struct literal's braces.
	noStructLit bool
}

// Parse tokenizes and parses src into a top-level Block.
func Parse(src []byte, e *errs.State) *ast.Block {
	toks := lexer.Tokenize(src, e)
	p := &parser{toks: toks, errs: e}
	return p.parseTopLevel()
}

func (p *parser) cur() lexer.TokenValue  { return p.toks[p.pos] }
func (p *parser) curTok() token.Token    { return p.toks[p.pos].Tok }
func (p *parser) curPos() token.Pos      { return p.toks[p.pos].Pos }

func (p *parser) advance() lexer.TokenValue {
	tv := p.toks[p.pos]
	if tv.Tok != token.EOF {
		p.pos++
	}
	return tv
}

func (p *parser) check(tok token.Token) bool {
	return p.curTok() == tok
}

func (p *parser) match(tok token.Token) bool {
	if p.check(tok) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tok token.Token) token.Pos {
	if p.check(tok) {
		return p.advance().Pos
	}
	pos := p.curPos()
	p.errf(pos, "expected %s, found %s", tok.GoString(), p.curTok().GoString())
	return pos
}

func (p *parser) errf(pos token.Pos, format string, args ...interface{}) {
	p.errs.Add(pos, format, args...)
}

// synchronize implements panic-mode recovery: advance until a ';' is
// consumed (or EOF reached) so subsequent statements can still be parsed.
func (p *parser) synchronize() {
	for !p.check(token.EOF) {
		if p.curTok() == token.SEMI {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) parseTopLevel() *ast.Block {
	start := p.curPos()
	b := &ast.Block{Lbrace: start}
	for !p.check(token.EOF) {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	b.Rbrace = p.curPos()
	return b
}
