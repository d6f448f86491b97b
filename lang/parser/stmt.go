package parser

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/token"
)

func (p *parser) parseStmt() ast.Stmt {
	switch p.curTok() {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		// print is a built-in recognized by its textual identifier, not a
		// reserved word: `print(e);` is the print statement, while any other
		// use of the name (a declaration, say) is handled like any
		// identifier.
		if p.cur().Str == "print" && p.toks[p.pos+1].Tok == token.LPAREN {
			return p.parsePrint()
		}
		if p.toks[p.pos+1].Tok == token.COLON {
			return p.parseDecl()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseBlock() *ast.Block {
	lbrace := p.expect(token.LBRACE)
	b := &ast.Block{Lbrace: lbrace}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	b.Rbrace = p.expect(token.RBRACE)
	return b
}

func (p *parser) parseIf() ast.Stmt {
	at := p.advance().Pos // 'if'
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = false
	then := p.parseStmt()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.parseStmt()
	}
	return &ast.If{At: at, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() ast.Stmt {
	at := p.advance().Pos // 'while'
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = false
	body := p.parseStmt()
	return &ast.While{At: at, Cond: cond, Body: body}
}

func (p *parser) parseReturn() ast.Stmt {
	at := p.advance().Pos // 'return'
	var x ast.Expr
	if !p.check(token.SEMI) {
		x = p.parseExpr()
	}
	semi := p.expect(token.SEMI)
	return &ast.Return{At: at, X: x, Semi: semi}
}

func (p *parser) parsePrint() ast.Stmt {
	at := p.advance().Pos // the `print` identifier
	p.expect(token.LPAREN)
	x := p.parseExpr()
	p.expect(token.RPAREN)
	semi := p.expect(token.SEMI)
	return &ast.Print{At: at, X: x, Semi: semi}
}

// parseDecl parses `name ':' [type] (':' expr | '=' expr)? ';'`. Omitting
// an initializer is legal only for variables, i.e. the second form always
// supplies a type.
func (p *parser) parseDecl() ast.Stmt {
	tv := p.advance() // IDENT
	name, at := tv.Str, tv.Pos
	colon := p.expect(token.COLON)

	// the annotation parses one precedence level above assignment, so the
	// '=' that introduces a variable initializer is not swallowed as an
	// assignment expression inside the annotation itself.
	var typ ast.Expr
	if !p.check(token.COLON) && !p.check(token.ASSIGN) {
		typ = p.parseBinary(precOr)
	}

	d := &ast.Decl{Name: name, At: at, Colon: colon, Type: typ}
	switch {
	case p.match(token.COLON):
		d.IsConst = true
		d.Value = p.parseExpr()
	case p.match(token.ASSIGN):
		d.IsConst = false
		d.Value = p.parseExpr()
	default:
		if typ == nil {
			p.errf(p.curPos(), "declaration of %q needs a type or an initializer", name)
		}
	}
	d.Semi = p.expect(token.SEMI)
	return d
}

func (p *parser) parseExprStmt() ast.Stmt {
	if p.check(token.SEMI) || p.check(token.EOF) {
		pos := p.curPos()
		p.errf(pos, "expected statement, found %s", p.curTok().GoString())
		p.synchronize()
		return &ast.BadStmt{At: pos}
	}
	x := p.parseExpr()
	if !p.check(token.SEMI) {
		pos := p.curPos()
		p.errf(pos, "expected %s after expression statement", token.SEMI.GoString())
		p.synchronize()
		return &ast.BadStmt{At: x.Pos()}
	}
	p.advance() // ';'
	return &ast.ExprStmt{X: x}
}
