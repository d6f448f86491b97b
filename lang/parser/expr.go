package parser

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/token"
)

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseDelimited parses a full expression inside an explicitly delimited
// context (parentheses, argument lists), where a struct literal's braces
// are unambiguous again even while an enclosing if/while condition has
// them suppressed.
func (p *parser) parseDelimited() ast.Expr {
	save := p.noStructLit
	p.noStructLit = false
	e := p.parseAssignment()
	p.noStructLit = save
	return e
}

// parseAssignment is right-associative, the lowest-precedence production.
func (p *parser) parseAssignment() ast.Expr {
	left := p.parseBinary(precOr)
	if p.check(token.ASSIGN) {
		at := p.advance().Pos
		right := p.parseAssignment()
		return &ast.Assignment{Left: left, At: at, Right: right}
	}
	return left
}

// parseBinary implements precedence-climbing for the left-associative
// binary operators, starting at minPrec.
func (p *parser) parseBinary(minPrec precedence) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := binPrec[p.curTok()]
		if !ok || prec < minPrec {
			return left
		}
		op := p.curTok()
		at := p.advance().Pos
		right := p.parseBinary(prec + 1)
		left = &ast.Binary{Left: left, Op: op, At: at, Right: right}
	}
}

// parseUnary handles the prefix operators: '-', '!', '&' (address-of), '^'
// (pointer-type-of), and the `as(T) e` explicit cast.
func (p *parser) parseUnary() ast.Expr {
	switch p.curTok() {
	case token.MINUS, token.BANG, token.AMP, token.CARET:
		op := p.curTok()
		at := p.advance().Pos
		right := p.parseUnary()
		return &ast.Unary{Op: op, At: at, Right: right}
	case token.AS:
		at := p.advance().Pos
		p.expect(token.LPAREN)
		typ := p.parseExpr()
		p.expect(token.RPAREN)
		target := p.parseUnary()
		return &ast.Cast{As: at, Type: typ, Target: target}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles the postfix productions: call, selector, subscript,
// dereference, and struct literal.
func (p *parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.curTok() {
		case token.LPAREN:
			lparen := p.advance().Pos
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				args = append(args, p.parseDelimited())
				for p.match(token.COMMA) {
					args = append(args, p.parseDelimited())
				}
			}
			rparen := p.expect(token.RPAREN)
			e = &ast.Call{Fn: e, Lparen: lparen, Args: args, Rparen: rparen}
		case token.DOT:
			dot := p.advance().Pos
			name := ""
			at := p.curPos()
			if p.check(token.IDENT) {
				tv := p.advance()
				name = tv.Str
			} else {
				p.errf(at, "expected field name after '.'")
			}
			e = &ast.Selector{Left: e, Dot: dot, Name: name, At: at}
		case token.LBRACK:
			lbrack := p.advance().Pos
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			e = &ast.Index{Left: e, Lbrack: lbrack, Idx: idx, Rbrack: rbrack}
		case token.CARET:
			at := p.advance().Pos
			e = &ast.Dereference{Left: e, At: at}
		case token.LBRACE:
			if p.noStructLit {
				return e
			}
			e = p.parseStructLit(e)
		default:
			return e
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tv := p.cur()
	switch tv.Tok {
	case token.INT, token.FLOAT, token.TRUE, token.FALSE:
		p.advance()
		return &ast.Literal{Tok: tv.Tok, At: tv.Pos, Raw: tv.Str}
	case token.IDENT:
		p.advance()
		return &ast.Ident{At: tv.Pos, Name: tv.Str}
	case token.LPAREN:
		lparen := p.advance().Pos
		inner := p.parseDelimited()
		rparen := p.expect(token.RPAREN)
		return &ast.Grouping{Lparen: lparen, Inner: inner, Rparen: rparen}
	case token.LBRACK:
		return p.parseArrayType()
	case token.FUNC:
		return p.parseFuncTypeOrLit()
	case token.STRUCT:
		return p.parseStructType()
	default:
		pos := tv.Pos
		p.errf(pos, "expected expression, found %s", tv.Tok.GoString())
		p.synchronize()
		return &ast.BadExpr{At: pos}
	}
}

// parseArrayType parses `[N]T`, and, if a `[` immediately follows the
// element type, the array value literal `[N]T[e1, e2, ...]` it introduces.
func (p *parser) parseArrayType() ast.Expr {
	lbrack := p.advance().Pos // '['
	dim := p.parseExpr()
	rbrack := p.expect(token.RBRACK)
	elem := p.parseTypeOperand()
	typ := &ast.ArrayTypeExpr{Lbrack: lbrack, Dim: dim, Rbrack: rbrack, Elem: elem}
	if p.check(token.LBRACK) {
		return p.parseArrayLit(typ)
	}
	return typ
}

// parseTypeOperand parses the restricted grammar valid in the element
// position of an array type: a '^' pointer prefix, a nested array type, or
// a primary expression. It skips the postfix productions so a trailing '['
// stays available to the array literal form.
func (p *parser) parseTypeOperand() ast.Expr {
	if p.check(token.CARET) {
		at := p.advance().Pos
		right := p.parseTypeOperand()
		return &ast.Unary{Op: token.CARET, At: at, Right: right}
	}
	return p.parsePrimary()
}

// parseArrayLit parses the `[e1, e2, ...]` element list trailing an array
// type expression already parsed as typ.
func (p *parser) parseArrayLit(typ ast.Expr) ast.Expr {
	lbrack := p.advance().Pos // '['
	lit := &ast.ArrayLit{Type: typ, Lbrack: lbrack}
	if !p.check(token.RBRACK) {
		lit.Elems = append(lit.Elems, p.parseExpr())
		for p.match(token.COMMA) {
			lit.Elems = append(lit.Elems, p.parseExpr())
		}
	}
	lit.Rbrack = p.expect(token.RBRACK)
	return lit
}

// parseFuncTypeOrLit parses `func (params) [-> R]`, optionally followed by
// a `{ body }` to make it a function literal rather than a bare function
// type.
func (p *parser) parseFuncTypeOrLit() ast.Expr {
	fn := p.advance().Pos // 'func'
	p.expect(token.LPAREN)

	var params []*ast.Param
	if !p.check(token.RPAREN) {
		params = append(params, p.parseParam())
		for p.match(token.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN)

	var arrow token.Pos
	var ret ast.Expr
	if p.check(token.ARROW) {
		arrow = p.advance().Pos
		// a `{` after the return type opens the body, not a struct literal
		save := p.noStructLit
		p.noStructLit = true
		ret = p.parseUnary()
		p.noStructLit = save
	}

	sig := &ast.FuncTypeExpr{Fn: fn, Params: params, Arrow: arrow, Ret: ret}
	if p.check(token.LBRACE) {
		body := p.parseBlock()
		return &ast.FuncLit{Sig: sig, Body: body}
	}
	return sig
}

func (p *parser) parseParam() *ast.Param {
	at := p.curPos()
	name := ""
	if p.check(token.IDENT) {
		name = p.advance().Str
	} else {
		p.errf(at, "expected parameter name")
	}
	p.expect(token.COLON)
	typ := p.parseUnary()
	return &ast.Param{Name: name, At: at, Type: typ}
}

// parseStructType parses `struct { field : Type; ... }`.
func (p *parser) parseStructType() ast.Expr {
	kw := p.advance().Pos // 'struct'
	p.expect(token.LBRACE)
	var fields []*ast.Param
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		at := p.curPos()
		name := ""
		if p.check(token.IDENT) {
			name = p.advance().Str
		} else {
			p.errf(at, "expected field name")
		}
		p.expect(token.COLON)
		typ := p.parseUnary()
		p.expect(token.SEMI)
		fields = append(fields, &ast.Param{Name: name, At: at, Type: typ})
	}
	end := p.expect(token.RBRACE)
	return &ast.StructTypeExpr{Struct: kw, Fields: fields, End: end}
}

// parseStructLit parses the trailing `{...}` of a struct literal, either
// positional (`Name{e1, e2}`) or designated (`Name{.f1 = e1, .f2 = e2}`).
// Mixing the two forms is a type-checker error, not a parse error: the
// parser only needs to tell which form is in play by the first item.
func (p *parser) parseStructLit(name ast.Expr) ast.Expr {
	lbrace := p.advance().Pos // '{'
	lit := &ast.StructLit{Name: name, Lbrace: lbrace}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if p.check(token.DOT) {
			dot := p.advance().Pos
			fname := ""
			if p.check(token.IDENT) {
				fname = p.advance().Str
			} else {
				p.errf(p.curPos(), "expected field name after '.'")
			}
			p.expect(token.ASSIGN)
			val := p.parseExpr()
			lit.Designated = append(lit.Designated, &ast.FieldInit{Dot: dot, Name: fname, Value: val})
		} else {
			lit.Positional = append(lit.Positional, p.parseExpr())
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	lit.Rbrace = p.expect(token.RBRACE)
	return lit
}
