// Package ast defines the abstract syntax tree. Go has no native
// inheritance, so the language's polymorphic AST is recreated as a Node
// interface implemented by per-kind structs, each embedding a common Header
// that carries position and the fields the type checker fills in (pType,
// isConstant, constantValue). Visitors pattern-match via type switch
// instead of virtual dispatch.
package ast

import (
	"github.com/mna/toylang/lang/token"
	"github.com/mna/toylang/lang/types"
)

// Node is any node in the AST.
type Node interface {
	Pos() token.Pos
}

// Expr is any expression node. Every Expr carries a Header recording its
// resolved type and constant-folding state, filled in by the type checker.
type Expr interface {
	Node
	exprNode()
	Header() *Header
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Header is the common state the type checker attaches to every expression
// node: its resolved type and, if it folds to a compile-time constant, its
// value.
type Header struct {
	PType         int // type id in the Registry; TypeID of "invalid" until checked
	IsConstant    bool
	ConstantValue types.Value
}

// ==================== Expressions ====================

type (
	// BadExpr is the sentinel emitted in place of an expression that failed
	// to parse, so downstream passes keep running without cascading errors.
	BadExpr struct {
		hdr Header
		At token.Pos
	}

	// Literal is an integer, float, or bool literal.
	Literal struct {
		hdr Header
		Tok token.Token // INT, FLOAT, TRUE or FALSE
		At  token.Pos
		Raw string
	}

	// Ident is an identifier reference, resolved to an Entity by the
	// checker.
	Ident struct {
		hdr Header
		At     token.Pos
		Name   string
		Entity *Entity // resolved by the checker
	}

	// Grouping is a parenthesized expression; it is transparent to constant
	// folding and typing.
	Grouping struct {
		hdr Header
		Lparen token.Pos
		Inner  Expr
		Rparen token.Pos
	}

	// Unary is a prefix unary expression: -e, !e, &e.
	Unary struct {
		hdr Header
		Op    token.Token
		At    token.Pos
		Right Expr
	}

	// Dereference is a postfix pointer dereference: e^.
	Dereference struct {
		hdr Header
		Left Expr
		At   token.Pos
	}

	// Binary is a binary operator expression.
	Binary struct {
		hdr Header
		Left  Expr
		Op    token.Token
		At    token.Pos
		Right Expr
	}

	// Cast is an explicit `as(T) e` expression, or a checker-synthesized
	// implicit i32->f32 widening inserted over an operand.
	Cast struct {
		hdr Header
		As       token.Pos
		Type     Expr
		Target   Expr
		Implicit bool
	}

	// Assignment is `lhs = rhs` used as an expression (its value is rhs).
	Assignment struct {
		hdr Header
		Left  Expr
		At    token.Pos
		Right Expr
	}

	// Call is a function call e(args...).
	Call struct {
		hdr Header
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// Selector is a dotted field access: e.name.
	Selector struct {
		hdr Header
		Left Expr
		Dot  token.Pos
		Name string
		At   token.Pos
	}

	// Index is a subscript expression: e[i].
	Index struct {
		hdr Header
		Left   Expr
		Lbrack token.Pos
		Idx    Expr
		Rbrack token.Pos
	}

	// ArrayTypeExpr is `[N]T` used in type position. Other type expressions
	// (i32, f32, bool, void, type, struct names, and `^T` pointer types) need
	// no dedicated node: they parse as an Ident (resolved by the checker to
	// a core or user-declared type entity) or a prefix Unary with
	// Op==CARET, respectively - the array form alone has syntax the
	// existing expression grammar cannot otherwise express.
	ArrayTypeExpr struct {
		hdr Header
		Lbrack token.Pos
		Dim    Expr
		Rbrack token.Pos
		Elem   Expr
	}

	// FuncTypeExpr is `func (T1, T2) -> R` used in type position, or as the
	// signature of a FuncLit.
	FuncTypeExpr struct {
		hdr Header
		Fn      token.Pos
		Params  []*Param
		Arrow   token.Pos
		Ret     Expr // nil if no declared return type (void)
		scope   *Scope
	}

	// Param is one declared parameter of a function type or literal.
	Param struct {
		Name string
		At   token.Pos
		Type Expr
	}

	// FuncLit is a function literal: `func (params) -> R { body }`.
	FuncLit struct {
		hdr Header
		Sig  *FuncTypeExpr
		Body *Block
	}

	// StructTypeExpr is `struct { field: Type; ... }` appearing as the
	// initializer of a constant declaration.
	StructTypeExpr struct {
		hdr Header
		Struct token.Pos
		Fields []*Param
		End    token.Pos
		scope  *Scope
	}

	// StructLit is a struct value literal: `Name{...}`, positional or
	// designated.
	StructLit struct {
		hdr Header
		Name        Expr
		Lbrace      token.Pos
		Positional  []Expr        // set if positional form used
		Designated  []*FieldInit  // set if designated form used
		Rbrace      token.Pos
	}

	// FieldInit is one `.field = expr` entry of a designated struct
	// literal.
	FieldInit struct {
		Dot   token.Pos
		Name  string
		Value Expr
	}

	// ArrayLit is an array value literal: `[N]T[e1, e2, ...]`, the `[...]`
	// trailing an array type expression.
	ArrayLit struct {
		hdr Header
		Type   Expr // the ArrayTypeExpr
		Lbrack token.Pos
		Elems  []Expr
		Rbrack token.Pos
	}
)

func (n *Param) Pos() token.Pos { return n.At }

func (n *BadExpr) Pos() token.Pos         { return n.At }
func (n *Literal) Pos() token.Pos         { return n.At }
func (n *Ident) Pos() token.Pos           { return n.At }
func (n *Grouping) Pos() token.Pos        { return n.Lparen }
func (n *Unary) Pos() token.Pos           { return n.At }
func (n *Dereference) Pos() token.Pos     { return n.At }
func (n *Binary) Pos() token.Pos          { return n.At }
func (n *Cast) Pos() token.Pos            { return n.As }
func (n *Assignment) Pos() token.Pos      { return n.At }
func (n *Call) Pos() token.Pos            { return n.Lparen }
func (n *Selector) Pos() token.Pos        { return n.At }
func (n *Index) Pos() token.Pos           { return n.Lbrack }
func (n *ArrayTypeExpr) Pos() token.Pos   { return n.Lbrack }
func (n *FuncTypeExpr) Pos() token.Pos    { return n.Fn }
func (n *FuncLit) Pos() token.Pos         { return n.Sig.Fn }
func (n *StructTypeExpr) Pos() token.Pos  { return n.Struct }
func (n *StructLit) Pos() token.Pos       { return n.Lbrace }
func (n *ArrayLit) Pos() token.Pos        { return n.Lbrack }

func (n *BadExpr) exprNode()         {}
func (n *Literal) exprNode()         {}
func (n *Ident) exprNode()           {}
func (n *Grouping) exprNode()        {}
func (n *Unary) exprNode()           {}
func (n *Dereference) exprNode()     {}
func (n *Binary) exprNode()          {}
func (n *Cast) exprNode()            {}
func (n *Assignment) exprNode()      {}
func (n *Call) exprNode()            {}
func (n *Selector) exprNode()        {}
func (n *Index) exprNode()           {}
func (n *ArrayTypeExpr) exprNode()   {}
func (n *FuncTypeExpr) exprNode()    {}
func (n *FuncLit) exprNode()         {}
func (n *StructTypeExpr) exprNode()  {}
func (n *StructLit) exprNode()       {}
func (n *ArrayLit) exprNode()        {}

func (n *BadExpr) Header() *Header         { return &n.hdr }
func (n *Literal) Header() *Header         { return &n.hdr }
func (n *Ident) Header() *Header           { return &n.hdr }
func (n *Grouping) Header() *Header        { return &n.hdr }
func (n *Unary) Header() *Header           { return &n.hdr }
func (n *Dereference) Header() *Header     { return &n.hdr }
func (n *Binary) Header() *Header          { return &n.hdr }
func (n *Cast) Header() *Header            { return &n.hdr }
func (n *Assignment) Header() *Header      { return &n.hdr }
func (n *Call) Header() *Header            { return &n.hdr }
func (n *Selector) Header() *Header        { return &n.hdr }
func (n *Index) Header() *Header           { return &n.hdr }
func (n *ArrayTypeExpr) Header() *Header   { return &n.hdr }
func (n *FuncTypeExpr) Header() *Header    { return &n.hdr }
func (n *FuncLit) Header() *Header         { return &n.hdr }
func (n *StructTypeExpr) Header() *Header  { return &n.hdr }
func (n *StructLit) Header() *Header       { return &n.hdr }
func (n *ArrayLit) Header() *Header        { return &n.hdr }

// Scope returns the FuncTypeExpr's associated Scope, assigned by the
// collector.
func (n *FuncTypeExpr) Scope() *Scope    { return n.scope }
func (n *FuncTypeExpr) SetScope(s *Scope) { n.scope = s }

// Scope returns the StructTypeExpr's associated data scope, assigned by the
// collector.
func (n *StructTypeExpr) Scope() *Scope    { return n.scope }
func (n *StructTypeExpr) SetScope(s *Scope) { n.scope = s }
