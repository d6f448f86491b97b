package ast

import "github.com/mna/toylang/lang/token"

type (
	// BadStmt is the sentinel emitted in place of a statement that failed to
	// parse.
	BadStmt struct {
		At token.Pos
	}

	// Block is `{ stmt* }`, a scope plus its ordered statements.
	Block struct {
		Lbrace token.Pos
		Stmts  []Stmt
		Rbrace token.Pos
		scope  *Scope
	}

	// Decl is a declaration: `name ':' [Type] (':' expr | '=' expr)? ';'`.
	// It is used only as a top-level/block statement; function-type
	// parameters and struct fields are parsed into the separate Param node.
	Decl struct {
		Name    string
		At      token.Pos
		Colon   token.Pos
		Type    Expr // nil if no type annotation
		IsConst bool // separator was ':' (constant) vs '=' (variable)
		Value   Expr // nil for an uninitialized variable declaration
		Semi    token.Pos

		Entity *Entity // installed by the collector
	}

	// ExprStmt is an expression used as a statement (an assignment or
	// call).
	ExprStmt struct {
		X Expr
	}

	// Print is `print(expr);`.
	Print struct {
		At   token.Pos
		X    Expr
		Semi token.Pos
	}

	// Return is `return [expr];`.
	Return struct {
		At     token.Pos
		X      Expr // nil for a bare `return;`
		Semi   token.Pos
	}

	// If is `if cond stmt [else stmt]`.
	If struct {
		At   token.Pos
		Cond Expr
		Then Stmt
		Else Stmt // nil if no else clause
	}

	// While is `while cond stmt`.
	While struct {
		At   token.Pos
		Cond Expr
		Body Stmt
	}
)

func (n *BadStmt) Pos() token.Pos    { return n.At }
func (n *Block) Pos() token.Pos      { return n.Lbrace }
func (n *Decl) Pos() token.Pos       { return n.At }
func (n *ExprStmt) Pos() token.Pos   { return n.X.Pos() }
func (n *Print) Pos() token.Pos      { return n.At }
func (n *Return) Pos() token.Pos     { return n.At }
func (n *If) Pos() token.Pos         { return n.At }
func (n *While) Pos() token.Pos      { return n.At }

func (n *BadStmt) stmtNode()  {}
func (n *Block) stmtNode()    {}
func (n *Decl) stmtNode()     {}
func (n *ExprStmt) stmtNode() {}
func (n *Print) stmtNode()    {}
func (n *Return) stmtNode()  {}
func (n *If) stmtNode()      {}
func (n *While) stmtNode()   {}

// Scope returns the Block's associated Scope, assigned by the collector.
func (n *Block) Scope() *Scope     { return n.scope }
func (n *Block) SetScope(s *Scope) { n.scope = s }
