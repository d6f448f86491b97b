// Package resolve implements the scope/entity collector: the first
// semantic pass over the parsed AST. It builds the tree of scopes rooted at
// the global scope and installs one Entity per declaration, without
// evaluating any expression.
package resolve

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
)

// Collector builds the scope tree for one program.
type Collector struct {
	errs   *errs.State
	Global *ast.Scope
}

// NewCollector creates a Collector with a fresh global scope.
func NewCollector(e *errs.State) *Collector {
	return &Collector{errs: e, Global: ast.NewScope(ast.GlobalScope, nil)}
}

// Collect walks the top-level block, installing entities into the Global
// scope and attaching a Scope to every Block/Function/FunctionType/Struct
// node it encounters. A function's parameters live in the same scope as
// its body, so a parameter naturally shadows a same-named variable
// declared in an enclosing scope without special-casing: Scope.Declare
// only ever rejects a redeclaration within the very same scope instance.
func Collect(block *ast.Block, e *errs.State) *ast.Scope {
	c := NewCollector(e)
	block.SetScope(c.Global)
	c.collectBlockBody(block, c.Global)
	return c.Global
}

func (c *Collector) collectBlockBody(b *ast.Block, scope *ast.Scope) {
	for _, s := range b.Stmts {
		c.collectStmt(s, scope)
	}
}

func (c *Collector) collectStmt(s ast.Stmt, scope *ast.Scope) {
	switch s := s.(type) {
	case *ast.Decl:
		c.collectDecl(s, scope)
	case *ast.Block:
		child := ast.NewScope(ast.BlockScope, scope)
		s.SetScope(child)
		c.collectBlockBody(s, child)
	case *ast.ExprStmt:
		c.collectExpr(s.X, scope)
	case *ast.Print:
		c.collectExpr(s.X, scope)
	case *ast.Return:
		if s.X != nil {
			c.collectExpr(s.X, scope)
		}
	case *ast.If:
		c.collectExpr(s.Cond, scope)
		c.collectStmt(s.Then, scope)
		if s.Else != nil {
			c.collectStmt(s.Else, scope)
		}
	case *ast.While:
		c.collectExpr(s.Cond, scope)
		c.collectStmt(s.Body, scope)
	case *ast.BadStmt:
		// nothing to collect
	}
}

// collectDecl installs the Entity for a declaration and recurses into its
// type annotation and initializer expressions to pick up nested scopes
// (function literals, struct types) and their own declarations.
func (c *Collector) collectDecl(d *ast.Decl, scope *ast.Scope) {
	kind := ast.VariableEntity
	if d.IsConst {
		kind = ast.ConstantEntity
		if _, ok := d.Value.(*ast.FuncLit); ok {
			kind = ast.FunctionEntity
		}
	}

	ent := &ast.Entity{Name: d.Name, Kind: kind, Decl: d, OwnerScope: scope, Type: -1, CodegenIndex: -1}
	if !scope.Declare(ent) {
		c.errs.Add(d.At, "redeclaration of %q in this scope", d.Name)
	}
	d.Entity = ent

	if d.Type != nil {
		c.collectExpr(d.Type, scope)
	}
	if d.Value != nil {
		c.collectExpr(d.Value, scope)
	}
}

func (c *Collector) collectExpr(e ast.Expr, scope *ast.Scope) {
	switch e := e.(type) {
	case *ast.Literal, *ast.Ident, *ast.BadExpr:
		// leaves
	case *ast.Grouping:
		c.collectExpr(e.Inner, scope)
	case *ast.Unary:
		c.collectExpr(e.Right, scope)
	case *ast.Dereference:
		c.collectExpr(e.Left, scope)
	case *ast.Binary:
		c.collectExpr(e.Left, scope)
		c.collectExpr(e.Right, scope)
	case *ast.Cast:
		if e.Type != nil {
			c.collectExpr(e.Type, scope)
		}
		c.collectExpr(e.Target, scope)
	case *ast.Assignment:
		c.collectExpr(e.Left, scope)
		c.collectExpr(e.Right, scope)
	case *ast.Call:
		c.collectExpr(e.Fn, scope)
		for _, a := range e.Args {
			c.collectExpr(a, scope)
		}
	case *ast.Selector:
		c.collectExpr(e.Left, scope)
	case *ast.Index:
		c.collectExpr(e.Left, scope)
		c.collectExpr(e.Idx, scope)
	case *ast.ArrayTypeExpr:
		c.collectExpr(e.Dim, scope)
		c.collectExpr(e.Elem, scope)
	case *ast.FuncTypeExpr:
		c.collectFuncType(e, scope, ast.FunctionTypeScope)
	case *ast.FuncLit:
		c.collectFuncType(e.Sig, scope, ast.FunctionScope)
		fnScope := e.Sig.Scope()
		for _, s := range e.Body.Stmts {
			c.collectStmt(s, fnScope)
		}
		e.Body.SetScope(fnScope)
	case *ast.StructTypeExpr:
		c.collectStructType(e, scope)
	case *ast.StructLit:
		c.collectExpr(e.Name, scope)
		for _, v := range e.Positional {
			c.collectExpr(v, scope)
		}
		for _, f := range e.Designated {
			c.collectExpr(f.Value, scope)
		}
		scope.Temporaries = append(scope.Temporaries, e)
	case *ast.ArrayLit:
		c.collectExpr(e.Type, scope)
		for _, el := range e.Elems {
			c.collectExpr(el, scope)
		}
	}
}

func (c *Collector) collectFuncType(sig *ast.FuncTypeExpr, scope *ast.Scope, kind ast.ScopeKind) {
	fnScope := ast.NewScope(kind, scope)
	fnScope.FuncType = sig
	sig.SetScope(fnScope)
	for _, prm := range sig.Params {
		c.collectExpr(prm.Type, scope) // type annotation resolved in the outer scope
		ent := &ast.Entity{Name: prm.Name, Kind: ast.VariableEntity, Decl: prm, OwnerScope: fnScope, Type: -1, IsLive: true, CodegenIndex: -1}
		if !fnScope.Declare(ent) {
			c.errs.Add(prm.At, "duplicate parameter name %q", prm.Name)
		}
	}
	if sig.Ret != nil {
		c.collectExpr(sig.Ret, scope)
	}
}

func (c *Collector) collectStructType(st *ast.StructTypeExpr, scope *ast.Scope) {
	dataScope := ast.NewScope(ast.StructScope, scope)
	st.SetScope(dataScope)
	for _, f := range st.Fields {
		c.collectExpr(f.Type, scope)
		ent := &ast.Entity{Name: f.Name, Kind: ast.VariableEntity, Decl: f, OwnerScope: dataScope, Type: -1, IsLive: true, CodegenIndex: -1}
		if !dataScope.Declare(ent) {
			c.errs.Add(f.At, "duplicate field name %q", f.Name)
		}
	}
}
