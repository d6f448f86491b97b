// Package check implements the type checker: the pass that turns a scoped
// AST into one where every expression carries a resolved type and, where
// applicable, a folded compile-time value, and every Entity in the scope
// tree is Resolved.
package check

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/types"
)

// Checker carries the type registry being built and the error sink shared
// with every earlier stage.
type Checker struct {
	reg  *types.Registry
	errs *errs.State

	// funcRetStack holds the declared return type id of each function
	// literal currently being checked, innermost last, so a Return
	// statement can validate against the right one.
	funcRetStack []int
}

// NewChecker creates a Checker with a fresh type Registry.
func NewChecker(e *errs.State) *Checker {
	return &Checker{reg: types.NewRegistry(), errs: e}
}

// Check type-checks block in place (block.Scope() must already be populated
// by the collector) and returns the type Registry it has built.
func Check(block *ast.Block, e *errs.State) *types.Registry {
	c := NewChecker(e)
	global := block.Scope()
	c.addCoreTypeEntities(global)
	for _, s := range block.Stmts {
		c.checkStmt(s, global)
	}
	return c.reg
}

// addCoreTypeEntities injects i32, f32, bool, void and type as constant
// entities of type `type` into the global scope, ahead of checking the
// program, so ordinary identifier lookup is all a type annotation ever
// needs.
func (c *Checker) addCoreTypeEntities(global *ast.Scope) {
	core := []struct {
		name string
		id   int
	}{
		{"i32", types.I32ID},
		{"f32", types.F32ID},
		{"bool", types.BoolID},
		{"void", types.VoidID},
		{"type", types.TypeID},
	}
	for _, ct := range core {
		global.Declare(&ast.Entity{
			Name:             ct.name,
			Kind:             ast.ConstantEntity,
			OwnerScope:       global,
			Type:             types.TypeID,
			Status:           ast.Resolved,
			IsLive:           true,
			HasConstantValue: true,
			ConstantValue:    types.MakeType(ct.id),
			CodegenIndex:     -1,
		})
	}
}

func (c *Checker) checkStmt(s ast.Stmt, scope *ast.Scope) {
	switch s := s.(type) {
	case *ast.Decl:
		c.checkDecl(s)
	case *ast.Block:
		child := s.Scope()
		for _, st := range s.Stmts {
			c.checkStmt(st, child)
		}
	case *ast.ExprStmt:
		c.checkExpr(s.X, scope)
	case *ast.Print:
		c.checkExpr(s.X, scope)
	case *ast.Return:
		c.checkReturn(s, scope)
	case *ast.If:
		c.checkExpr(s.Cond, scope)
		if s.Cond.Header().PType != types.BoolID {
			c.errs.Add(s.Cond.Pos(), "if condition must be bool")
		}
		c.checkStmt(s.Then, scope)
		if s.Else != nil {
			c.checkStmt(s.Else, scope)
		}
	case *ast.While:
		c.checkExpr(s.Cond, scope)
		if s.Cond.Header().PType != types.BoolID {
			c.errs.Add(s.Cond.Pos(), "while condition must be bool")
		}
		c.checkStmt(s.Body, scope)
	case *ast.BadStmt:
		// nothing to check
	}
}

func (c *Checker) checkReturn(r *ast.Return, scope *ast.Scope) {
	want := types.VoidID
	if n := len(c.funcRetStack); n > 0 {
		want = c.funcRetStack[n-1]
	}
	if r.X == nil {
		if want != types.VoidID {
			c.errs.Add(r.At, "missing return value")
		}
		return
	}
	c.checkExpr(r.X, scope)
	if want == types.VoidID {
		c.errs.Add(r.At, "void function cannot return a value")
		return
	}
	if !c.reg.Equal(want, r.X.Header().PType) {
		if coerced, ok := c.coerce(r.X, want); ok {
			r.X = coerced
		} else {
			c.errs.Add(r.At, "returned value of type %q does not match declared return type %q",
				c.reg.Get(r.X.Header().PType).Name, c.reg.Get(want).Name)
		}
	}
}

// checkDecl resolves a single declaration's entity, recursing lazily into
// whatever not-yet-resolved entities its type annotation or initializer
// reference. It is idempotent: a Resolved entity returns immediately, so
// forward references and direct calls from checkStmt both converge on the
// same work.
func (c *Checker) checkDecl(d *ast.Decl) {
	ent := d.Entity
	switch ent.Status {
	case ast.Resolved:
		return
	case ast.InProgress:
		c.errs.Add(d.At, "circular dependency in declaration of %q", d.Name)
		ent.Status = ast.Resolved
		ent.Type = types.InvalidID
		return
	}
	ent.Status = ast.InProgress
	scope := ent.OwnerScope

	if st, ok := d.Value.(*ast.StructTypeExpr); ok && d.IsConst {
		id := c.checkStructType(st, scope, d.Name)
		ent.Type = types.TypeID
		ent.HasConstantValue = true
		ent.ConstantValue = types.MakeType(id)
		ent.Status = ast.Resolved
		return
	}

	declaredType := -1
	if d.Type != nil {
		c.checkExpr(d.Type, scope)
		th := d.Type.Header()
		if th.IsConstant && th.PType == types.TypeID {
			declaredType = th.ConstantValue.Type
		} else {
			c.errs.Add(d.Type.Pos(), "expected a type")
			declaredType = types.InvalidID
		}
	}

	if fl, ok := d.Value.(*ast.FuncLit); ok {
		c.checkFuncLitDecl(d, fl, ent, scope, declaredType)
		return
	}

	if d.Value != nil {
		c.checkExpr(d.Value, scope)
		valType := d.Value.Header().PType
		if declaredType == -1 {
			declaredType = valType
		} else if !c.reg.Equal(declaredType, valType) {
			if coerced, ok := c.coerce(d.Value, declaredType); ok {
				d.Value = coerced
			} else {
				c.errs.Add(d.Value.Pos(), "cannot assign value of type %q to %q of declared type %q",
					c.reg.Get(valType).Name, d.Name, c.reg.Get(declaredType).Name)
			}
		}
		if d.IsConst {
			vh := d.Value.Header()
			if !vh.IsConstant {
				c.errs.Add(d.Value.Pos(), "initializer of constant %q is not a compile-time constant", d.Name)
			} else {
				ent.HasConstantValue = true
				ent.ConstantValue = vh.ConstantValue
			}
		}
	} else if declaredType == -1 {
		c.errs.Add(d.At, "declaration of %q needs a type or an initializer", d.Name)
		declaredType = types.InvalidID
	}

	ent.Type = declaredType
	ent.Status = ast.Resolved
	if !d.IsConst {
		ent.IsLive = true
	}
}

// checkFuncLitDecl handles a declaration whose value is a function literal.
// The signature is checked, and the entity's Type assigned, before the body
// is checked, so a recursive call inside the body resolves against an
// already-known type instead of tripping the circular-dependency check.
func (c *Checker) checkFuncLitDecl(d *ast.Decl, fl *ast.FuncLit, ent *ast.Entity, scope *ast.Scope, declaredType int) {
	c.checkFuncTypeExpr(fl.Sig, scope)
	sigType := fl.Sig.Header().ConstantValue.Type
	ent.Type = sigType

	fl.Header().PType = sigType
	if d.IsConst {
		ent.HasConstantValue = true
		ent.ConstantValue = types.MakeFunc(-1)
		fl.Header().IsConstant = true
		fl.Header().ConstantValue = ent.ConstantValue
	}

	fnScope := fl.Sig.Scope()
	retID := c.reg.Get(sigType).Return
	c.funcRetStack = append(c.funcRetStack, retID)
	for _, s := range fl.Body.Stmts {
		c.checkStmt(s, fnScope)
	}
	c.funcRetStack = c.funcRetStack[:len(c.funcRetStack)-1]
	fl.Body.SetScope(fnScope)

	if declaredType != -1 && !c.reg.Equal(declaredType, sigType) {
		c.errs.Add(d.At, "declared type of %q does not match its function literal", d.Name)
	}

	ent.Status = ast.Resolved
	if !d.IsConst {
		ent.IsLive = true
	}
}

// checkStructType type-checks a struct type's fields, interns the nominal
// struct type under name, and fills in the StructTypeExpr's header as a
// constant value of type `type`.
func (c *Checker) checkStructType(st *ast.StructTypeExpr, scope *ast.Scope, name string) int {
	dataScope := st.Scope()
	var members []types.Member
	offset := 0
	for _, f := range st.Fields {
		c.checkExpr(f.Type, scope)
		fh := f.Type.Header()
		ft := types.InvalidID
		if fh.IsConstant && fh.PType == types.TypeID {
			ft = fh.ConstantValue.Type
		} else {
			c.errs.Add(f.Type.Pos(), "expected a type for field %q", f.Name)
		}
		if dataScope != nil {
			if fent, ok := dataScope.Local(f.Name); ok {
				fent.Type = ft
				fent.Status = ast.Resolved
			}
		}
		members = append(members, types.Member{Name: f.Name, Type: ft, Offset: offset})
		offset += c.reg.Get(ft).Size
	}
	id := c.reg.DeclareStruct(name, members)
	st.Header().PType = types.TypeID
	st.Header().IsConstant = true
	st.Header().ConstantValue = types.MakeType(id)
	return id
}

// checkFuncTypeExpr type-checks a function-type signature (`func (T1, T2)
// -> R`), used both for a bare function-type annotation and for a function
// literal's signature, interning the function type and assigning each
// parameter's Entity its resolved type.
func (c *Checker) checkFuncTypeExpr(ft *ast.FuncTypeExpr, scope *ast.Scope) {
	fnScope := ft.Scope()
	paramTypes := make([]int, 0, len(ft.Params))
	for _, p := range ft.Params {
		c.checkExpr(p.Type, scope)
		th := p.Type.Header()
		pt := types.InvalidID
		if th.IsConstant && th.PType == types.TypeID {
			pt = th.ConstantValue.Type
		} else {
			c.errs.Add(p.Type.Pos(), "expected a type for parameter %q", p.Name)
		}
		paramTypes = append(paramTypes, pt)
		if fnScope != nil {
			if ent, ok := fnScope.Local(p.Name); ok {
				ent.Type = pt
				ent.Status = ast.Resolved
			}
		}
	}

	retID := types.VoidID
	if ft.Ret != nil {
		c.checkExpr(ft.Ret, scope)
		rh := ft.Ret.Header()
		if rh.IsConstant && rh.PType == types.TypeID {
			retID = rh.ConstantValue.Type
		} else {
			c.errs.Add(ft.Ret.Pos(), "expected a type for return type")
		}
	}

	id := c.reg.FunctionType(paramTypes, retID)
	ft.Header().PType = types.TypeID
	ft.Header().IsConstant = true
	ft.Header().ConstantValue = types.MakeType(id)
}
