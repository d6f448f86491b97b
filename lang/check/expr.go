package check

import (
	"strconv"

	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/token"
	"github.com/mna/toylang/lang/types"
)

func (c *Checker) checkExpr(e ast.Expr, scope *ast.Scope) {
	switch e := e.(type) {
	case *ast.BadExpr:
		e.Header().PType = types.InvalidID
	case *ast.Literal:
		c.checkLiteral(e)
	case *ast.Ident:
		c.checkIdent(e, scope)
	case *ast.Grouping:
		c.checkExpr(e.Inner, scope)
		*e.Header() = *e.Inner.Header()
	case *ast.Unary:
		c.checkUnary(e, scope)
	case *ast.Dereference:
		c.checkDereference(e, scope)
	case *ast.Binary:
		c.checkBinary(e, scope)
	case *ast.Cast:
		c.checkExplicitCast(e, scope)
	case *ast.Assignment:
		c.checkAssignment(e, scope)
	case *ast.Call:
		c.checkCall(e, scope)
	case *ast.Selector:
		c.checkSelector(e, scope)
	case *ast.Index:
		c.checkIndex(e, scope)
	case *ast.ArrayTypeExpr:
		c.checkArrayType(e, scope)
	case *ast.FuncTypeExpr:
		c.checkFuncTypeExpr(e, scope)
	case *ast.FuncLit:
		// Reached only for a function literal outside of declaration
		// position (e.g. passed directly as a call argument); declaration
		// position goes through checkFuncLitDecl instead, which can assign
		// the enclosing Entity its type before the body is checked. Only
		// declaration position is compilable: a literal here has no entity
		// to bind a callable constant to, so it is rejected - its signature
		// and body are still checked for further diagnostics.
		c.errs.Add(e.Pos(), "a function literal is only allowed as a declaration's initializer")
		c.checkFuncTypeExpr(e.Sig, scope)
		sigType := e.Sig.Header().ConstantValue.Type
		e.Header().PType = sigType
		fnScope := e.Sig.Scope()
		retID := c.reg.Get(sigType).Return
		c.funcRetStack = append(c.funcRetStack, retID)
		for _, s := range e.Body.Stmts {
			c.checkStmt(s, fnScope)
		}
		c.funcRetStack = c.funcRetStack[:len(c.funcRetStack)-1]
		e.Body.SetScope(fnScope)
	case *ast.StructTypeExpr:
		c.checkStructType(e, scope, "")
	case *ast.StructLit:
		c.checkStructLit(e, scope)
	case *ast.ArrayLit:
		c.checkArrayLit(e, scope)
	}
}

func (c *Checker) checkLiteral(l *ast.Literal) {
	h := l.Header()
	h.IsConstant = true
	switch l.Tok {
	case token.INT:
		v, err := strconv.ParseInt(l.Raw, 10, 32)
		if err != nil {
			c.errs.Add(l.At, "invalid integer literal %q", l.Raw)
		}
		h.PType = types.I32ID
		h.ConstantValue = types.MakeI32(int32(v))
	case token.FLOAT:
		v, err := strconv.ParseFloat(l.Raw, 32)
		if err != nil {
			c.errs.Add(l.At, "invalid float literal %q", l.Raw)
		}
		h.PType = types.F32ID
		h.ConstantValue = types.MakeF32(float32(v))
	case token.TRUE:
		h.PType = types.BoolID
		h.ConstantValue = types.MakeBool(true)
	case token.FALSE:
		h.PType = types.BoolID
		h.ConstantValue = types.MakeBool(false)
	}
}

func (c *Checker) checkIdent(id *ast.Ident, scope *ast.Scope) {
	ent, ok := scope.Lookup(id.Name)
	if !ok {
		c.errs.Add(id.At, "undeclared identifier %q", id.Name)
		id.Header().PType = types.InvalidID
		return
	}

	switch ent.Status {
	case ast.Unresolved:
		if d, ok := ent.Decl.(*ast.Decl); ok {
			c.checkDecl(d)
		}
	case ast.InProgress:
		if ent.Type < 0 {
			c.errs.Add(id.At, "circular dependency involving %q", id.Name)
			id.Header().PType = types.InvalidID
			return
		}
		// Otherwise this is a function entity recursing into itself: its
		// signature type is already known, so using it here is fine.
	}

	if ent.Kind == ast.VariableEntity && !ent.IsLive {
		c.errs.Add(id.At, "%q is used before its declaration", id.Name)
	}

	// a variable reference must not cross a function boundary: a body sees
	// its own locals and parameters, never an enclosing scope's variables
	// (constants are fine, they resolve through the constant table).
	if ent.Kind == ast.VariableEntity {
		for sc := scope; sc != nil && sc != ent.OwnerScope; sc = sc.Parent {
			if sc.Kind == ast.FunctionScope {
				c.errs.Add(id.At, "%q is declared outside this function and cannot be referenced here", id.Name)
				break
			}
		}
	}

	id.Entity = ent
	h := id.Header()
	if ent.Type < 0 {
		h.PType = types.InvalidID
	} else {
		h.PType = ent.Type
	}
	if ent.HasConstantValue {
		h.IsConstant = true
		h.ConstantValue = ent.ConstantValue
	}
}

func (c *Checker) isAddressable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Entity != nil && e.Entity.Kind == ast.VariableEntity
	case *ast.Selector:
		return true
	default:
		return false
	}
}

func (c *Checker) checkUnary(u *ast.Unary, scope *ast.Scope) {
	switch u.Op {
	case token.MINUS:
		c.checkExpr(u.Right, scope)
		rh := u.Right.Header()
		if rh.PType != types.I32ID && rh.PType != types.F32ID {
			c.errs.Add(u.At, "unary '-' requires a numeric operand")
			u.Header().PType = types.InvalidID
			return
		}
		u.Header().PType = rh.PType
		if rh.IsConstant {
			u.Header().IsConstant = true
			u.Header().ConstantValue = foldNeg(rh.ConstantValue)
		}
	case token.BANG:
		c.checkExpr(u.Right, scope)
		rh := u.Right.Header()
		if rh.PType != types.BoolID {
			c.errs.Add(u.At, "unary '!' requires a bool operand")
			u.Header().PType = types.InvalidID
			return
		}
		u.Header().PType = types.BoolID
		if rh.IsConstant {
			u.Header().IsConstant = true
			u.Header().ConstantValue = foldNot(rh.ConstantValue)
		}
	case token.AMP:
		c.checkExpr(u.Right, scope)
		if !c.isAddressable(u.Right) {
			c.errs.Add(u.At, "cannot take the address of this expression")
			u.Header().PType = types.InvalidID
			return
		}
		if id, ok := u.Right.(*ast.Ident); ok && id.Entity != nil && id.Entity.Kind == ast.VariableEntity {
			id.Entity.IsAddressed = true
		}
		rh := u.Right.Header()
		u.Header().PType = c.reg.PointerType(rh.PType)
	case token.CARET:
		// Prefix '^' in type position: pointer-type-of.
		c.checkExpr(u.Right, scope)
		rh := u.Right.Header()
		if !(rh.IsConstant && rh.PType == types.TypeID) {
			c.errs.Add(u.At, "expected a type after '^'")
			u.Header().PType = types.InvalidID
			return
		}
		id := c.reg.PointerType(rh.ConstantValue.Type)
		u.Header().PType = types.TypeID
		u.Header().IsConstant = true
		u.Header().ConstantValue = types.MakeType(id)
	}
}

func (c *Checker) checkDereference(d *ast.Dereference, scope *ast.Scope) {
	c.checkExpr(d.Left, scope)
	info := c.reg.Get(d.Left.Header().PType)
	if info.Tag != types.Pointer {
		c.errs.Add(d.At, "'^' requires a pointer operand")
		d.Header().PType = types.InvalidID
		return
	}
	d.Header().PType = info.Pointee
}

func isNumeric(t int) bool {
	return t == types.I32ID || t == types.F32ID
}

// reconcileNumeric implicitly widens whichever of l, r is i32 when the
// other is f32, applying the same rule across every numeric binary
// operator rather than special-casing one operand pair.
func (c *Checker) reconcileNumeric(l, r ast.Expr) (ast.Expr, ast.Expr, bool) {
	lt, rt := l.Header().PType, r.Header().PType
	if lt == rt {
		return l, r, true
	}
	if lt == types.I32ID && rt == types.F32ID {
		nl, ok := c.coerce(l, types.F32ID)
		return nl, r, ok
	}
	if rt == types.I32ID && lt == types.F32ID {
		nr, ok := c.coerce(r, types.F32ID)
		return l, nr, ok
	}
	return l, r, false
}

func (c *Checker) checkBinary(b *ast.Binary, scope *ast.Scope) {
	c.checkExpr(b.Left, scope)
	c.checkExpr(b.Right, scope)
	lh, rh := b.Left.Header(), b.Right.Header()

	switch b.Op {
	case token.AND, token.OR:
		if lh.PType != types.BoolID || rh.PType != types.BoolID {
			c.errs.Add(b.At, "'%s' requires bool operands", b.Op.GoString())
			b.Header().PType = types.InvalidID
			return
		}
		b.Header().PType = types.BoolID
		if lh.IsConstant && rh.IsConstant {
			var v bool
			if b.Op == token.AND {
				v = lh.ConstantValue.Bool && rh.ConstantValue.Bool
			} else {
				v = lh.ConstantValue.Bool || rh.ConstantValue.Bool
			}
			b.Header().IsConstant = true
			b.Header().ConstantValue = types.MakeBool(v)
		}

	case token.EQL, token.NEQ:
		if isNumeric(lh.PType) && isNumeric(rh.PType) {
			l2, r2, ok := c.reconcileNumeric(b.Left, b.Right)
			if !ok {
				c.errs.Add(b.At, "mismatched operand types for '%s'", b.Op.GoString())
				b.Header().PType = types.InvalidID
				return
			}
			b.Left, b.Right = l2, r2
		} else if !c.reg.Equal(lh.PType, rh.PType) {
			c.errs.Add(b.At, "mismatched operand types for '%s'", b.Op.GoString())
			b.Header().PType = types.InvalidID
			return
		}
		b.Header().PType = types.BoolID
		lh2, rh2 := b.Left.Header(), b.Right.Header()
		if lh2.IsConstant && rh2.IsConstant {
			eq := lh2.ConstantValue.Equal(rh2.ConstantValue)
			if b.Op == token.NEQ {
				eq = !eq
			}
			b.Header().IsConstant = true
			b.Header().ConstantValue = types.MakeBool(eq)
		}

	case token.LT, token.LE, token.GT, token.GE:
		if !isNumeric(lh.PType) || !isNumeric(rh.PType) {
			c.errs.Add(b.At, "comparison requires numeric operands")
			b.Header().PType = types.InvalidID
			return
		}
		l2, r2, ok := c.reconcileNumeric(b.Left, b.Right)
		if !ok {
			c.errs.Add(b.At, "mismatched operand types for '%s'", b.Op.GoString())
			b.Header().PType = types.InvalidID
			return
		}
		b.Left, b.Right = l2, r2
		b.Header().PType = types.BoolID
		lh2, rh2 := b.Left.Header(), b.Right.Header()
		if lh2.IsConstant && rh2.IsConstant {
			b.Header().IsConstant = true
			b.Header().ConstantValue = types.MakeBool(foldCompare(b.Op, lh2.ConstantValue, rh2.ConstantValue))
		}

	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		if !isNumeric(lh.PType) || !isNumeric(rh.PType) {
			c.errs.Add(b.At, "arithmetic requires numeric operands")
			b.Header().PType = types.InvalidID
			return
		}
		l2, r2, ok := c.reconcileNumeric(b.Left, b.Right)
		if !ok {
			c.errs.Add(b.At, "mismatched operand types for '%s'", b.Op.GoString())
			b.Header().PType = types.InvalidID
			return
		}
		b.Left, b.Right = l2, r2
		resultType := b.Left.Header().PType
		b.Header().PType = resultType
		lh2, rh2 := b.Left.Header(), b.Right.Header()
		if lh2.IsConstant && rh2.IsConstant {
			if v, ok := foldArith(b.Op, lh2.ConstantValue, rh2.ConstantValue, resultType); ok {
				b.Header().IsConstant = true
				b.Header().ConstantValue = v
			}
		}
	}
}

func (c *Checker) checkAssignment(a *ast.Assignment, scope *ast.Scope) {
	c.checkExpr(a.Left, scope)
	switch l := a.Left.(type) {
	case *ast.Ident:
		if l.Entity == nil || l.Entity.Kind != ast.VariableEntity {
			c.errs.Add(a.At, "cannot assign to %q", l.Name)
		}
	case *ast.Selector, *ast.Dereference:
		// valid L-values
	default:
		c.errs.Add(a.At, "invalid assignment target")
	}

	c.checkExpr(a.Right, scope)
	target := a.Left.Header().PType
	if !c.reg.Equal(target, a.Right.Header().PType) {
		if coerced, ok := c.coerce(a.Right, target); ok {
			a.Right = coerced
		} else {
			c.errs.Add(a.At, "cannot assign value of type %q to target of type %q",
				c.reg.Get(a.Right.Header().PType).Name, c.reg.Get(target).Name)
		}
	}
	a.Header().PType = target
}

func (c *Checker) checkCall(call *ast.Call, scope *ast.Scope) {
	c.checkExpr(call.Fn, scope)
	info := c.reg.Get(call.Fn.Header().PType)
	if info.Tag != types.Function {
		c.errs.Add(call.Lparen, "call of non-function value")
		call.Header().PType = types.InvalidID
		return
	}
	if len(call.Args) != len(info.Params) {
		c.errs.Add(call.Lparen, "expected %d argument(s), got %d", len(info.Params), len(call.Args))
	}
	for i, a := range call.Args {
		c.checkExpr(a, scope)
		if i >= len(info.Params) {
			continue
		}
		want := info.Params[i]
		if !c.reg.Equal(want, a.Header().PType) {
			if coerced, ok := c.coerce(a, want); ok {
				call.Args[i] = coerced
			} else {
				c.errs.Add(a.Pos(), "argument %d: cannot use value of type %q as %q",
					i+1, c.reg.Get(a.Header().PType).Name, c.reg.Get(want).Name)
			}
		}
	}
	call.Header().PType = info.Return
}

func (c *Checker) checkSelector(sel *ast.Selector, scope *ast.Scope) {
	c.checkExpr(sel.Left, scope)
	info := c.reg.Get(sel.Left.Header().PType)
	if info.Tag != types.Struct {
		c.errs.Add(sel.At, "'.' requires a struct operand")
		sel.Header().PType = types.InvalidID
		return
	}
	for _, m := range info.Members {
		if m.Name == sel.Name {
			sel.Header().PType = m.Type
			return
		}
	}
	c.errs.Add(sel.At, "struct %q has no field %q", info.Name, sel.Name)
	sel.Header().PType = types.InvalidID
}

func (c *Checker) checkIndex(idx *ast.Index, scope *ast.Scope) {
	c.checkExpr(idx.Left, scope)
	c.checkExpr(idx.Idx, scope)
	info := c.reg.Get(idx.Left.Header().PType)
	if info.Tag != types.Array {
		c.errs.Add(idx.Lbrack, "'[]' requires an array operand")
		idx.Header().PType = types.InvalidID
		return
	}
	if idx.Idx.Header().PType != types.I32ID {
		c.errs.Add(idx.Idx.Pos(), "array index must be i32")
	}
	idx.Header().PType = info.Elem
}

func (c *Checker) checkArrayType(at *ast.ArrayTypeExpr, scope *ast.Scope) {
	c.checkExpr(at.Dim, scope)
	c.checkExpr(at.Elem, scope)

	dimH := at.Dim.Header()
	if !(dimH.IsConstant && dimH.PType == types.I32ID) {
		c.errs.Add(at.Dim.Pos(), "array dimension must be a constant i32")
		at.Header().PType = types.InvalidID
		return
	}
	elemH := at.Elem.Header()
	if !(elemH.IsConstant && elemH.PType == types.TypeID) {
		c.errs.Add(at.Elem.Pos(), "array element must be a type")
		at.Header().PType = types.InvalidID
		return
	}

	dim := int(dimH.ConstantValue.I32)
	id := c.reg.ArrayType(elemH.ConstantValue.Type, dim)
	at.Header().PType = types.TypeID
	at.Header().IsConstant = true
	at.Header().ConstantValue = types.MakeType(id)
}

func (c *Checker) checkStructLit(sl *ast.StructLit, scope *ast.Scope) {
	c.checkExpr(sl.Name, scope)
	nameH := sl.Name.Header()
	if !(nameH.IsConstant && nameH.PType == types.TypeID) {
		c.errs.Add(sl.Lbrace, "expected a struct type name")
		sl.Header().PType = types.InvalidID
		return
	}
	structID := nameH.ConstantValue.Type
	info := c.reg.Get(structID)
	if info.Tag != types.Struct {
		c.errs.Add(sl.Lbrace, "%q is not a struct type", info.Name)
		sl.Header().PType = types.InvalidID
		return
	}

	if len(sl.Positional) > 0 && len(sl.Designated) > 0 {
		c.errs.Add(sl.Lbrace, "cannot mix positional and designated struct literal fields")
	}

	if len(sl.Designated) > 0 {
		seen := make(map[string]bool, len(sl.Designated))
		for _, fi := range sl.Designated {
			c.checkExpr(fi.Value, scope)
			ft := -1
			for _, m := range info.Members {
				if m.Name == fi.Name {
					ft = m.Type
					break
				}
			}
			if ft < 0 {
				c.errs.Add(fi.Dot, "struct %q has no field %q", info.Name, fi.Name)
				continue
			}
			if seen[fi.Name] {
				c.errs.Add(fi.Dot, "duplicate field %q in struct literal", fi.Name)
			}
			seen[fi.Name] = true
			if !c.reg.Equal(ft, fi.Value.Header().PType) {
				if coerced, ok := c.coerce(fi.Value, ft); ok {
					fi.Value = coerced
				} else {
					c.errs.Add(fi.Value.Pos(), "field %q: cannot use value of type %q as %q",
						fi.Name, c.reg.Get(fi.Value.Header().PType).Name, c.reg.Get(ft).Name)
				}
			}
		}
		for _, m := range info.Members {
			if !seen[m.Name] {
				c.errs.Add(sl.Lbrace, "missing field %q in struct literal", m.Name)
			}
		}
	} else {
		if len(sl.Positional) != len(info.Members) {
			c.errs.Add(sl.Lbrace, "expected %d field(s), got %d", len(info.Members), len(sl.Positional))
		}
		for i, v := range sl.Positional {
			c.checkExpr(v, scope)
			if i >= len(info.Members) {
				continue
			}
			want := info.Members[i].Type
			if !c.reg.Equal(want, v.Header().PType) {
				if coerced, ok := c.coerce(v, want); ok {
					sl.Positional[i] = coerced
				} else {
					c.errs.Add(v.Pos(), "field %d: cannot use value of type %q as %q",
						i+1, c.reg.Get(v.Header().PType).Name, c.reg.Get(want).Name)
				}
			}
		}
	}

	sl.Header().PType = structID
}

func (c *Checker) checkArrayLit(al *ast.ArrayLit, scope *ast.Scope) {
	c.checkExpr(al.Type, scope)
	typeH := al.Type.Header()
	if !(typeH.IsConstant && typeH.PType == types.TypeID) {
		c.errs.Add(al.Lbrack, "expected an array type")
		al.Header().PType = types.InvalidID
		return
	}
	arrID := typeH.ConstantValue.Type
	info := c.reg.Get(arrID)
	if info.Tag != types.Array {
		c.errs.Add(al.Lbrack, "%q is not an array type", info.Name)
		al.Header().PType = types.InvalidID
		return
	}

	if len(al.Elems) != info.Dim {
		c.errs.Add(al.Lbrack, "expected %d element(s), got %d", info.Dim, len(al.Elems))
	}
	for i, el := range al.Elems {
		c.checkExpr(el, scope)
		if i >= info.Dim {
			continue
		}
		if !c.reg.Equal(info.Elem, el.Header().PType) {
			if coerced, ok := c.coerce(el, info.Elem); ok {
				al.Elems[i] = coerced
			} else {
				c.errs.Add(el.Pos(), "element %d: cannot use value of type %q as %q",
					i+1, c.reg.Get(el.Header().PType).Name, c.reg.Get(info.Elem).Name)
			}
		}
	}

	al.Header().PType = arrID
}
