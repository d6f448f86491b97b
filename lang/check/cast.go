package check

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/types"
)

// isImplicitlyCastable reports whether a value of type from may be
// implicitly widened to to. The only implicit conversion in the language is
// i32 -> f32.
func isImplicitlyCastable(from, to int) bool {
	return from == types.I32ID && to == types.F32ID
}

// coerce returns e, possibly wrapped in a synthesized implicit Cast node, so
// that its type equals to. ok is false (and e is returned unchanged) when no
// implicit conversion applies.
func (c *Checker) coerce(e ast.Expr, to int) (ast.Expr, bool) {
	h := e.Header()
	if c.reg.Equal(h.PType, to) {
		return e, true
	}
	if !isImplicitlyCastable(h.PType, to) {
		return e, false
	}
	cast := &ast.Cast{Target: e, Implicit: true}
	ch := cast.Header()
	ch.PType = to
	if h.IsConstant {
		ch.IsConstant = true
		ch.ConstantValue = foldCastValue(h.ConstantValue, to)
	}
	return cast, true
}

func isCastableBaseType(t int) bool {
	return t == types.I32ID || t == types.F32ID || t == types.BoolID
}

// checkExplicitCast type-checks `as(T) e`.
func (c *Checker) checkExplicitCast(cst *ast.Cast, scope *ast.Scope) {
	c.checkExpr(cst.Type, scope)
	c.checkExpr(cst.Target, scope)

	th := cst.Type.Header()
	toT := types.InvalidID
	if th.IsConstant && th.PType == types.TypeID {
		toT = th.ConstantValue.Type
	} else {
		c.errs.Add(cst.Type.Pos(), "expected a type in cast")
	}

	fromT := cst.Target.Header().PType
	switch {
	case !isCastableBaseType(fromT) || !isCastableBaseType(toT):
		c.errs.Add(cst.As, "invalid cast from %q to %q", c.reg.Get(fromT).Name, c.reg.Get(toT).Name)
	case fromT == toT:
		c.errs.Add(cst.As, "pointless cast: %q to itself", c.reg.Get(fromT).Name)
	}

	cst.Header().PType = toT
	targetH := cst.Target.Header()
	if targetH.IsConstant {
		cst.Header().IsConstant = true
		cst.Header().ConstantValue = foldCastValue(targetH.ConstantValue, toT)
	}
}
