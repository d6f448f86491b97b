package check

import (
	"github.com/mna/toylang/lang/token"
	"github.com/mna/toylang/lang/types"
)

// asF32 widens v (i32 or f32) to a float32 for mixed-numeric arithmetic.
func asF32(v types.Value) float32 {
	if v.Tag == types.F32Value {
		return v.F32
	}
	return float32(v.I32)
}

// foldArith computes a constant arithmetic result. The second return value
// is false when the operation cannot be safely folded at compile time
// (division by zero), in which case the caller leaves the node
// non-constant so it traps at runtime instead.
func foldArith(op token.Token, l, r types.Value, resultType int) (types.Value, bool) {
	if resultType == types.F32ID {
		lf, rf := asF32(l), asF32(r)
		switch op {
		case token.PLUS:
			return types.MakeF32(lf + rf), true
		case token.MINUS:
			return types.MakeF32(lf - rf), true
		case token.STAR:
			return types.MakeF32(lf * rf), true
		case token.SLASH:
			if rf == 0 {
				return types.Nil, false
			}
			return types.MakeF32(lf / rf), true
		}
		return types.Nil, false
	}

	li, ri := l.I32, r.I32
	switch op {
	case token.PLUS:
		return types.MakeI32(li + ri), true
	case token.MINUS:
		return types.MakeI32(li - ri), true
	case token.STAR:
		return types.MakeI32(li * ri), true
	case token.SLASH:
		if ri == 0 {
			return types.Nil, false
		}
		return types.MakeI32(li / ri), true
	}
	return types.Nil, false
}

// foldCompare computes a constant numeric comparison, widening either side
// to float if either operand is f32.
func foldCompare(op token.Token, l, r types.Value) bool {
	var lf, rf float64
	if l.Tag == types.F32Value || r.Tag == types.F32Value {
		lf, rf = float64(asF32(l)), float64(asF32(r))
	} else {
		lf, rf = float64(l.I32), float64(r.I32)
	}
	switch op {
	case token.LT:
		return lf < rf
	case token.LE:
		return lf <= rf
	case token.GT:
		return lf > rf
	case token.GE:
		return lf >= rf
	}
	return false
}

// foldNeg computes a constant unary minus.
func foldNeg(v types.Value) types.Value {
	if v.Tag == types.F32Value {
		return types.MakeF32(-v.F32)
	}
	return types.MakeI32(-v.I32)
}

// foldNot computes a constant logical not.
func foldNot(v types.Value) types.Value {
	return types.MakeBool(!v.Bool)
}

// foldCastValue computes a constant explicit or implicit cast among
// {i32, f32, bool}.
func foldCastValue(v types.Value, to int) types.Value {
	switch to {
	case types.I32ID:
		switch v.Tag {
		case types.I32Value:
			return v
		case types.F32Value:
			return types.MakeI32(int32(v.F32))
		case types.BoolValue:
			if v.Bool {
				return types.MakeI32(1)
			}
			return types.MakeI32(0)
		}
	case types.F32ID:
		switch v.Tag {
		case types.F32Value:
			return v
		case types.I32Value:
			return types.MakeF32(float32(v.I32))
		case types.BoolValue:
			if v.Bool {
				return types.MakeF32(1)
			}
			return types.MakeF32(0)
		}
	case types.BoolID:
		switch v.Tag {
		case types.BoolValue:
			return v
		case types.I32Value:
			return types.MakeBool(v.I32 != 0)
		case types.F32Value:
			return types.MakeBool(v.F32 != 0)
		}
	}
	return v
}
