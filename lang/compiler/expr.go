package compiler

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/token"
	"github.com/mna/toylang/lang/types"
)

// genExpr lowers one expression, leaving its value on top of the stack.
// Anything the checker folded to a constant is loaded straight from the
// constant table - except a function-valued constant, whose Header was
// snapshotted from its Entity's placeholder value before codegen's prealloc
// pass fixed up the real constant-table index (see genIdent and
// assignFuncConstants in compiler.go); those always fall through to
// genIdent so they re-resolve through the now-correct Entity instead.
func (g *Generator) genExpr(em *emitter, e ast.Expr) {
	h := e.Header()
	if h.IsConstant && h.ConstantValue.Tag != types.FuncValue {
		ci := g.internConstant(h.ConstantValue)
		em.setLine(e.Pos())
		em.emitOp(OpLoadConstant)
		em.emitU8(ci)
		return
	}

	switch e := e.(type) {
	case *ast.Ident:
		g.genIdent(em, e)
	case *ast.Grouping:
		g.genExpr(em, e.Inner)
	case *ast.Unary:
		g.genUnary(em, e)
	case *ast.Dereference:
		g.genDereference(em, e)
	case *ast.Binary:
		g.genBinary(em, e)
	case *ast.Cast:
		g.genCast(em, e)
	case *ast.Assignment:
		g.genAssignment(em, e)
	case *ast.Call:
		g.genCall(em, e)
	case *ast.Selector:
		g.genSelector(em, e)
	case *ast.Index:
		g.genIndex(em, e)
	case *ast.StructLit:
		g.genStructLit(em, e)
	case *ast.ArrayLit:
		g.genArrayLit(em, e)
	default:
		panic("genExpr: node has no value-position lowering")
	}
}

// isBoxed reports whether ent's declared local is heap-boxed: a scalar
// variable ever referenced through `&` (struct- and array-typed locals are
// already heap-resident, so boxing them would be redundant).
func (g *Generator) isBoxed(ent *ast.Entity) bool {
	if !ent.IsAddressed {
		return false
	}
	info := g.reg.Get(ent.Type)
	return info.Tag != types.Struct && info.Tag != types.Array
}

// tagOf maps a Registry type id to the ValueTag its runtime values carry.
func (g *Generator) tagOf(typeID int) types.ValueTag {
	switch g.reg.Get(typeID).Tag {
	case types.I32:
		return types.I32Value
	case types.F32:
		return types.F32Value
	case types.Bool:
		return types.BoolValue
	case types.TypeType:
		return types.TypeValue
	case types.Function:
		return types.FuncValue
	case types.Pointer, types.Struct, types.Array:
		return types.HeapValue
	default:
		return types.NilValue
	}
}

// genIdent loads a variable's current value, or, for a function-valued
// constant, its constant-table entry looked up through the Entity rather
// than any stale Header snapshot (see genExpr).
func (g *Generator) genIdent(em *emitter, id *ast.Ident) {
	ent := id.Entity
	em.setLine(id.At)

	if ent.HasConstantValue && ent.ConstantValue.Tag == types.FuncValue {
		em.emitOp(OpLoadConstant)
		em.emitU8(ent.CodegenIndex)
		return
	}

	slot, ok := em.resolve(id.Name)
	if !ok {
		panic("genIdent: unresolved local " + id.Name)
	}
	em.emitOp(OpGetLocal)
	em.emitU8(slot)
	if g.isBoxed(ent) {
		info := g.reg.Get(ent.Type)
		em.emitOp(OpGetField)
		em.emitU32(0)
		em.emitU32(uint32(info.Size))
		em.emitU8(int(g.tagOf(ent.Type)))
	}
}

func (g *Generator) genUnary(em *emitter, u *ast.Unary) {
	switch u.Op {
	case token.MINUS:
		g.genExpr(em, u.Right)
		em.setLine(u.At)
		em.emitOp(OpNegate)
		em.emitU8(int(g.tagOf(u.Right.Header().PType)))
	case token.BANG:
		g.genExpr(em, u.Right)
		em.setLine(u.At)
		em.emitOp(OpNot)
		em.emitU8(int(g.tagOf(u.Right.Header().PType)))
	case token.AMP:
		g.genAddressOf(em, u.Right)
	default:
		// CARET in prefix position is type-position only (pointer-type-of);
		// the checker never lets it reach codegen as a value expression.
		panic("genUnary: unexpected operator in value position")
	}
}

// genAddressOf lowers `&operand`. A bare variable's own value already is
// its address (a box pointer for a boxed scalar, the struct/array's own
// heap offset otherwise). A struct- or array-typed field is likewise
// already reference-like, so taking its address is the same code as
// reading it; a scalar field needs the dedicated OpFieldAddr, since its
// value is not itself a pointer.
func (g *Generator) genAddressOf(em *emitter, operand ast.Expr) {
	switch o := operand.(type) {
	case *ast.Ident:
		slot, ok := em.resolve(o.Name)
		if !ok {
			panic("genAddressOf: unresolved local " + o.Name)
		}
		em.setLine(o.At)
		em.emitOp(OpGetLocal)
		em.emitU8(slot)
	case *ast.Selector:
		info := g.reg.Get(o.Left.Header().PType)
		ft := fieldType(info, o.Name)
		fieldInfo := g.reg.Get(ft)
		if fieldInfo.Tag == types.Struct || fieldInfo.Tag == types.Array {
			g.genSelector(em, o)
			return
		}
		g.genExpr(em, o.Left)
		off := fieldOffset(info, o.Name)
		em.setLine(o.At)
		em.emitOp(OpFieldAddr)
		em.emitU32(uint32(off))
	default:
		panic("genAddressOf: unsupported operand")
	}
}

// genDereference lowers `e^`: a dereference is always a GetField (or
// GetFieldStruct, for a struct/array pointee) at offset 0 of the pointee's
// own size, read through the pointer value itself as the base.
func (g *Generator) genDereference(em *emitter, d *ast.Dereference) {
	g.genExpr(em, d.Left)
	info := g.reg.Get(d.Header().PType)
	em.setLine(d.At)
	if info.Tag == types.Struct || info.Tag == types.Array {
		em.emitOp(OpGetFieldStruct)
		em.emitU32(0)
		em.emitU32(uint32(info.Size))
		return
	}
	em.emitOp(OpGetField)
	em.emitU32(0)
	em.emitU32(uint32(info.Size))
	em.emitU8(int(g.tagOf(d.Header().PType)))
}

func (g *Generator) genBinary(em *emitter, b *ast.Binary) {
	switch b.Op {
	case token.AND:
		g.genShortCircuit(em, b, OpJmpIfFalse)
	case token.OR:
		g.genShortCircuit(em, b, OpJmpIfTrue)
	default:
		g.genExpr(em, b.Left)
		g.genExpr(em, b.Right)
		em.setLine(b.At)
		em.emitOp(binaryOp(b.Op))
		em.emitU8(int(g.tagOf(b.Left.Header().PType)))
	}
}

// genShortCircuit lowers `&&`/`||`. Unlike if/while, the untaken path must
// not Pop: the left operand's own value is the expression's result when it
// alone determines the outcome.
func (g *Generator) genShortCircuit(em *emitter, b *ast.Binary, op Opcode) {
	g.genExpr(em, b.Left)
	em.setLine(b.At)
	em.emitOp(op)
	toEnd := em.emitI16Placeholder()
	em.emitOp(OpPop)
	g.genExpr(em, b.Right)
	em.patchJump(toEnd)
}

func binaryOp(op token.Token) Opcode {
	switch op {
	case token.PLUS:
		return OpAdd
	case token.MINUS:
		return OpSubtract
	case token.STAR:
		return OpMultiply
	case token.SLASH:
		return OpDivide
	case token.GT:
		return OpGreater
	case token.LT:
		return OpLess
	case token.GE:
		return OpGreaterEqual
	case token.LE:
		return OpLessEqual
	case token.EQL:
		return OpEqual
	case token.NEQ:
		return OpNotEqual
	default:
		panic("binaryOp: unexpected operator")
	}
}

// genCast lowers an explicit or checker-synthesized numeric cast. The type
// operand is compile-time only; only the value being converted runs.
func (g *Generator) genCast(em *emitter, c *ast.Cast) {
	g.genExpr(em, c.Target)
	em.setLine(c.Pos())
	em.emitOp(OpCast)
	em.emitU8(int(g.tagOf(c.Target.Header().PType)))
	em.emitU8(int(g.tagOf(c.Header().PType)))
}

func (g *Generator) genAssignment(em *emitter, a *ast.Assignment) {
	switch l := a.Left.(type) {
	case *ast.Ident:
		g.genIdentAssign(em, l, a.Right)
	case *ast.Selector:
		g.genSelectorAssign(em, l, a.Right)
	case *ast.Dereference:
		g.genDereferenceAssign(em, l, a.Right)
	default:
		panic("genAssignment: invalid assignment target")
	}
}

func (g *Generator) genIdentAssign(em *emitter, id *ast.Ident, rhs ast.Expr) {
	ent := id.Entity
	slot, ok := em.resolve(id.Name)
	if !ok {
		panic("genIdentAssign: unresolved local " + id.Name)
	}
	info := g.reg.Get(ent.Type)

	switch {
	case g.isBoxed(ent):
		em.setLine(id.At)
		em.emitOp(OpGetLocal)
		em.emitU8(slot)
		g.genExpr(em, rhs)
		em.emitOp(OpSetField)
		em.emitU32(0)
		em.emitU32(uint32(info.Size))
	case info.Tag == types.Struct || info.Tag == types.Array:
		// The local's slot value is the struct/array's own heap offset;
		// whole-value assignment copies into that same storage so any other
		// reference sharing the offset observes the update.
		em.setLine(id.At)
		em.emitOp(OpGetLocal)
		em.emitU8(slot)
		g.genExpr(em, rhs)
		em.emitOp(OpSetFieldStruct)
		em.emitU32(0)
		em.emitU32(uint32(info.Size))
	default:
		g.genExpr(em, rhs)
		em.setLine(id.At)
		em.emitOp(OpSetLocal)
		em.emitU8(slot)
	}
}

func (g *Generator) genSelectorAssign(em *emitter, l *ast.Selector, rhs ast.Expr) {
	g.genExpr(em, l.Left)
	info := g.reg.Get(l.Left.Header().PType)
	off := fieldOffset(info, l.Name)
	ft := fieldType(info, l.Name)
	fieldInfo := g.reg.Get(ft)

	em.setLine(l.At)
	g.genExpr(em, rhs)
	if fieldInfo.Tag == types.Struct || fieldInfo.Tag == types.Array {
		em.emitOp(OpSetFieldStruct)
	} else {
		em.emitOp(OpSetField)
	}
	em.emitU32(uint32(off))
	em.emitU32(uint32(fieldInfo.Size))
}

func (g *Generator) genDereferenceAssign(em *emitter, l *ast.Dereference, rhs ast.Expr) {
	g.genExpr(em, l.Left)
	info := g.reg.Get(l.Header().PType)

	em.setLine(l.At)
	g.genExpr(em, rhs)
	if info.Tag == types.Struct || info.Tag == types.Array {
		em.emitOp(OpSetFieldStruct)
	} else {
		em.emitOp(OpSetField)
	}
	em.emitU32(0)
	em.emitU32(uint32(info.Size))
}

func (g *Generator) genCall(em *emitter, call *ast.Call) {
	g.genExpr(em, call.Fn)
	for _, a := range call.Args {
		g.genExpr(em, a)
	}
	em.setLine(call.Lparen)
	em.emitOp(OpCall)
	em.emitU8(len(call.Args))
}

func (g *Generator) genSelector(em *emitter, sel *ast.Selector) {
	g.genExpr(em, sel.Left)
	info := g.reg.Get(sel.Left.Header().PType)
	off := fieldOffset(info, sel.Name)
	ft := fieldType(info, sel.Name)
	fieldInfo := g.reg.Get(ft)

	em.setLine(sel.At)
	if fieldInfo.Tag == types.Struct || fieldInfo.Tag == types.Array {
		em.emitOp(OpGetFieldStruct)
		em.emitU32(uint32(off))
		em.emitU32(uint32(fieldInfo.Size))
		return
	}
	em.emitOp(OpGetField)
	em.emitU32(uint32(off))
	em.emitU32(uint32(fieldInfo.Size))
	em.emitU8(int(g.tagOf(ft)))
}

func (g *Generator) genIndex(em *emitter, idx *ast.Index) {
	g.genExpr(em, idx.Left)
	g.genExpr(em, idx.Idx)
	info := g.reg.Get(idx.Left.Header().PType)
	elemInfo := g.reg.Get(info.Elem)

	em.setLine(idx.Lbrack)
	if elemInfo.Tag == types.Struct || elemInfo.Tag == types.Array {
		em.emitOp(OpGetIndexStruct)
		em.emitU32(uint32(elemInfo.Size))
		return
	}
	em.emitOp(OpGetIndex)
	em.emitU32(uint32(elemInfo.Size))
	em.emitU8(int(g.tagOf(info.Elem)))
}

// genStructLit allocates a fresh struct and populates every member in
// declaration order, regardless of whether the literal used positional or
// designated form - both were already reconciled against that order by the
// checker.
func (g *Generator) genStructLit(em *emitter, sl *ast.StructLit) {
	info := g.reg.Get(sl.Header().PType)
	em.setLine(sl.Lbrace)
	em.emitOp(OpStructAlloc)
	em.emitU32(uint32(info.Size))

	values := make([]ast.Expr, len(info.Members))
	if len(sl.Designated) > 0 {
		for _, fi := range sl.Designated {
			for i, m := range info.Members {
				if m.Name == fi.Name {
					values[i] = fi.Value
					break
				}
			}
		}
	} else {
		for i, v := range sl.Positional {
			if i < len(values) {
				values[i] = v
			}
		}
	}

	for i, m := range info.Members {
		v := values[i]
		if v == nil {
			continue // checker already reported the missing field
		}
		memberInfo := g.reg.Get(m.Type)
		em.emitOp(OpDup)
		g.genExpr(em, v)
		if memberInfo.Tag == types.Struct || memberInfo.Tag == types.Array {
			em.emitOp(OpSetFieldStruct)
		} else {
			em.emitOp(OpSetField)
		}
		em.emitU32(uint32(m.Offset))
		em.emitU32(uint32(memberInfo.Size))
		em.emitOp(OpPop)
	}
}

// genArrayLit allocates a fresh array and populates every element in
// order. Each element's store peeks its value per the usual Set* rule, so
// a trailing Pop discards the copy, leaving the array's own base offset -
// duplicated once per element via OpDup - to feed the next iteration.
func (g *Generator) genArrayLit(em *emitter, al *ast.ArrayLit) {
	info := g.reg.Get(al.Header().PType)
	elemInfo := g.reg.Get(info.Elem)

	em.setLine(al.Lbrack)
	em.emitOp(OpStructAlloc)
	em.emitU32(uint32(info.Size))

	for i, el := range al.Elems {
		em.emitOp(OpDup)
		ci := g.internConstant(types.MakeI32(int32(i)))
		em.emitOp(OpLoadConstant)
		em.emitU8(ci)
		g.genExpr(em, el)
		if elemInfo.Tag == types.Struct || elemInfo.Tag == types.Array {
			em.emitOp(OpSetIndexStruct)
		} else {
			em.emitOp(OpSetIndex)
		}
		em.emitU32(uint32(elemInfo.Size))
		em.emitOp(OpPop)
	}
}

func fieldOffset(info *types.Info, name string) int {
	for _, m := range info.Members {
		if m.Name == name {
			return m.Offset
		}
	}
	panic("fieldOffset: unknown field " + name)
}

func fieldType(info *types.Info, name string) int {
	for _, m := range info.Members {
		if m.Name == name {
			return m.Type
		}
	}
	panic("fieldType: unknown field " + name)
}
