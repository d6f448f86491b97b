package compiler

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/types"
)

// genStmt lowers one statement, emitting into em.
func (g *Generator) genStmt(em *emitter, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Decl:
		g.genDecl(em, s)
	case *ast.Block:
		g.genBlockBody(em, s.Stmts)
	case *ast.ExprStmt:
		em.setLine(s.X.Pos())
		g.genExpr(em, s.X)
		em.emitOp(OpPop)
	case *ast.Print:
		em.setLine(s.At)
		g.genExpr(em, s.X)
		em.emitOp(OpPrint)
		em.emitU8(int(g.tagOf(s.X.Header().PType)))
	case *ast.Return:
		em.setLine(s.At)
		if s.X != nil {
			g.genExpr(em, s.X)
		} else {
			ci := g.internConstant(types.MakeI32(0))
			em.emitOp(OpLoadConstant)
			em.emitU8(ci)
		}
		em.emitOp(OpReturn)
	case *ast.If:
		g.genIf(em, s)
	case *ast.While:
		g.genWhile(em, s)
	case *ast.BadStmt:
		// nothing to generate
	}
}

// genBlockBody generates stmts as one scope: locals declared directly within
// it are popped, both from the compile-time locals stack and the runtime
// operand stack, once the scope ends.
func (g *Generator) genBlockBody(em *emitter, stmts []ast.Stmt) {
	base := len(em.locals)
	for _, st := range stmts {
		g.genStmt(em, st)
	}
	for i := len(em.locals); i > base; i-- {
		em.emitOp(OpPop)
	}
	em.popTo(base)
}

// genScopedStmt generates s as an implicit one-statement block when it is
// not already a Block, so a bare (brace-less) if/while arm that declares a
// variable does not leak that variable's slot into the enclosing scope.
func (g *Generator) genScopedStmt(em *emitter, s ast.Stmt) {
	if b, ok := s.(*ast.Block); ok {
		g.genBlockBody(em, b.Stmts)
		return
	}
	g.genBlockBody(em, []ast.Stmt{s})
}

// genIf lowers `if cond then [else else_]`. JmpIfFalse/JmpIfTrue never
// consume the condition, so every path emits its own Pop.
func (g *Generator) genIf(em *emitter, s *ast.If) {
	em.setLine(s.At)
	g.genExpr(em, s.Cond)
	em.emitOp(OpJmpIfFalse)
	toFalse := em.emitI16Placeholder()
	em.emitOp(OpPop)
	g.genScopedStmt(em, s.Then)

	if s.Else == nil {
		em.emitOp(OpJmp)
		toEnd := em.emitI16Placeholder()
		em.patchJump(toFalse)
		em.emitOp(OpPop)
		em.patchJump(toEnd)
		return
	}

	em.emitOp(OpJmp)
	toEnd := em.emitI16Placeholder()
	em.patchJump(toFalse)
	em.emitOp(OpPop)
	g.genScopedStmt(em, s.Else)
	em.patchJump(toEnd)
}

// genWhile lowers `while cond body`.
func (g *Generator) genWhile(em *emitter, s *ast.While) {
	loopStart := em.here()
	em.setLine(s.At)
	g.genExpr(em, s.Cond)
	em.emitOp(OpJmpIfFalse)
	toOut := em.emitI16Placeholder()
	em.emitOp(OpPop)
	g.genScopedStmt(em, s.Body)
	em.emitLoop(loopStart)
	em.patchJump(toOut)
	em.emitOp(OpPop)
}

// genDecl lowers a declaration. Constants (including function-valued ones)
// emit no runtime code: their value already lives in the constant table,
// either folded directly into every reference's Header by the checker, or,
// for functions, resolved through the Entity once Generate's prealloc pass
// has fixed up its real constant-table slot (see genIdent).
//
// A variable's declared value, once computed, simply becomes the local: no
// separate store instruction is needed, because entering a new local's
// scope is defined as "the next stack slot holds this value" (push records
// the compile-time bookkeeping to match). A variable ever referenced
// through `&` is the exception: it is heap-boxed so its address survives
// independent of the local's position on the operand stack.
func (g *Generator) genDecl(em *emitter, d *ast.Decl) {
	ent := d.Entity

	if fl, ok := d.Value.(*ast.FuncLit); ok {
		if d.IsConst {
			return
		}
		ci := g.internConstant(types.MakeFunc(g.funcByLit[fl]))
		em.setLine(d.At)
		em.emitOp(OpLoadConstant)
		em.emitU8(ci)
		em.push(d.Name)
		return
	}

	if d.IsConst {
		return
	}

	em.setLine(d.At)
	info := g.reg.Get(ent.Type)
	boxed := ent.IsAddressed && info.Tag != types.Struct && info.Tag != types.Array

	switch {
	case boxed:
		em.emitOp(OpStructAlloc)
		em.emitU32(uint32(info.Size))
		em.emitOp(OpDup)
		g.genDeclValue(em, d, info)
		em.emitOp(OpSetField)
		em.emitU32(0)
		em.emitU32(uint32(info.Size))
		em.emitOp(OpPop)
	default:
		g.genDeclValue(em, d, info)
	}
	em.push(d.Name)
}

// genDeclValue emits the code producing a declaration's initial value: the
// initializer expression if present, a fresh heap allocation for an
// uninitialized struct or array, or a zero constant of the declared type
// otherwise.
func (g *Generator) genDeclValue(em *emitter, d *ast.Decl, info *types.Info) {
	switch {
	case d.Value != nil:
		g.genExpr(em, d.Value)
	case info.Tag == types.Struct || info.Tag == types.Array:
		em.emitOp(OpStructAlloc)
		em.emitU32(uint32(info.Size))
	default:
		ci := g.internConstant(zeroValue(info.Tag))
		em.emitOp(OpLoadConstant)
		em.emitU8(ci)
	}
}

func zeroValue(tag types.Tag) types.Value {
	switch tag {
	case types.I32:
		return types.MakeI32(0)
	case types.F32:
		return types.MakeF32(0)
	case types.Bool:
		return types.MakeBool(false)
	case types.TypeType:
		return types.MakeType(types.InvalidID)
	case types.Function:
		return types.MakeFunc(-1)
	case types.Pointer:
		return types.MakeHeap(-1)
	default:
		return types.Nil
	}
}
