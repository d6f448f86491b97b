package compiler

import (
	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/types"
)

// Generator holds the state threaded through one program's code generation.
type Generator struct {
	reg  *types.Registry
	errs *errs.State
	prog *Program

	constIndex map[types.Value]int
	funcByLit  map[*ast.FuncLit]int
}

// Generate lowers a type-checked, scoped AST into a Program. Functions are
// allocated - and every Entity referring to one given its constant-table
// index - before any body is generated, so mutual recursion among
// top-level constants works the same way forward-referenced constants do
// in the checker.
func Generate(block *ast.Block, reg *types.Registry, e *errs.State) *Program {
	g := &Generator{
		reg:        reg,
		errs:       e,
		prog:       &Program{},
		constIndex: make(map[types.Value]int),
		funcByLit:  make(map[*ast.FuncLit]int),
	}

	main := &Function{Name: "<main>"}
	g.prog.Functions = append(g.prog.Functions, main)
	g.prog.Main = main

	var entries []funcLitEntry
	collectFuncLits(block.Stmts, &entries)
	lits := make([]*ast.FuncLit, len(entries))
	for i, fe := range entries {
		fn := &Function{Name: fe.name, NumParams: len(fe.lit.Sig.Params)}
		idx := len(g.prog.Functions)
		g.prog.Functions = append(g.prog.Functions, fn)
		g.funcByLit[fe.lit] = idx
		lits[i] = fe.lit
	}

	// Assign each function-entity's constant-table slot before any body is
	// generated, so a reference to a sibling (or self) function anywhere
	// in any body resolves to a fully-formed constant index.
	assignFuncConstants(block.Stmts, g)

	em := newEmitter(main)
	for _, s := range block.Stmts {
		g.genStmt(em, s)
	}
	g.emitImplicitVoidReturn(em)

	for _, fl := range lits {
		fn := g.prog.Functions[g.funcByLit[fl]]
		fem := newEmitter(fn)
		fem.push(fn.Name)
		for _, p := range fl.Sig.Params {
			slot := fem.push(p.Name)
			if ent, ok := fl.Sig.Scope().Local(p.Name); ok && g.isBoxed(ent) {
				g.emitParamBox(fem, slot, g.reg.Get(ent.Type))
			}
		}
		for _, s := range fl.Body.Stmts {
			g.genStmt(fem, s)
		}
		g.emitImplicitVoidReturn(fem)
	}

	return g.prog
}

type funcLitEntry struct {
	name string
	lit  *ast.FuncLit
}

// collectFuncLits walks every statement reachable from stmts, in the order
// code generation will later visit them, appending every function literal
// that is the direct value of a declaration (the only position this
// implementation lowers to bytecode - the checker rejects a function
// literal anywhere else, e.g. as a call argument).
func collectFuncLits(stmts []ast.Stmt, out *[]funcLitEntry) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Decl:
			if fl, ok := s.Value.(*ast.FuncLit); ok {
				*out = append(*out, funcLitEntry{name: s.Name, lit: fl})
				collectFuncLits(fl.Body.Stmts, out)
			}
		case *ast.Block:
			collectFuncLits(s.Stmts, out)
		case *ast.If:
			collectFuncLits([]ast.Stmt{s.Then}, out)
			if s.Else != nil {
				collectFuncLits([]ast.Stmt{s.Else}, out)
			}
		case *ast.While:
			collectFuncLits([]ast.Stmt{s.Body}, out)
		}
	}
}

func assignFuncConstants(stmts []ast.Stmt, g *Generator) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Decl:
			if fl, ok := s.Value.(*ast.FuncLit); ok {
				idx := g.funcByLit[fl]
				val := types.MakeFunc(idx)
				ci := g.internConstant(val)
				if s.Entity != nil {
					s.Entity.CodegenIndex = ci
					if s.Entity.HasConstantValue {
						s.Entity.ConstantValue = val
					}
				}
				assignFuncConstants(fl.Body.Stmts, g)
			}
		case *ast.Block:
			assignFuncConstants(s.Stmts, g)
		case *ast.If:
			assignFuncConstants([]ast.Stmt{s.Then}, g)
			if s.Else != nil {
				assignFuncConstants([]ast.Stmt{s.Else}, g)
			}
		case *ast.While:
			assignFuncConstants([]ast.Stmt{s.Body}, g)
		}
	}
}

// internConstant returns the constant-table index for v, appending it if
// this exact value has not been seen yet. Function values are never
// deduplicated against each other by this map (each carries its own unique
// index already) because the map key is the whole Value struct, and two
// distinct functions never compare equal.
func (g *Generator) internConstant(v types.Value) int {
	if idx, ok := g.constIndex[v]; ok {
		return idx
	}
	idx := len(g.prog.Constants)
	g.prog.Constants = append(g.prog.Constants, v)
	g.constIndex[v] = idx
	return idx
}

// emitParamBox re-homes an addressed scalar parameter into a heap box at
// function entry, so `&p` can hand out a stable address: the slot's plain
// value is copied into a fresh allocation whose offset then replaces it as
// the slot value.
func (g *Generator) emitParamBox(em *emitter, slot int, info *types.Info) {
	em.emitOp(OpStructAlloc)
	em.emitU32(uint32(info.Size))
	em.emitOp(OpDup)
	em.emitOp(OpGetLocal)
	em.emitU8(slot)
	em.emitOp(OpSetField)
	em.emitU32(0)
	em.emitU32(uint32(info.Size))
	em.emitOp(OpPop)
	em.emitOp(OpSetLocal)
	em.emitU8(slot)
	em.emitOp(OpPop)
}

// emitImplicitVoidReturn terminates a function body that falls off its end
// without an explicit return, pushing a constant zero value (void
// functions; callers of a void function never consume it) and returning.
func (g *Generator) emitImplicitVoidReturn(em *emitter) {
	ci := g.internConstant(types.MakeI32(0))
	em.emitOp(OpLoadConstant)
	em.emitU8(ci)
	em.emitOp(OpReturn)
}
