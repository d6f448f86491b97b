package resolve_test

import (
	"testing"

	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/parser"
	"github.com/mna/toylang/lang/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) (*ast.Block, *errs.State) {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	block := parser.Parse([]byte(src), e)
	resolve.Collect(block, e)
	return block, e
}

func TestCollectInstallsGlobalEntities(t *testing.T) {
	block, e := collect(t, `x := 1; fib :: func(n:i32)->i32 { return n; };`)
	require.True(t, e.OK())

	global := block.Scope()
	require.NotNil(t, global)

	ent, ok := global.Local("x")
	require.True(t, ok)
	assert.Equal(t, ast.VariableEntity, ent.Kind)

	ent, ok = global.Local("fib")
	require.True(t, ok)
	assert.Equal(t, ast.FunctionEntity, ent.Kind)
}

func TestCollectRedeclarationError(t *testing.T) {
	_, e := collect(t, `x := 1; x := 2;`)
	assert.False(t, e.OK())
}

func TestCollectParameterShadowsOuterVariable(t *testing.T) {
	// A function parameter may share a name with an outer-scope variable: it
	// lives in a different Scope instance, so Declare never sees a clash.
	block, e := collect(t, `n := 1; f :: func(n:i32)->i32 { return n; };`)
	require.True(t, e.OK())

	global := block.Scope()
	nEnt, ok := global.Local("n")
	require.True(t, ok)

	fEnt, ok := global.Local("f")
	require.True(t, ok)
	decl := fEnt.Decl.(*ast.Decl)
	fl := decl.Value.(*ast.FuncLit)
	fnScope := fl.Sig.Scope()

	pEnt, ok := fnScope.Local("n")
	require.True(t, ok)
	assert.NotSame(t, pEnt, nEnt)
}

func TestCollectStructFields(t *testing.T) {
	block, e := collect(t, `T :: struct { x:i32; y:i32; };`)
	require.True(t, e.OK())

	global := block.Scope()
	tEnt, ok := global.Local("T")
	require.True(t, ok)
	decl := tEnt.Decl.(*ast.Decl)
	st := decl.Value.(*ast.StructTypeExpr)
	dataScope := st.Scope()

	_, ok = dataScope.Local("x")
	assert.True(t, ok)
	_, ok = dataScope.Local("y")
	assert.True(t, ok)
}
