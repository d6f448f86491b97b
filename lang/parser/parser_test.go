package parser_test

import (
	"testing"

	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Block, *errs.State) {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	return parser.Parse([]byte(src), e), e
}

func TestParseDecl(t *testing.T) {
	block, e := parse(t, `i := 0;`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 1)

	d, ok := block.Stmts[0].(*ast.Decl)
	require.True(t, ok)
	assert.Equal(t, "i", d.Name)
	assert.False(t, d.IsConst)
	assert.Nil(t, d.Type)
	require.NotNil(t, d.Value)
}

func TestParseConstFuncDecl(t *testing.T) {
	block, e := parse(t, `fib :: func(n:i32)->i32 { return n; };`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 1)

	d, ok := block.Stmts[0].(*ast.Decl)
	require.True(t, ok)
	assert.Equal(t, "fib", d.Name)
	assert.True(t, d.IsConst)

	fl, ok := d.Value.(*ast.FuncLit)
	require.True(t, ok)
	require.Len(t, fl.Sig.Params, 1)
	assert.Equal(t, "n", fl.Sig.Params[0].Name)
}

func TestParsePrintAndWhile(t *testing.T) {
	block, e := parse(t, `while i < 5 { print(i); i = i + 1; }`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 1)

	w, ok := block.Stmts[0].(*ast.While)
	require.True(t, ok)

	body, ok := w.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)

	_, ok = body.Stmts[0].(*ast.Print)
	assert.True(t, ok)
	_, ok = body.Stmts[1].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseStructTypeAndFieldAssign(t *testing.T) {
	block, e := parse(t, `T :: struct { x:i32; y:i32; }; p:T; p.x=3;`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 3)

	td, ok := block.Stmts[0].(*ast.Decl)
	require.True(t, ok)
	st, ok := td.Value.(*ast.StructTypeExpr)
	require.True(t, ok)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)
	assert.Equal(t, "y", st.Fields[1].Name)

	assign, ok := block.Stmts[2].(*ast.ExprStmt)
	require.True(t, ok)
	a, ok := assign.X.(*ast.Assignment)
	require.True(t, ok)
	sel, ok := a.Left.(*ast.Selector)
	require.True(t, ok)
	assert.Equal(t, "x", sel.Name)
}

func TestParsePrecedence(t *testing.T) {
	// 2*2+4/2-1 must parse as ((2*2)+(4/2))-1, i.e. a top-level '-' Binary.
	block, e := parse(t, `print(2*2+4/2-1);`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 1)

	p, ok := block.Stmts[0].(*ast.Print)
	require.True(t, ok)
	top, ok := p.X.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "'-'", top.Op.GoString())
}

func TestParsePrintIsNotReserved(t *testing.T) {
	// print is a built-in recognized by its textual identifier, so the name
	// itself stays available for ordinary declarations.
	block, e := parse(t, `print: i32 = 5;`)
	require.True(t, e.OK())
	require.Len(t, block.Stmts, 1)

	d, ok := block.Stmts[0].(*ast.Decl)
	require.True(t, ok)
	assert.Equal(t, "print", d.Name)
	assert.False(t, d.IsConst)
}

func TestParseErrorRecovery(t *testing.T) {
	// A missing terminator is recorded as an error without synchronizing,
	// so the following statement still parses normally.
	block, e := parse(t, `i := 0 print(1);`)
	assert.False(t, e.OK())
	require.Len(t, block.Stmts, 2)
	_, ok := block.Stmts[0].(*ast.Decl)
	assert.True(t, ok)
	_, ok = block.Stmts[1].(*ast.Print)
	assert.True(t, ok)
}
