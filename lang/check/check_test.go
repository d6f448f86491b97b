package check_test

import (
	"testing"

	"github.com/mna/toylang/lang/ast"
	"github.com/mna/toylang/lang/check"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/parser"
	"github.com/mna/toylang/lang/resolve"
	"github.com/mna/toylang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check_(t *testing.T, src string) (*ast.Block, *types.Registry, *errs.State) {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	block := parser.Parse([]byte(src), e)
	resolve.Collect(block, e)
	reg := check.Check(block, e)
	return block, reg, e
}

func TestCheckConstantFolding(t *testing.T) {
	block, _, e := check_(t, `print(2*2+4/2-1);`)
	require.True(t, e.OK())

	p := block.Stmts[0].(*ast.Print)
	h := p.X.Header()
	require.True(t, h.IsConstant)
	assert.Equal(t, types.MakeI32(5), h.ConstantValue)
}

func TestCheckImplicitCastInsertion(t *testing.T) {
	// 5 + 5.0: the i32 operand is implicitly cast to f32.
	block, _, e := check_(t, `print(5 + 5.0);`)
	require.True(t, e.OK())

	p := block.Stmts[0].(*ast.Print)
	b := p.X.(*ast.Binary)
	_, ok := b.Left.(*ast.Cast)
	assert.True(t, ok, "the i32 literal should be wrapped in a synthesized Cast")
	assert.Equal(t, types.F32ID, b.Header().PType)
}

func TestCheckTypeMismatchOnDecl(t *testing.T) {
	_, _, e := check_(t, `k:i32 = true;`)
	assert.False(t, e.OK())
	msg := e.Err().Error()
	assert.Contains(t, msg, "i32")
	assert.Contains(t, msg, "bool")
}

func TestCheckStructFieldTypesAndOffsets(t *testing.T) {
	_, reg, e := check_(t, `T :: struct { x:i32; y:i32; };`)
	require.True(t, e.OK())

	id, ok := reg.LookupStruct("T")
	require.True(t, ok)
	info := reg.Get(id)
	assert.Equal(t, 8, info.Size)
	require.Len(t, info.Members, 2)
	assert.Equal(t, 0, info.Members[0].Offset)
	assert.Equal(t, 4, info.Members[1].Offset)
}

func TestCheckUndeclaredIdentifier(t *testing.T) {
	_, _, e := check_(t, `print(undeclared_name);`)
	assert.False(t, e.OK())
}

func TestCheckIfConditionMustBeBool(t *testing.T) {
	_, _, e := check_(t, `if 1 { print(1); }`)
	assert.False(t, e.OK())
}
