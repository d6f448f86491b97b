package compiler_test

import (
	"bytes"
	"testing"

	"github.com/mna/toylang/lang/check"
	"github.com/mna/toylang/lang/compiler"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/parser"
	"github.com/mna/toylang/lang/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) *compiler.Program {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	block := parser.Parse([]byte(src), e)
	resolve.Collect(block, e)
	reg := check.Check(block, e)
	require.True(t, e.OK())
	return compiler.Generate(block, reg, e)
}

func TestGenerateLineTableMatchesCodeLength(t *testing.T) {
	prog := generate(t, `fib :: func(n:i32)->i32 { if n<=1 { return n; } else { return fib(n-1)+fib(n-2); } }; print(fib(7));`)
	for _, fn := range prog.Functions {
		assert.Equal(t, len(fn.Code), len(fn.Lines), "function %s: code/line table length mismatch", fn.Name)
	}
}

func TestGenerateMainAndFunctionLayout(t *testing.T) {
	prog := generate(t, `fib :: func(n:i32)->i32 { return n; }; print(fib(1));`)
	require.Len(t, prog.Functions, 2)
	assert.Equal(t, "<main>", prog.Main.Name)
	assert.Same(t, prog.Main, prog.Functions[0])

	fn := prog.Functions[1]
	assert.Equal(t, "fib", fn.Name)
	assert.Equal(t, 1, fn.NumParams)
}

func TestDisassembleProducesOneLineBlockPerFunction(t *testing.T) {
	prog := generate(t, `print(1+2);`)
	var buf bytes.Buffer
	compiler.Disassemble(&buf, prog)
	assert.Contains(t, buf.String(), "== <main> ==")
	assert.Contains(t, buf.String(), "Print")
}
