package machine_test

import (
	"bytes"
	"testing"

	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/check"
	"github.com/mna/toylang/lang/compiler"
	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/machine"
	"github.com/mna/toylang/lang/parser"
	"github.com/mna/toylang/lang/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *compiler.Program {
	t.Helper()
	e := &errs.State{Filename: "test.toy", Source: []byte(src)}
	block := parser.Parse([]byte(src), e)
	resolve.Collect(block, e)
	reg := check.Check(block, e)
	require.True(t, e.OK())
	return compiler.Generate(block, reg, e)
}

func TestRunHaltsAfterMainReturn(t *testing.T) {
	// after a full program run ending in Return from <main>, the VM is in
	// the Halted state and the program's print output has been written.
	prog := build(t, `print(1);`)
	var out bytes.Buffer
	vm := machine.New(prog, config.DefaultLimits(), &out)
	_, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, machine.Halted, vm.State())
	assert.Equal(t, "1\n", out.String())
}

func TestDivisionByZeroTraps(t *testing.T) {
	// n is not a compile-time constant, so the division is not folded and
	// survives to be executed (and trapped) at runtime.
	prog := build(t, `n:i32 = 0; print(1/n);`)
	var out bytes.Buffer
	vm := machine.New(prog, config.DefaultLimits(), &out)
	_, err := vm.Run()
	require.Error(t, err)
	assert.Equal(t, machine.Trapped, vm.State())

	trap, ok := err.(*machine.Trap)
	require.True(t, ok)
	assert.Equal(t, machine.DivisionByZero, trap.Kind)
}

func TestStepBudgetExceededTraps(t *testing.T) {
	prog := build(t, `i := 0; while i < 1000000 { i = i + 1; }`)
	var out bytes.Buffer
	vm := machine.New(prog, config.Limits{MaxStack: 1 << 10, MaxFrames: 1 << 6, MaxSteps: 100}, &out)
	_, err := vm.Run()
	require.Error(t, err)

	trap, ok := err.(*machine.Trap)
	require.True(t, ok)
	assert.Equal(t, machine.StepBudgetExceeded, trap.Kind)
}

func TestRecursiveCallAndReturn(t *testing.T) {
	prog := build(t, `fib :: func(n:i32)->i32 { if n<=1 { return n; } else { return fib(n-1)+fib(n-2); } }; print(fib(10));`)
	var out bytes.Buffer
	vm := machine.New(prog, config.DefaultLimits(), &out)
	_, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, "55\n", out.String())
}
