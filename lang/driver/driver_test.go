package driver_test

import (
	"bytes"
	"testing"

	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileCodeSuccess(t *testing.T) {
	s := driver.NewSession("test.toy", []byte(`print(1+1);`))
	prog, err := s.CompileCode(driver.Options{}, nil)
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.True(t, s.Errs.OK())
}

func TestCompileCodeShortCircuitsOnCheckerError(t *testing.T) {
	// codegen must never run when the type checker recorded an error: no
	// panics, no partial Program, just the accumulated error.
	s := driver.NewSession("test.toy", []byte(`k:i32 = true;`))
	prog, err := s.CompileCode(driver.Options{}, nil)
	require.Error(t, err)
	assert.Nil(t, prog)
}

func TestCompileCodeDumpsAstAndBytecodeWhenRequested(t *testing.T) {
	s := driver.NewSession("test.toy", []byte(`print(1);`))
	var dump bytes.Buffer
	prog, err := s.CompileCode(driver.Options{PrintAST: true, PrintBytecode: true}, &dump)
	require.NoError(t, err)
	require.NotNil(t, prog)

	out := dump.String()
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "<main>")
}

func TestRunExecutesCompiledProgram(t *testing.T) {
	s := driver.NewSession("test.toy", []byte(`print(21+21);`))
	prog, err := s.CompileCode(driver.Options{}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = driver.Run(prog, config.DefaultLimits(), &out)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}
