package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/toylang/internal/maincmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.toy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCmdRunExecutesFile(t *testing.T) {
	path := writeTempSource(t, `print(2*2+4/2-1);`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "5\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestCmdCheckReportsTypeMismatch(t *testing.T) {
	path := writeTempSource(t, `k:i32 = true;`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Check(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "i32")
}

func TestCmdCompileDisassemblesProgram(t *testing.T) {
	path := writeTempSource(t, `print(1);`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Compile(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "== <main> ==")
}

func TestCmdTokenizeListsTokens(t *testing.T) {
	path := writeTempSource(t, `print(1);`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Tokenize(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "print")
}

func TestCmdRunMissingFileFails(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{filepath.Join(t.TempDir(), "missing.toy")})
	require.Error(t, err)
}
