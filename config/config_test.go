package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/toylang/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	lim, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLimits(), lim)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 1234\n"), 0o644))

	lim, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, lim.MaxSteps)
	// unset keys keep their defaults
	assert.Equal(t, config.DefaultLimits().MaxStack, lim.MaxStack)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 1234\n"), 0o644))
	t.Setenv("TOYLANG_MAX_STEPS", "99")

	lim, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, lim.MaxSteps)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
