package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEngineOptions_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strictMode: true\n"), 0o644))

	opts, err := LoadEngineOptions(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
	assert.True(t, opts.StrictMode)
}

func TestLoadEngineOptions_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxDepth: 10\n"), 0o644))

	t.Setenv("KERNEL_STRICT_MODE", "true")

	opts, err := LoadEngineOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 10, opts.MaxDepth)
	assert.True(t, opts.StrictMode)
}

func TestLoadEngineOptions_MissingFile(t *testing.T) {
	_, err := LoadEngineOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
