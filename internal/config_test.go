package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
app_name: btreeindex-test
storage:
  workdir: /tmp/idx
bufferpool:
  capacity: 64
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "btreeindex-test", cfg.AppName)
	require.Equal(t, "/tmp/idx", cfg.Storage.Workdir)
	require.Equal(t, 64, cfg.Bufferpool.Capacity)
	require.True(t, cfg.Debug)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: x\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "data", cfg.Storage.Workdir)
	require.Equal(t, 128, cfg.Bufferpool.Capacity)
	require.False(t, cfg.Debug)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
