package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8192, cfg.Storage.PageSize)
	require.Equal(t, "buffered", cfg.Storage.PoolKind)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferrodb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  page_size: 4096
  replacement: fifo
server:
  port: 9999
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.Storage.PageSize)
	require.Equal(t, "fifo", cfg.Storage.Replacement)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 128, cfg.Storage.PoolCapacity) // untouched default
}

func TestAddr_EnvOverride(t *testing.T) {
	cfg := Defaults()
	t.Setenv("FERRODB_ADDR", "0.0.0.0:4000")
	require.Equal(t, "0.0.0.0:4000", cfg.Addr())
}

func TestAddr_DefaultFromPort(t *testing.T) {
	cfg := Defaults()
	t.Setenv("FERRODB_ADDR", "")
	require.Equal(t, "127.0.0.1:1337", cfg.Addr())
}
