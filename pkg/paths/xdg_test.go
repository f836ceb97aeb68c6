package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir_HookcfgHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOOKCFG_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "/ignored")

	assert.Equal(t, filepath.Join(home, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(home, "config", "config.yml"), GlobalConfigFile())

	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(ConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("HOOKCFG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	assert.Equal(t, filepath.Join("/xdg/config", "hookcfg"), ConfigDir())
	assert.Equal(t, filepath.Join("/xdg/config", "hookcfg", "config.yml"), GlobalConfigFile())
}

func TestConfigDir_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOOKCFG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "hookcfg"), ConfigDir())
}
