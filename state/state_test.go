package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/hookcfg/testutil"
)

func TestStateOperations(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "hookcfg", FileName))

	t.Run("Load empty state", func(t *testing.T) {
		state, err := store.Load()
		require.NoError(t, err)
		assert.NotNil(t, state)
		assert.Empty(t, state)
	})

	t.Run("Set and Get string value", func(t *testing.T) {
		require.NoError(t, store.Set("last.stage", "pre-commit"))

		got, err := store.GetString("last.stage")
		require.NoError(t, err)
		assert.Equal(t, "pre-commit", got)
	})

	t.Run("Get non-string value", func(t *testing.T) {
		require.NoError(t, store.Set("runs", 3))

		got, ok, err := store.Get("runs")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, got)

		str, err := store.GetString("runs")
		require.NoError(t, err)
		assert.Empty(t, str)
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		got, ok, err := store.Get("non.existent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete("last.stage"))

		_, ok, err := store.Get("last.stage")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("install: [\n"), 0644))

	_, err := NewStore(path).Load()
	assert.ErrorContains(t, err, "parse state file")
}

func TestInstallRecord(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	rec, err := store.Install()
	require.NoError(t, err)
	assert.Nil(t, rec)

	installedAt := time.Date(2024, 3, 1, 12, 30, 15, 500, time.UTC)
	require.NoError(t, store.RecordInstall(InstallRecord{
		Binary:      "hookcfg",
		HookTypes:   []string{"pre-commit", "commit-msg"},
		Hooks:       []string{".git/hooks/pre-commit", ".git/hooks/commit-msg"},
		Manifest:    ".pre-commit-config.yaml",
		InstalledAt: installedAt,
	}))

	rec, err = store.Install()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "hookcfg", rec.Binary)
	assert.Equal(t, []string{"pre-commit", "commit-msg"}, rec.HookTypes)
	assert.Equal(t, ".pre-commit-config.yaml", rec.Manifest)
	assert.True(t, installedAt.Truncate(time.Second).Equal(rec.InstalledAt))

	assert.Equal(t, []string{"pre-push"}, rec.Missing([]string{"pre-commit", "pre-push", "commit-msg"}))
	assert.Empty(t, rec.Missing([]string{"commit-msg"}))

	require.NoError(t, store.ClearInstall())
	rec, err = store.Install()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestForRepo(t *testing.T) {
	testutil.RequireGit(t)
	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)

	store, err := ForRepo(context.Background(), dir)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, ".git", "hookcfg", FileName), store.Path())

	_, err = ForRepo(context.Background(), t.TempDir())
	assert.Error(t, err)
}
