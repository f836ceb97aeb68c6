package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/grovetools/hookcfg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (string, string) {
	t.Helper()
	testutil.RequireGit(t)

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)

	hooksDir, err := HooksDir(context.Background(), dir)
	require.NoError(t, err)
	return dir, hooksDir
}

func TestHookManager_InstallHooks(t *testing.T) {
	dir, hooksDir := newRepo(t)
	manager := NewHookManager("hookcfg")

	installed, err := manager.InstallHooks(context.Background(), dir, []string{"pre-commit", "commit-msg"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(hooksDir, "pre-commit"),
		filepath.Join(hooksDir, "commit-msg"),
	}, installed)

	for _, hook := range []string{"pre-commit", "commit-msg"} {
		hookPath := filepath.Join(hooksDir, hook)
		assert.FileExists(t, hookPath)

		info, err := os.Stat(hookPath)
		require.NoError(t, err)
		assert.True(t, info.Mode()&0100 != 0, "hook should be executable")

		content, err := os.ReadFile(hookPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), hookMarker)
		assert.Contains(t, string(content), `run-shim `+hook+` "$@"`)
		assert.True(t, IsManagedHook(hookPath))
	}
	assert.NoFileExists(t, filepath.Join(hooksDir, "pre-push"))
}

func TestHookManager_QuotesBinary(t *testing.T) {
	testCases := []struct {
		name   string
		binary string
		line   string
	}{
		{
			name:   "plain",
			binary: "hookcfg-not-installed",
			line:   `HOOKCFG_BIN='hookcfg-not-installed'`,
		},
		{
			name:   "double quotes and semicolons",
			binary: `hookcfg"; touch pwned; "`,
			line:   `HOOKCFG_BIN='hookcfg"; touch pwned; "'`,
		},
		{
			name:   "single quote",
			binary: `hookcfg'; touch pwned; '`,
			line:   `HOOKCFG_BIN='hookcfg'\''; touch pwned; '\'''`,
		},
		{
			name:   "command substitution",
			binary: "$(touch pwned)",
			line:   `HOOKCFG_BIN='$(touch pwned)'`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir, hooksDir := newRepo(t)
			_, err := NewHookManager(tc.binary).InstallHooks(context.Background(), dir, []string{"pre-commit"})
			require.NoError(t, err)

			hookPath := filepath.Join(hooksDir, "pre-commit")
			content, err := os.ReadFile(hookPath)
			require.NoError(t, err)
			assert.Contains(t, string(content), tc.line+"\n")

			if _, err := exec.LookPath("sh"); err != nil {
				return
			}
			cmd := exec.Command("sh", hookPath)
			cmd.Dir = dir
			out, err := cmd.CombinedOutput()
			require.NoError(t, err, string(out))
			assert.Contains(t, string(out), "hookcfg not found")
			assert.NoFileExists(t, filepath.Join(dir, "pwned"))
		})
	}
}

func TestHookManager_InstallHooks_RejectsInvalidTypes(t *testing.T) {
	manager := NewHookManager("")

	for _, hookType := range []string{"manual", "commit", "../escape"} {
		_, err := manager.InstallHooks(context.Background(), t.TempDir(), []string{hookType})
		assert.Error(t, err, hookType)
	}
}

func TestHookManager_InstallHooks_NotARepository(t *testing.T) {
	testutil.RequireGit(t)

	_, err := NewHookManager("").InstallHooks(context.Background(), t.TempDir(), []string{"pre-commit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_A_REPOSITORY")
}

func TestHookManager_UninstallHooks(t *testing.T) {
	dir, hooksDir := newRepo(t)
	manager := NewHookManager("hookcfg")

	_, err := manager.InstallHooks(context.Background(), dir, []string{"pre-commit", "pre-push"})
	require.NoError(t, err)

	// A hook hookcfg did not write survives uninstall.
	foreign := filepath.Join(hooksDir, "post-merge")
	require.NoError(t, os.WriteFile(foreign, []byte("#!/bin/sh\necho mine\n"), 0755))

	removed, err := manager.UninstallHooks(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	assert.NoFileExists(t, filepath.Join(hooksDir, "pre-commit"))
	assert.NoFileExists(t, filepath.Join(hooksDir, "pre-push"))
	assert.FileExists(t, foreign)
}

func TestHookManager_PreserveExistingHooks(t *testing.T) {
	dir, hooksDir := newRepo(t)
	require.NoError(t, os.MkdirAll(hooksDir, 0755))

	existingHook := filepath.Join(hooksDir, "pre-commit")
	existingContent := "#!/bin/sh\necho 'existing hook'\n"
	require.NoError(t, os.WriteFile(existingHook, []byte(existingContent), 0755))

	manager := NewHookManager("hookcfg")

	_, err := manager.InstallHooks(context.Background(), dir, []string{"pre-commit"})
	require.NoError(t, err)

	backupPath := existingHook + BackupSuffix
	backupContent, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, existingContent, string(backupContent))

	// Reinstalling keeps the original backup.
	_, err = manager.InstallHooks(context.Background(), dir, []string{"pre-commit"})
	require.NoError(t, err)
	backupContent, err = os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, existingContent, string(backupContent))

	// Uninstall puts it back.
	_, err = manager.UninstallHooks(context.Background(), dir)
	require.NoError(t, err)
	restored, err := os.ReadFile(existingHook)
	require.NoError(t, err)
	assert.Equal(t, existingContent, string(restored))
	assert.NoFileExists(t, backupPath)
}

func TestHookManager_RefusesToClobberBackup(t *testing.T) {
	dir, hooksDir := newRepo(t)
	require.NoError(t, os.MkdirAll(hooksDir, 0755))

	hookPath := filepath.Join(hooksDir, "pre-commit")
	require.NoError(t, os.WriteFile(hookPath, []byte("#!/bin/sh\necho new\n"), 0755))
	require.NoError(t, os.WriteFile(hookPath+BackupSuffix, []byte("#!/bin/sh\necho old\n"), 0755))

	_, err := NewHookManager("hookcfg").InstallHooks(context.Background(), dir, []string{"pre-commit"})
	require.Error(t, err)

	content, err := os.ReadFile(hookPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "echo new")
}

func TestHookManager_HooksPath(t *testing.T) {
	dir, _ := newRepo(t)

	cmd := exec.Command("git", "config", "core.hooksPath", ".githooks")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	installed, err := NewHookManager("hookcfg").InstallHooks(context.Background(), dir, []string{"pre-commit"})
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, filepath.Join(dir, ".githooks", "pre-commit"), installed[0])
}
