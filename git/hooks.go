package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/grovetools/hookcfg/command"
	"github.com/grovetools/hookcfg/manifest"
)

// hookMarker identifies scripts written by HookManager.
const hookMarker = "hookcfg git hook"

// BackupSuffix is appended to foreign hooks moved aside on install.
const BackupSuffix = ".pre-hookcfg"

var shimTemplate = template.Must(template.New("shim").Funcs(template.FuncMap{
	"shellQuote": shellQuote,
}).Parse(`#!/bin/sh
# ` + hookMarker + ` - {{.HookType}}
# Auto-generated, do not edit directly

HOOKCFG_BIN={{shellQuote .Binary}}

if ! command -v "$HOOKCFG_BIN" >/dev/null 2>&1; then
    echo "hookcfg not found. Skipping {{.HookType}} hook." >&2
    exit 0
fi

exec "$HOOKCFG_BIN" run-shim {{.HookType}} "$@"
`))

// shellQuote wraps s in single quotes so sh reads it as one literal word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// HookManager manages hookcfg shims in a repository's hooks directory.
type HookManager struct {
	binary     string
	cmdBuilder *command.SafeBuilder
}

// Ensure it implements the interface
var _ HookProvider = (*HookManager)(nil)

// NewHookManager creates a new hook manager. The shims invoke binary.
func NewHookManager(binary string) *HookManager {
	if binary == "" {
		binary = "hookcfg"
	}
	return &HookManager{
		binary:     binary,
		cmdBuilder: command.NewSafeBuilder(),
	}
}

// InstallHooks writes a shim for each git hook type and returns the paths
// written. An existing hook that hookcfg did not write is moved to
// <name>.pre-hookcfg first.
func (m *HookManager) InstallHooks(ctx context.Context, repoPath string, hookTypes []string) ([]string, error) {
	for _, hookType := range hookTypes {
		if err := m.cmdBuilder.Validate("hookType", hookType); err != nil {
			return nil, err
		}
	}

	hooksDir, err := HooksDir(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return nil, fmt.Errorf("create hooks directory: %w", err)
	}

	var installed []string
	for _, hookType := range hookTypes {
		hookPath := filepath.Join(hooksDir, hookType)
		if err := m.installHook(hookPath, hookType); err != nil {
			return installed, fmt.Errorf("install %s hook: %w", hookType, err)
		}
		installed = append(installed, hookPath)
	}
	return installed, nil
}

// UninstallHooks removes hookcfg shims for every hook type and restores any
// backed up hook. Hooks hookcfg did not write are left alone. It returns the
// paths removed.
func (m *HookManager) UninstallHooks(ctx context.Context, repoPath string) ([]string, error) {
	hooksDir, err := HooksDir(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, hookType := range manifest.AllStages {
		if hookType == manifest.StageManual {
			continue
		}
		hookPath := filepath.Join(hooksDir, hookType)
		if !IsManagedHook(hookPath) {
			continue
		}

		if err := os.Remove(hookPath); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s hook: %w", hookType, err)
		}
		removed = append(removed, hookPath)

		backupPath := hookPath + BackupSuffix
		if _, err := os.Stat(backupPath); err == nil {
			if err := os.Rename(backupPath, hookPath); err != nil {
				return removed, fmt.Errorf("restore %s hook: %w", hookType, err)
			}
		}
	}
	return removed, nil
}

func (m *HookManager) installHook(hookPath, hookType string) error {
	if _, err := os.Stat(hookPath); err == nil && !IsManagedHook(hookPath) {
		backupPath := hookPath + BackupSuffix
		if _, err := os.Stat(backupPath); err == nil {
			return fmt.Errorf("%s exists and would be overwritten by the backup of %s", backupPath, hookPath)
		}
		if err := os.Rename(hookPath, backupPath); err != nil {
			return fmt.Errorf("backup existing hook: %w", err)
		}
	}

	var buf bytes.Buffer
	data := struct {
		HookType string
		Binary   string
	}{
		HookType: hookType,
		Binary:   m.binary,
	}
	if err := shimTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	// #nosec G306 - Git hooks need to be executable
	if err := os.WriteFile(hookPath, buf.Bytes(), 0755); err != nil {
		return fmt.Errorf("write hook file: %w", err)
	}
	return nil
}

// IsManagedHook checks if a hook file was written by hookcfg
func IsManagedHook(hookPath string) bool {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		return false
	}
	return bytes.Contains(content, []byte(hookMarker))
}
