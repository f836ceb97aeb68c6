// Package paths provides XDG-compliant path resolution for hookcfg.
//
// Resolution order:
// 1. HOOKCFG_HOME (portable root) → $HOOKCFG_HOME/config
// 2. XDG_CONFIG_HOME → $XDG_CONFIG_HOME/hookcfg
// 3. Platform default → ~/.config/hookcfg
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("HOOKCFG_HOME"); home != "" {
		return home
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// ConfigDir returns the hookcfg configuration directory.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	if os.Getenv("HOOKCFG_HOME") != "" {
		return filepath.Join(base, "config")
	}
	return filepath.Join(base, "hookcfg")
}

// GlobalConfigFile returns the path of the global settings file, or "" when
// no home directory can be determined.
func GlobalConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yml")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir := ConfigDir()
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
