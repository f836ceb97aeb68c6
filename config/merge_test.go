package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/hookcfg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestHierarchicalMerging tests the three-level configuration merge:
// global -> project -> override
func TestHierarchicalMerging(t *testing.T) {
	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	t.Setenv("HOOKCFG_HOME", home)

	writeFile(t, filepath.Join(home, "config", "config.yml"), `
shim_binary: /opt/hookcfg/bin/hookcfg
ignore: [global-ignored]
commit:
  types: [feat, fix]
  max_header_length: 60
pins:
  constraints:
    requests: ">= 2"
`)

	projectDir := filepath.Join(tmpDir, "project")
	writeFile(t, filepath.Join(projectDir, ".hookcfg.yml"), `
manifest: ci/pre-commit.yaml
commit:
  require_scope: true
pins:
  require_exact_deps: true
  constraints:
    https://github.com/psf/black: ">= 23"
`)
	writeFile(t, filepath.Join(projectDir, ".hookcfg.override.yml"), `
ignore: [scratch]
commit:
  max_header_length: 100
`)

	startDir := filepath.Join(projectDir, "gitlab")
	require.NoError(t, os.MkdirAll(startDir, 0755))

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(os.Stderr)

	cfg, err := LoadFromWithLogger(startDir, logger)
	require.NoError(t, err)

	assert.Equal(t, "/opt/hookcfg/bin/hookcfg", cfg.ShimBinary)
	assert.Equal(t, filepath.Join(projectDir, "ci", "pre-commit.yaml"), cfg.Manifest)
	assert.Equal(t, []string{"scratch"}, cfg.Ignore)

	rules, err := cfg.CommitRules()
	require.NoError(t, err)
	assert.Equal(t, []string{"feat", "fix"}, rules.Types)
	assert.True(t, rules.RequireScope)
	assert.Equal(t, 100, rules.MaxHeaderLength)

	policy, err := cfg.PinPolicy()
	require.NoError(t, err)
	assert.True(t, policy.RequireExactDeps)
	assert.Equal(t, map[string]string{
		"requests":                     ">= 2",
		"https://github.com/psf/black": ">= 23",
	}, policy.Constraints)
}

func TestLoadLayered(t *testing.T) {
	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	t.Setenv("HOOKCFG_HOME", home)

	globalPath := filepath.Join(home, "config", "config.yml")
	writeFile(t, globalPath, "shim_binary: global-hookcfg\n")

	projectDir := filepath.Join(tmpDir, "project")
	projectPath := filepath.Join(projectDir, ".hookcfg.yml")
	writeFile(t, projectPath, "ignore: [docs]\n")
	overridePath := filepath.Join(projectDir, ".hookcfg.override.yaml")
	writeFile(t, overridePath, "shim_binary: local-hookcfg\n")

	layered, err := LoadLayered(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "hookcfg", layered.Default.ShimBinary)
	require.NotNil(t, layered.Global)
	assert.Equal(t, "global-hookcfg", layered.Global.ShimBinary)
	require.NotNil(t, layered.Project)
	assert.Equal(t, []string{"docs"}, layered.Project.Ignore)
	require.Len(t, layered.Overrides, 1)
	assert.Equal(t, overridePath, layered.Overrides[0].Path)

	assert.Equal(t, "local-hookcfg", layered.Final.ShimBinary)
	assert.Equal(t, []string{"docs"}, layered.Final.Ignore)

	assert.Equal(t, globalPath, layered.FilePaths[SourceGlobal])
	assert.Equal(t, projectPath, layered.FilePaths[SourceProject])
}

func TestLoadLayered_NoFiles(t *testing.T) {
	t.Setenv("HOOKCFG_HOME", filepath.Join(t.TempDir(), "home"))

	layered, err := LoadLayered(t.TempDir())
	require.NoError(t, err)

	assert.Nil(t, layered.Global)
	assert.Nil(t, layered.Project)
	assert.Empty(t, layered.Overrides)
	assert.Equal(t, "hookcfg", layered.Final.ShimBinary)
}

func TestLoadLayered_BrokenLayer(t *testing.T) {
	t.Setenv("HOOKCFG_HOME", filepath.Join(t.TempDir(), "home"))

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, ".hookcfg.yml"), "ignore: [\n")

	_, err := LoadLayered(projectDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))

	hookErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(projectDir, ".hookcfg.yml"), hookErr.Details["path"])
}

func TestMergeValue(t *testing.T) {
	base := map[string]interface{}{
		"a": 1,
		"nested": map[string]interface{}{
			"keep":  "base",
			"swap":  "base",
			"inner": map[string]interface{}{"x": 1},
		},
	}
	override := map[string]interface{}{
		"b": 2,
		"nested": map[string]interface{}{
			"swap":  "override",
			"inner": map[string]interface{}{"y": 2},
		},
	}

	assert.Equal(t, map[string]interface{}{
		"a": 1,
		"b": 2,
		"nested": map[string]interface{}{
			"keep":  "base",
			"swap":  "override",
			"inner": map[string]interface{}{"x": 1, "y": 2},
		},
	}, mergeValue(base, override))

	assert.Equal(t, []interface{}{"x"}, mergeValue(map[string]interface{}{}, []interface{}{"x"}))
}

func TestMergeSettings_KeepsBaseWhenOverrideEmpty(t *testing.T) {
	base := &Settings{Manifest: "a.yaml", Ignore: []string{"x"}, Extensions: map[string]interface{}{"k": 1}}
	merged := mergeSettings(base, &Settings{})

	assert.Equal(t, base, merged)
	assert.NotSame(t, base, merged)
}
