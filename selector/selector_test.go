package selector

import (
	"path/filepath"
	"testing"

	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoFiles = []string{
	".pre-commit-config.yaml",
	"docs/index.rst",
	"gitlab/client.py",
	"gitlab/v4/objects/artifacts.py",
	"setup.py",
	"tests/meta/test_dists.py",
}

func loadFixture(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(filepath.Join("..", "manifest", "testdata", "python-gitlab.yaml"))
	require.NoError(t, err)
	return m
}

func entryByID(t *testing.T, r *Result, id string) Entry {
	t.Helper()
	for _, e := range r.Entries {
		if e.HookID == id {
			return e
		}
	}
	t.Fatalf("no entry for hook %s", id)
	return Entry{}
}

func ptr(b bool) *bool { return &b }

func TestPlan_PreCommit(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{Stage: "pre-commit", Files: repoFiles})
	require.NoError(t, err)

	require.Len(t, result.Entries, 6)
	assert.Equal(t, "pre-commit", result.Stage)
	assert.Equal(t, len(repoFiles), result.Files)

	var order []string
	for _, e := range result.Entries {
		order = append(order, e.HookID)
	}
	assert.Equal(t, []string{"black", "commitizen", "flake8", "isort", "pylint", "mypy"}, order)

	commitizen := entryByID(t, result, "commitizen")
	assert.True(t, commitizen.Skipped)
	assert.Equal(t, ReasonWrongStage, commitizen.Reason)

	pylint := entryByID(t, result, "pylint")
	assert.False(t, pylint.Skipped)
	assert.Equal(t, []string{"gitlab/client.py", "gitlab/v4/objects/artifacts.py"}, pylint.Files)
	assert.Equal(t, "repos[4].hooks[0]", pylint.Path)

	assert.Equal(t, repoFiles, entryByID(t, result, "black").Files)
	assert.Len(t, result.Selected(), 5)
}

func TestPlan_LegacyStageName(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{Stage: "commit", Files: repoFiles})
	require.NoError(t, err)
	assert.Equal(t, manifest.StagePreCommit, result.Stage)
	assert.Len(t, result.Selected(), 5)
}

func TestPlan_CommitMsgStage(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{Stage: "commit-msg", Files: repoFiles})
	require.NoError(t, err)

	// Hooks without stages run everywhere; none receive files here.
	for _, e := range result.Entries {
		assert.False(t, e.Skipped, e.HookID)
		assert.Empty(t, e.Files, e.HookID)
	}
}

func TestPlan_UnknownStage(t *testing.T) {
	m := loadFixture(t)

	_, err := Plan(m, Request{Stage: "precommit"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestPlan_HookIDs(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{Files: repoFiles, HookIDs: []string{"pylint"}})
	require.NoError(t, err)

	selected := result.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "pylint", selected[0].HookID)
	assert.Equal(t, ReasonNotSelected, entryByID(t, result, "black").Reason)
}

func TestPlan_IgnoreGlobs(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{
		Stage:  "pre-commit",
		Files:  repoFiles,
		Ignore: []string{"tests", "docs/*.rst"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Files)
	assert.Equal(t, []string{
		".pre-commit-config.yaml",
		"gitlab/client.py",
		"gitlab/v4/objects/artifacts.py",
		"setup.py",
	}, entryByID(t, result, "flake8").Files)
}

func TestPlan_IgnoreNegation(t *testing.T) {
	m := loadFixture(t)

	result, err := Plan(m, Request{
		Files:  repoFiles,
		Ignore: []string{"gitlab", "!gitlab/client.py"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gitlab/client.py"}, entryByID(t, result, "pylint").Files)
}

func TestPlan_InvalidIgnore(t *testing.T) {
	m := loadFixture(t)

	_, err := Plan(m, Request{Files: repoFiles, Ignore: []string{"["}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestPlan_GlobalFilters(t *testing.T) {
	m := loadFixture(t)
	m.Exclude = "^docs/"
	m.Files = `\.(py|rst)$`

	result, err := Plan(m, Request{Stage: "pre-commit", Files: repoFiles})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Files)
	assert.NotContains(t, entryByID(t, result, "black").Files, "docs/index.rst")
	assert.NotContains(t, entryByID(t, result, "black").Files, ".pre-commit-config.yaml")
}

func TestPlan_InvalidGlobalPattern(t *testing.T) {
	m := loadFixture(t)
	m.Exclude = "(unclosed"

	_, err := Plan(m, Request{Files: repoFiles})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
}

func TestPlan_HookOptions(t *testing.T) {
	m := &manifest.Manifest{
		Repos: []manifest.Repo{{
			URL: manifest.RepoLocal,
			Hooks: []manifest.Hook{
				{ID: "typed", Types: []string{"python"}},
				{ID: "no-names", PassFilenames: ptr(false)},
				{ID: "always", Files: `\.go$`, AlwaysRun: ptr(true)},
				{ID: "never", Files: `\.go$`},
				{ID: "lookaround", Files: `^(?!docs/)`},
				{ID: "excluded", Exclude: `^(gitlab|tests)/`, ExcludeTypes: []string{"yaml"}},
			},
		}},
	}

	result, err := Plan(m, Request{Files: repoFiles})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"gitlab/client.py",
		"gitlab/v4/objects/artifacts.py",
		"setup.py",
		"tests/meta/test_dists.py",
	}, entryByID(t, result, "typed").Files)

	noNames := entryByID(t, result, "no-names")
	assert.False(t, noNames.Skipped)
	assert.Nil(t, noNames.Files)

	always := entryByID(t, result, "always")
	assert.False(t, always.Skipped)
	assert.Empty(t, always.Files)

	never := entryByID(t, result, "never")
	assert.True(t, never.Skipped)
	assert.Equal(t, ReasonNoFiles, never.Reason)

	lookaround := entryByID(t, result, "lookaround")
	assert.True(t, lookaround.Skipped)
	assert.Contains(t, lookaround.Reason, "files pattern")

	assert.Equal(t, []string{"docs/index.rst", "setup.py"}, entryByID(t, result, "excluded").Files)
}

func TestTags(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{"gitlab/client.py", []string{"file", "text", "python"}},
		{"stubs/x.pyi", []string{"file", "text", "pyi", "python"}},
		{".pre-commit-config.yaml", []string{"file", "text", "yaml"}},
		{"Dockerfile", []string{"file", "text", "dockerfile"}},
		{"docs/logo.PNG", []string{"file", "binary", "image", "png"}},
		{"CHANGELOG", []string{"file"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			tags := Tags(tt.file)
			assert.Len(t, tags, len(tt.want))
			for _, tag := range tt.want {
				assert.True(t, tags[tag], tag)
			}
		})
	}
}

func TestMatchesTypes(t *testing.T) {
	py := Tags("a.py")
	assert.True(t, matchesTypes(py, nil, nil, nil))
	assert.True(t, matchesTypes(py, []string{"text", "python"}, nil, nil))
	assert.False(t, matchesTypes(py, []string{"python", "yaml"}, nil, nil))
	assert.True(t, matchesTypes(py, nil, []string{"python", "pyi"}, nil))
	assert.False(t, matchesTypes(py, nil, []string{"yaml", "json"}, nil))
	assert.False(t, matchesTypes(py, nil, nil, []string{"text"}))
}
