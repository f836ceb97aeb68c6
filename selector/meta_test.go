package selector

import (
	"testing"

	"github.com/grovetools/hookcfg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHooksApply(t *testing.T) {
	m := loadFixture(t)

	assert.Empty(t, CheckHooksApply(m, repoFiles))

	problems := CheckHooksApply(m, []string{"setup.py", "docs/index.rst"})
	require.Len(t, problems, 1)
	assert.Equal(t, "repos[4].hooks[0]", problems[0].Path)
	assert.Equal(t, 25, problems[0].Line)
	assert.Equal(t, manifest.SeverityError, problems[0].Severity)
	assert.Contains(t, problems[0].Message, "pylint does not apply")
}

func TestCheckHooksApply_SkipsMetaAndAlwaysRun(t *testing.T) {
	always := true
	m := &manifest.Manifest{
		Repos: []manifest.Repo{
			{URL: manifest.RepoMeta, Hooks: []manifest.Hook{{ID: "check-hooks-apply", Files: `^nothing$`}}},
			{URL: manifest.RepoLocal, Hooks: []manifest.Hook{
				{ID: "always", Files: `\.go$`, AlwaysRun: &always},
				{ID: "typed", Files: `^gitlab/`, Types: []string{"yaml"}},
			}},
		},
	}

	problems := CheckHooksApply(m, repoFiles)
	require.Len(t, problems, 1)
	assert.Equal(t, "repos[1].hooks[1]", problems[0].Path)
}

func TestCheckUselessExcludes(t *testing.T) {
	m := &manifest.Manifest{
		Exclude: `^vendor/`,
		Repos: []manifest.Repo{{
			URL: manifest.RepoLocal,
			Hooks: []manifest.Hook{
				{ID: "useful", Exclude: `^tests/`},
				{ID: "out-of-scope", Files: `^gitlab/`, Exclude: `^tests/`},
				{ID: "bad", Exclude: `(unclosed`},
				{ID: "plain"},
			},
		}},
	}

	problems := CheckUselessExcludes(m, repoFiles)
	require.Len(t, problems, 3)

	assert.Equal(t, "exclude", problems[0].Path)
	assert.Contains(t, problems[0].Message, `"^vendor/"`)

	assert.Equal(t, "repos[0].hooks[1].exclude", problems[1].Path)
	assert.Contains(t, problems[1].Message, "out-of-scope")

	assert.Equal(t, "repos[0].hooks[2].exclude", problems[2].Path)
	assert.Contains(t, problems[2].Message, "error parsing regexp")
}

func TestCheckUselessExcludes_GlobalExcludeNarrowsHookScope(t *testing.T) {
	m := &manifest.Manifest{
		Exclude: `^tests/`,
		Repos: []manifest.Repo{{
			URL:   manifest.RepoLocal,
			Hooks: []manifest.Hook{{ID: "redundant", Exclude: `^tests/meta/`}},
		}},
	}

	problems := CheckUselessExcludes(m, repoFiles)
	require.Len(t, problems, 1)
	assert.Equal(t, "repos[0].hooks[0].exclude", problems[0].Path)
}
