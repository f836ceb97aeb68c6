package pins

import (
	"path/filepath"
	"testing"

	"github.com/grovetools/hookcfg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRevision(t *testing.T) {
	testCases := []struct {
		rev  string
		kind RevisionKind
	}{
		{"", KindNone},
		{"23.1.0", KindSemver},
		{"v2.42.1", KindSemver},
		{"v1.0.1", KindSemver},
		{"6.0.0", KindSemver},
		{"1234567", KindSemver},
		{"a1b2c3d", KindCommit},
		{"3e0d1b8f7c6a5e4d3c2b1a0f9e8d7c6b5a4f3e2d", KindCommit},
		{"main", KindBranch},
		{"HEAD", KindBranch},
		{"release/next", KindOther},
	}

	for _, tc := range testCases {
		t.Run(tc.rev, func(t *testing.T) {
			assert.Equal(t, tc.kind, ClassifyRevision(tc.rev))
		})
	}
}

func TestParseRevision(t *testing.T) {
	v := ParseRevision("v2.16.2")
	require.NotNil(t, v)
	assert.Equal(t, "2.16.2", v.String())
	assert.Nil(t, ParseRevision("main"))
}

func loadFixture(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(filepath.Join("..", "manifest", "testdata", "python-gitlab.yaml"))
	require.NoError(t, err)
	return m
}

func TestCheck_Fixture(t *testing.T) {
	m := loadFixture(t)

	report, err := Check(m, Policy{RequireSemverRevs: true, RequireExactDeps: true})
	require.NoError(t, err)

	assert.Len(t, report.Revisions, 6)
	for _, rev := range report.Revisions {
		assert.Equal(t, KindSemver, rev.Kind, rev.Repo)
	}
	assert.Len(t, report.Dependencies, 7)
	for _, dep := range report.Dependencies {
		assert.True(t, dep.Pinned, dep.Raw)
	}
	assert.Empty(t, report.Problems)
}

func TestCheck_Policy(t *testing.T) {
	data := `
repos:
  - repo: https://github.com/psf/black
    rev: main
    hooks: [{id: black}]
  - repo: https://github.com/pycqa/flake8
    rev: a1b2c3d
    hooks:
      - id: flake8
        additional_dependencies: [flake8-bugbear]
  - repo: local
    hooks: [{id: x, name: x, entry: x, language: system}]
`
	m, err := manifest.Parse([]byte(data))
	require.NoError(t, err)

	lenient, err := Check(m, Policy{})
	require.NoError(t, err)
	assert.Len(t, lenient.Revisions, 2, "local repos are skipped")
	assert.Empty(t, lenient.Violations())
	assert.Len(t, lenient.Problems, 2)

	strict, err := Check(m, Policy{RequireSemverRevs: true, RequireExactDeps: true})
	require.NoError(t, err)
	paths := make(map[string]bool)
	for _, p := range strict.Violations() {
		paths[p.Path] = true
	}
	assert.True(t, paths["repos[0].rev"])
	assert.True(t, paths["repos[1].rev"])
	assert.True(t, paths["repos[1].hooks[0].additional_dependencies[0]"])
}

func TestCheck_Constraints(t *testing.T) {
	m := loadFixture(t)

	report, err := Check(m, Policy{Constraints: map[string]string{
		"https://github.com/psf/black": ">= 24.0",
		"Types_Requests":               "< 2.28",
		"pytest":                       "~> 7.2",
	}})
	require.NoError(t, err)

	violations := report.Violations()
	require.Len(t, violations, 2)
	assert.Equal(t, "repos[0].rev", violations[0].Path)
	assert.Contains(t, violations[0].Message, "does not satisfy")
	assert.Equal(t, "repos[5].hooks[0].additional_dependencies[1]", violations[1].Path)
}

func TestCheck_InvalidConstraint(t *testing.T) {
	_, err := Check(&manifest.Manifest{}, Policy{Constraints: map[string]string{"black": "nonsense!"}})
	assert.Error(t, err)
}

func TestCheck_InconsistentDependencies(t *testing.T) {
	data := `
repos:
  - repo: https://github.com/pycqa/pylint
    rev: v2.16.2
    hooks:
      - id: pylint
        additional_dependencies: [requests==2.28.2]
  - repo: https://github.com/pre-commit/mirrors-mypy
    rev: v1.0.1
    hooks:
      - id: mypy
        additional_dependencies: [Requests==2.31.0]
`
	m, err := manifest.Parse([]byte(data))
	require.NoError(t, err)

	report, err := Check(m, Policy{})
	require.NoError(t, err)
	require.Len(t, report.Problems, 1)
	assert.Equal(t, manifest.SeverityWarning, report.Problems[0].Severity)
	assert.Equal(t, "requests is pinned inconsistently: 2.28.2 in pylint, 2.31.0 in mypy", report.Problems[0].Message)
}
