package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/hookcfg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	data, err := Generate()
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "http://json-schema.org/draft-07/schema#", parsed["$schema"])
	assert.Equal(t, SchemaID, parsed["$id"])
	assert.Equal(t, "object", parsed["type"])
	assert.Equal(t, []interface{}{"repos"}, parsed["required"])
	assert.NotContains(t, parsed, "additionalProperties")

	props, ok := parsed["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"default_language_version", "default_stages", "files", "exclude", "fail_fast", "ci", "repos"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, props, "Extra")

	defs, ok := parsed["$defs"].(map[string]interface{})
	require.True(t, ok)
	hook, ok := defs["Hook"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"id"}, hook["required"])
	assert.Equal(t, false, hook["additionalProperties"])
	assert.NotContains(t, hook["properties"], "Line")
	assert.NotContains(t, hook["properties"], "Extra")
	assert.Contains(t, hook["properties"], "log_file")
	assert.Contains(t, hook["properties"], "minimum_pre_commit_version")
}

func TestValidator_Fixture(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join("..", "manifest", "testdata", "python-gitlab.yaml"))
	require.NoError(t, err)
	assert.NoError(t, v.ValidateDocument(data))
}

func TestValidator_Rejects(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		data     string
		location string
	}{
		{"missing repos", "fail_fast: true\n", "/"},
		{"repos not a list", "repos: {}\n", "/repos"},
		{"numeric rev", "repos:\n- repo: https://x\n  rev: 6.0\n  hooks: [{id: x}]\n", "/repos/0/rev"},
		{"missing hook id", "repos:\n- repo: https://x\n  rev: v1\n  hooks: [{name: x}]\n", "/repos/0/hooks/0"},
		{"unknown hook key", "repos:\n- repo: https://x\n  rev: v1\n  hooks: [{id: x, filez: y}]\n", "/repos/0/hooks/0"},
		{"stages not a list", "repos:\n- repo: https://x\n  rev: v1\n  hooks: [{id: x, stages: commit-msg}]\n", "/repos/0/hooks/0/stages"},
		{"bad dependency type", "repos:\n- repo: https://x\n  rev: v1\n  hooks: [{id: x, additional_dependencies: [{a: 1}]}]\n", "/repos/0/hooks/0/additional_dependencies/0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateDocument([]byte(tc.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeSchemaInvalid), "got %v", err)
			assert.Contains(t, err.Error(), "- "+tc.location+":")
		})
	}
}

func TestValidator_AllowsUnknownTopLevelKeys(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.ValidateDocument([]byte("repos: []\nexotic: 1\n")))
}

func TestValidator_AcceptsOptionalHookKeys(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	doc := `repos:
  - repo: https://github.com/psf/black
    rev: 23.1.0
    hooks:
      - id: black
        log_file: black.log
        minimum_pre_commit_version: '2.9.0'
`
	assert.NoError(t, v.ValidateDocument([]byte(doc)))
}

func TestValidator_BadYAML(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	err = v.ValidateDocument([]byte("repos: [\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

func TestStringKeys(t *testing.T) {
	in := map[interface{}]interface{}{1: []interface{}{map[interface{}]interface{}{true: "x"}}}
	out := stringKeys(in)
	assert.Equal(t, map[string]interface{}{"1": []interface{}{map[string]interface{}{"true": "x"}}}, out)
}
