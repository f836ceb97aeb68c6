package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
	assert.Equal(t, "hookcfg settings", schema["title"])
	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "required")

	properties, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"manifest", "ignore", "shim_binary", "logging", "pins", "commit"} {
		assert.Contains(t, properties, key)
	}
	assert.NotContains(t, properties, "Extensions")
	assert.NotContains(t, properties, "Settings")
}
