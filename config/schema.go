package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/hookcfg/conventional"
	"github.com/grovetools/hookcfg/pins"
)

// GenerateSchema generates the JSON Schema for .hookcfg.yml. The extension
// sections owned by other packages are described through their types.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
	}

	type LoggingFormat struct {
		Preset             string `yaml:"preset,omitempty" jsonschema:"enum=default,enum=simple,enum=json,description=Log line format"`
		DisableTimestamp   bool   `yaml:"disable_timestamp,omitempty"`
		DisableComponent   bool   `yaml:"disable_component,omitempty"`
		StructuredToStderr string `yaml:"structured_to_stderr,omitempty" jsonschema:"enum=auto,enum=always,enum=never"`
	}
	type LoggingFile struct {
		Enabled bool   `yaml:"enabled,omitempty"`
		Path    string `yaml:"path,omitempty"`
		Format  string `yaml:"format,omitempty" jsonschema:"enum=text,enum=json"`
	}
	type Logging struct {
		Level        string        `yaml:"level,omitempty" jsonschema:"description=Minimum log level (HOOKCFG_LOG_LEVEL wins)"`
		ReportCaller bool          `yaml:"report_caller,omitempty"`
		File         LoggingFile   `yaml:"file,omitempty"`
		Format       LoggingFormat `yaml:"format,omitempty"`
	}

	// SettingsDocument is the full file layout with the extension sections
	// spelled out.
	type SettingsDocument struct {
		Settings
		Logging *Logging            `yaml:"logging,omitempty" jsonschema:"description=Structured logging settings"`
		Pins    *pins.Policy        `yaml:"pins,omitempty" jsonschema:"description=Pin policy used by hookcfg pins"`
		Commit  *conventional.Rules `yaml:"commit,omitempty" jsonschema:"description=Commit message rules used by hookcfg commit-msg"`
	}

	schema := r.Reflect(&SettingsDocument{})
	schema.Title = "hookcfg settings"
	schema.Description = "Schema for .hookcfg.yml files."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
