// Package schema generates the JSON Schema of the hook manifest and validates
// raw manifest documents against it.
package schema

import (
	"encoding/json"

	"github.com/grovetools/hookcfg/manifest"
	"github.com/invopop/jsonschema"
)

// SchemaID is the $id stamped on the generated schema.
const SchemaID = "https://grovetools.dev/schemas/hookcfg/manifest.schema.json"

// Reflect builds the schema for manifest.Manifest. Repos and hooks reject
// unknown keys; unknown top-level keys are allowed and preserved by the
// parser.
func Reflect() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	s := r.Reflect(&manifest.Manifest{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "pre-commit hook manifest"
	s.Description = "Schema for .pre-commit-config.yaml as understood by hookcfg."
	s.Version = "http://json-schema.org/draft-07/schema#"
	s.AdditionalProperties = nil
	return s
}

// Generate returns the indented JSON form of Reflect.
func Generate() ([]byte, error) {
	return json.MarshalIndent(Reflect(), "", "  ")
}
