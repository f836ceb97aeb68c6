package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Document converts the manifest into plain maps and slices, in the shape
// its canonical YAML has. Null values are dropped.
func Document(m *Manifest) (map[string]interface{}, error) {
	data, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode canonical manifest: %w", err)
	}
	return dropNulls(doc).(map[string]interface{}), nil
}

func dropNulls(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = dropNulls(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, val := range t {
			if val == nil {
				continue
			}
			out = append(out, dropNulls(val))
		}
		return out
	default:
		return v
	}
}

// ExportJSON renders the manifest as indented JSON.
func ExportJSON(m *Manifest) ([]byte, error) {
	doc, err := Document(m)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportTOML renders the manifest as TOML, with repos and hooks as arrays of
// tables.
func ExportTOML(m *Manifest) ([]byte, error) {
	doc, err := Document(m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal manifest to TOML: %w", err)
	}
	return buf.Bytes(), nil
}
