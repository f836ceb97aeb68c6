package manifest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes the known top-level keys and keeps the rest in Extra.
func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: manifest root must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var err error
		switch key.Value {
		case "default_language_version":
			err = value.Decode(&m.DefaultLanguageVersion)
		case "default_stages":
			err = value.Decode(&m.DefaultStages)
		case "files":
			err = value.Decode(&m.Files)
		case "exclude":
			err = value.Decode(&m.Exclude)
		case "fail_fast":
			err = value.Decode(&m.FailFast)
		case "minimum_pre_commit_version":
			err = value.Decode(&m.MinimumPreCommitVersion)
		case "ci":
			err = value.Decode(&m.CI)
		case "repos":
			err = value.Decode(&m.Repos)
		default:
			var v interface{}
			if err = value.Decode(&v); err == nil {
				if m.Extra == nil {
					m.Extra = make(map[string]interface{})
				}
				m.Extra[key.Value] = v
			}
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", key.Value, err)
		}
	}

	return nil
}

// MarshalYAML emits keys in canonical order followed by sorted extras.
func (m Manifest) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	add := func(key string, value interface{}) error {
		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&v,
		)
		return nil
	}

	type field struct {
		key   string
		value interface{}
		set   bool
	}
	fields := []field{
		{"default_language_version", m.DefaultLanguageVersion, len(m.DefaultLanguageVersion) > 0},
		{"default_stages", m.DefaultStages, len(m.DefaultStages) > 0},
		{"files", m.Files, m.Files != ""},
		{"exclude", m.Exclude, m.Exclude != ""},
		{"fail_fast", m.FailFast, m.FailFast},
		{"minimum_pre_commit_version", m.MinimumPreCommitVersion, m.MinimumPreCommitVersion != ""},
		{"ci", m.CI, len(m.CI) > 0},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := add(f.key, f.value); err != nil {
			return nil, err
		}
	}

	repos := m.Repos
	if repos == nil {
		repos = []Repo{}
	}
	if err := add("repos", repos); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := add(k, m.Extra[k]); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// UnmarshalYAML records the source line of the repo and keeps unknown keys.
func (r *Repo) UnmarshalYAML(node *yaml.Node) error {
	type plain Repo
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	extra, err := decodeExtras(node, repoKeys)
	if err != nil {
		return err
	}
	*r = Repo(p)
	r.Extra = extra
	r.Line = node.Line
	return nil
}

// MarshalYAML emits the modeled keys in field order, then sorted extras.
func (r Repo) MarshalYAML() (interface{}, error) {
	type plain Repo
	return withExtras(plain(r), r.Extra)
}

// UnmarshalYAML records the source line of the hook and keeps unknown keys.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type plain Hook
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	extra, err := decodeExtras(node, hookKeys)
	if err != nil {
		return err
	}
	*h = Hook(p)
	h.Extra = extra
	h.Line = node.Line
	return nil
}

// MarshalYAML emits the modeled keys in field order, then sorted extras.
func (h Hook) MarshalYAML() (interface{}, error) {
	type plain Hook
	return withExtras(plain(h), h.Extra)
}

var (
	repoKeys = yamlKeys(reflect.TypeOf(Repo{}))
	hookKeys = yamlKeys(reflect.TypeOf(Hook{}))
)

// yamlKeys lists the mapping keys a struct decodes.
func yamlKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// decodeExtras returns the entries of a mapping node whose keys are not in
// known, or nil when there are none.
func decodeExtras(node *yaml.Node, known map[string]bool) (map[string]interface{}, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}
	var extra map[string]interface{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if known[key.Value] {
			continue
		}
		var v interface{}
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode %s: %w", key.Line, key.Value, err)
		}
		if extra == nil {
			extra = make(map[string]interface{})
		}
		extra[key.Value] = v
	}
	return extra, nil
}

// withExtras encodes v and appends extra as sorted trailing keys.
func withExtras(v interface{}, extra map[string]interface{}) (interface{}, error) {
	if len(extra) == 0 {
		return v, nil
	}

	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var value yaml.Node
		if err := value.Encode(extra[k]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return &node, nil
}
