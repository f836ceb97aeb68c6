package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"

	"github.com/grovetools/hookcfg/errors"
	"gopkg.in/yaml.v3"
)

// FileNames lists the manifest file names searched for, in priority order.
var FileNames = []string{".pre-commit-config.yaml", ".pre-commit-config.yml"}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse manifest")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.ConfigInvalid("manifest is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.ConfigInvalid("manifest root must be a mapping").
			WithDetail("line", root.Line)
	}

	var m Manifest
	if err := root.Decode(&m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode manifest")
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read manifest").
			WithDetail("path", path)
	}

	m, err := Parse(data)
	if err != nil {
		if hookErr, ok := errors.As(err); ok {
			hookErr.WithDetail("path", path)
		}
		return nil, err
	}
	return m, nil
}

// Find searches startDir and its parents for a manifest file.
func Find(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(filepath.Join(startDir, FileNames[0]))
		}
		dir = parent
	}
}

// Marshal renders the manifest in canonical form.
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal manifest")
	}
	return buf.Bytes(), nil
}

// Save writes the canonical form of m to path, replacing the file atomically.
func Save(path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".hookcfg-*.yaml")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create temp file").
			WithDetail("path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write manifest").
			WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write manifest").
			WithDetail("path", path)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to set manifest mode").
			WithDetail("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to replace manifest").
			WithDetail("path", path)
	}
	return nil
}

// Equal reports whether a and b declare the same record set. Source lines
// are ignored, and empty collections compare equal to absent ones.
func Equal(a, b *Manifest) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(m *Manifest) Manifest {
	out := *m
	if len(out.DefaultLanguageVersion) == 0 {
		out.DefaultLanguageVersion = nil
	}
	if len(out.DefaultStages) == 0 {
		out.DefaultStages = nil
	}
	if len(out.CI) == 0 {
		out.CI = nil
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}

	out.Repos = nil
	for _, repo := range m.Repos {
		r := repo
		r.Line = 0
		r.Extra = nilIfEmptyMap(r.Extra)
		r.Hooks = nil
		for _, hook := range repo.Hooks {
			h := hook
			h.Line = 0
			h.Extra = nilIfEmptyMap(h.Extra)
			h.Types = nilIfEmpty(h.Types)
			h.TypesOr = nilIfEmpty(h.TypesOr)
			h.ExcludeTypes = nilIfEmpty(h.ExcludeTypes)
			h.Args = nilIfEmpty(h.Args)
			h.Stages = nilIfEmpty(h.Stages)
			h.AdditionalDependencies = nilIfEmpty(h.AdditionalDependencies)
			r.Hooks = append(r.Hooks, h)
		}
		out.Repos = append(out.Repos, r)
	}
	return out
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func nilIfEmptyMap(m map[string]interface{}) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	return m
}
