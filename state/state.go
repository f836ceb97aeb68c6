// Package state keeps a small per-repository record of what hookcfg has
// done to a repository, stored inside the git directory so it is never
// committed.
package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/hookcfg/git"
)

// State is the on-disk record as a generic map of key-value pairs.
type State map[string]interface{}

// FileName is the state file name inside <git dir>/hookcfg.
const FileName = "state.yml"

const installKey = "install"

// Store reads and writes a State file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// ForRepo returns the store of the repository containing dir.
func ForRepo(ctx context.Context, dir string) (*Store, error) {
	gitDir, err := git.GitDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(gitDir, "hookcfg", FileName)), nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load loads the state from the state file.
// Returns an empty state if the file doesn't exist.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if state == nil {
		state = make(State)
	}
	return state, nil
}

// Save writes the state file through a temporary file and rename.
func (s *Store) Save(state State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Get retrieves a value from the state by key.
// Returns the value and true if found, nil and false otherwise.
func (s *Store) Get(key string) (interface{}, bool, error) {
	state, err := s.Load()
	if err != nil {
		return nil, false, err
	}

	val, ok := state[key]
	return val, ok, nil
}

// GetString returns "" when the key is missing or not a string.
func (s *Store) GetString(key string) (string, error) {
	val, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", err
	}

	str, _ := val.(string)
	return str, nil
}

// Set sets a value in the state.
func (s *Store) Set(key string, value interface{}) error {
	state, err := s.Load()
	if err != nil {
		return err
	}

	state[key] = value
	return s.Save(state)
}

// Delete removes a key from the state.
func (s *Store) Delete(key string) error {
	state, err := s.Load()
	if err != nil {
		return err
	}

	delete(state, key)
	return s.Save(state)
}

// InstallRecord describes the hook shims written by hookcfg install.
type InstallRecord struct {
	Binary      string    `yaml:"binary"`
	HookTypes   []string  `yaml:"hook_types"`
	Hooks       []string  `yaml:"hooks"`
	Manifest    string    `yaml:"manifest,omitempty"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// Missing returns the hook types in wanted that were not installed.
func (r *InstallRecord) Missing(wanted []string) []string {
	installed := make(map[string]bool, len(r.HookTypes))
	for _, hookType := range r.HookTypes {
		installed[hookType] = true
	}

	var missing []string
	for _, hookType := range wanted {
		if !installed[hookType] {
			missing = append(missing, hookType)
		}
	}
	return missing
}

// RecordInstall stores rec, replacing any earlier record.
func (s *Store) RecordInstall(rec InstallRecord) error {
	if rec.InstalledAt.IsZero() {
		rec.InstalledAt = time.Now()
	}
	rec.InstalledAt = rec.InstalledAt.UTC().Truncate(time.Second)
	return s.Set(installKey, rec)
}

// Install returns the install record, or nil when none exists.
func (s *Store) Install() (*InstallRecord, error) {
	raw, ok, err := s.Get(installKey)
	if err != nil || !ok {
		return nil, err
	}

	var rec InstallRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &rec,
		TagName:    "yaml",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode install record: %w", err)
	}
	return &rec, nil
}

// ClearInstall removes the install record.
func (s *Store) ClearInstall() error {
	return s.Delete(installKey)
}
