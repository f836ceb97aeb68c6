package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/grovetools/hookcfg/conventional"
	"github.com/grovetools/hookcfg/pins"
)

// Sections decoded from Extensions by the packages that own them.
const (
	SectionLogging = "logging"
	SectionPins    = "pins"
	SectionCommit  = "commit"
)

// Settings represents a .hookcfg.yml file
type Settings struct {
	// Manifest is the manifest path, relative to the settings file's directory.
	Manifest string `yaml:"manifest,omitempty" jsonschema:"description=Path of the pre-commit manifest (default: .pre-commit-config.yaml)"`
	// Ignore holds dockerignore-style globs removed from every file set.
	Ignore []string `yaml:"ignore,omitempty" jsonschema:"description=Globs excluded from plans and meta checks"`
	// ShimBinary is the executable the installed git hooks invoke.
	ShimBinary string `yaml:"shim_binary,omitempty" jsonschema:"description=Executable the git hook shims call (default: hookcfg)"`

	// Extensions captures the logging, pins and commit sections and any
	// other top-level key.
	Extensions map[string]interface{} `yaml:",inline" jsonschema:"-"`
}

// SetDefaults sets default values for configuration
func (s *Settings) SetDefaults() {
	if s.ShimBinary == "" {
		s.ShimBinary = "hookcfg"
	}
}

// UnmarshalExtension decodes a top-level section into target, which must be
// a pointer. Fields already set on target are kept unless the section sets
// them. A missing section leaves target untouched.
//
// Example:
//
//	var policy pins.Policy
//	err := settings.UnmarshalExtension("pins", &policy)
func (s *Settings) UnmarshalExtension(key string, target interface{}) error {
	section, ok := s.Extensions[key]
	if !ok || section == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("failed to decode %s settings: %w", key, err)
	}
	return nil
}

// PinPolicy returns the pins section.
func (s *Settings) PinPolicy() (pins.Policy, error) {
	var policy pins.Policy
	err := s.UnmarshalExtension(SectionPins, &policy)
	return policy, err
}

// CommitRules returns the commit section layered over
// conventional.DefaultRules.
func (s *Settings) CommitRules() (conventional.Rules, error) {
	rules := conventional.DefaultRules()
	err := s.UnmarshalExtension(SectionCommit, &rules)
	return rules, err
}

// ConfigSource identifies the origin of a configuration value.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceGlobal   ConfigSource = "global"
	SourceProject  ConfigSource = "project"
	SourceOverride ConfigSource = "override"
)

// OverrideSource holds a raw configuration from an override file and its path.
type OverrideSource struct {
	Path     string
	Settings *Settings
}

// LayeredConfig holds the raw configuration from each source file,
// as well as the final merged configuration, for analysis purposes.
type LayeredConfig struct {
	Default   *Settings               // Settings with only default values applied.
	Global    *Settings               // Raw settings from the global file.
	Project   *Settings               // Raw settings from the project file.
	Overrides []OverrideSource        // Raw settings from override files, in order of application.
	Final     *Settings               // The fully merged and validated settings.
	FilePaths map[ConfigSource]string // Maps sources to their file paths.
}
