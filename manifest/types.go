// Package manifest models the pre-commit hook manifest
// (.pre-commit-config.yaml): parsing, canonical marshaling, validation and
// alternate encodings.
package manifest

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Sentinel repository URLs that carry no revision.
const (
	RepoLocal = "local"
	RepoMeta  = "meta"
)

// Manifest is a parsed hook manifest. Repos are kept in file order, which is
// the order hooks run in.
type Manifest struct {
	DefaultLanguageVersion  map[string]string      `yaml:"default_language_version,omitempty" json:"default_language_version,omitempty" jsonschema:"description=Default language_version per language (e.g. python: python3.11)"`
	DefaultStages           []string               `yaml:"default_stages,omitempty" json:"default_stages,omitempty" jsonschema:"description=Stages applied to hooks that declare none"`
	Files                   string                 `yaml:"files,omitempty" json:"files,omitempty" jsonschema:"description=Global include pattern applied before hook patterns"`
	Exclude                 string                 `yaml:"exclude,omitempty" json:"exclude,omitempty" jsonschema:"description=Global exclude pattern applied before hook patterns"`
	FailFast                bool                   `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty" jsonschema:"description=Stop after the first failing hook"`
	MinimumPreCommitVersion string                 `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty" jsonschema:"description=Minimum framework version required"`
	CI                      map[string]interface{} `yaml:"ci,omitempty" json:"ci,omitempty" jsonschema:"description=pre-commit.ci settings"`
	Repos                   []Repo                 `yaml:"repos" json:"repos" jsonschema:"required,description=Hook repositories in execution order"`

	// Extra holds top-level keys this package does not model.
	Extra map[string]interface{} `yaml:"-" json:"-" jsonschema:"-"`
}

// Repo is one entry of the repos list.
type Repo struct {
	URL   string `yaml:"repo" json:"repo" jsonschema:"required,description=Repository URL or the sentinels local/meta"`
	Rev   string `yaml:"rev,omitempty" json:"rev,omitempty" jsonschema:"description=Revision pin (tag or commit)"`
	Hooks []Hook `yaml:"hooks" json:"hooks" jsonschema:"required,description=Hooks used from this repository"`

	// Extra holds repo keys this package does not model.
	Extra map[string]interface{} `yaml:"-" json:"-" jsonschema:"-"`
	Line  int                    `yaml:"-" json:"-" jsonschema:"-"`
}

// IsLocal reports whether the repo is one of the revision-less sentinels.
func (r Repo) IsLocal() bool {
	return r.URL == RepoLocal || r.URL == RepoMeta
}

// Hook is a single hook declaration inside a repo.
type Hook struct {
	ID                      string   `yaml:"id" json:"id" jsonschema:"required,description=Hook identifier within the repository"`
	Alias                   string   `yaml:"alias,omitempty" json:"alias,omitempty"`
	Name                    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description             string   `yaml:"description,omitempty" json:"description,omitempty"`
	Entry                   string   `yaml:"entry,omitempty" json:"entry,omitempty"`
	Language                string   `yaml:"language,omitempty" json:"language,omitempty"`
	LanguageVersion         string   `yaml:"language_version,omitempty" json:"language_version,omitempty"`
	Files                   string   `yaml:"files,omitempty" json:"files,omitempty" jsonschema:"description=Include pattern"`
	Exclude                 string   `yaml:"exclude,omitempty" json:"exclude,omitempty" jsonschema:"description=Exclude pattern"`
	Types                   []string `yaml:"types,omitempty" json:"types,omitempty"`
	TypesOr                 []string `yaml:"types_or,omitempty" json:"types_or,omitempty"`
	ExcludeTypes            []string `yaml:"exclude_types,omitempty" json:"exclude_types,omitempty"`
	Args                    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Stages                  []string `yaml:"stages,omitempty" json:"stages,omitempty" jsonschema:"description=Stages the hook is restricted to"`
	AdditionalDependencies  []string `yaml:"additional_dependencies,omitempty" json:"additional_dependencies,omitempty" jsonschema:"description=Extra packages installed into the hook environment (name==version)"`
	AlwaysRun               *bool    `yaml:"always_run,omitempty" json:"always_run,omitempty"`
	PassFilenames           *bool    `yaml:"pass_filenames,omitempty" json:"pass_filenames,omitempty"`
	RequireSerial           bool     `yaml:"require_serial,omitempty" json:"require_serial,omitempty"`
	Verbose                 bool     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	LogFile                 string   `yaml:"log_file,omitempty" json:"log_file,omitempty" jsonschema:"description=File the hook output is also written to"`
	MinimumPreCommitVersion string   `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty" jsonschema:"description=Minimum framework version the hook needs"`

	// Extra holds hook keys this package does not model.
	Extra map[string]interface{} `yaml:"-" json:"-" jsonschema:"-"`
	Line  int                    `yaml:"-" json:"-" jsonschema:"-"`
}

// RunsAlways reports whether the hook runs even with no matching files.
func (h Hook) RunsAlways() bool {
	return h.AlwaysRun != nil && *h.AlwaysRun
}

// PassesFilenames reports whether matched files are passed to the hook.
// The default is true.
func (h Hook) PassesFilenames() bool {
	return h.PassFilenames == nil || *h.PassFilenames
}

// HookRef locates a hook within the manifest.
type HookRef struct {
	Repo      *Repo
	Hook      *Hook
	RepoIndex int
	HookIndex int
}

// Path returns the manifest path of the hook, e.g. repos[1].hooks[0].
func (r HookRef) Path() string {
	return fmt.Sprintf("repos[%d].hooks[%d]", r.RepoIndex, r.HookIndex)
}

// Hooks flattens the manifest into hook references in execution order.
func (m *Manifest) Hooks() []HookRef {
	var refs []HookRef
	for i := range m.Repos {
		repo := &m.Repos[i]
		for j := range repo.Hooks {
			refs = append(refs, HookRef{
				Repo:      repo,
				Hook:      &repo.Hooks[j],
				RepoIndex: i,
				HookIndex: j,
			})
		}
	}
	return refs
}

// HookIDs returns every hook identifier (and alias) declared in the manifest.
func (m *Manifest) HookIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, ref := range m.Hooks() {
		ids[ref.Hook.ID] = true
		if ref.Hook.Alias != "" {
			ids[ref.Hook.Alias] = true
		}
	}
	return ids
}

// CISettings is the typed view of the free-form ci section.
type CISettings struct {
	AutofixCommitMsg    string   `mapstructure:"autofix_commit_msg"`
	AutofixPRs          bool     `mapstructure:"autofix_prs"`
	AutoupdateBranch    string   `mapstructure:"autoupdate_branch"`
	AutoupdateCommitMsg string   `mapstructure:"autoupdate_commit_msg"`
	AutoupdateSchedule  string   `mapstructure:"autoupdate_schedule"`
	Skip                []string `mapstructure:"skip"`
	Submodules          bool     `mapstructure:"submodules"`
}

// CISettings decodes the ci section. A manifest without one yields the zero
// value.
func (m *Manifest) CISettings() (CISettings, error) {
	var settings CISettings
	if len(m.CI) == 0 {
		return settings, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return settings, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(m.CI); err != nil {
		return settings, fmt.Errorf("failed to decode ci section: %w", err)
	}
	return settings, nil
}
