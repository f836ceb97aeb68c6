// Package selector resolves which hooks a manifest would run for a stage and
// which files each of them would receive.
package selector

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/moby/patternmatcher"

	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/manifest"
)

// Skip reasons reported on plan entries.
const (
	ReasonNotSelected = "not selected"
	ReasonWrongStage  = "not in stage"
	ReasonNoFiles     = "no files to check"
)

// fileStages are the stages whose hooks receive staged or changed files.
// Hooks in every other stage are invoked without a file list.
var fileStages = map[string]bool{
	manifest.StagePreCommit:      true,
	manifest.StagePreMergeCommit: true,
	manifest.StagePrePush:        true,
	manifest.StageManual:         true,
}

// Request describes what to plan for.
type Request struct {
	// Stage restricts the plan to hooks running in this stage. Legacy names
	// are accepted. Empty means every hook is considered.
	Stage string
	// Files is the candidate file set, slash separated and relative to the
	// repository root.
	Files []string
	// HookIDs restricts the plan to hooks with these ids or aliases.
	HookIDs []string
	// Ignore holds dockerignore-style globs removed from Files before any
	// files/exclude regex is applied.
	Ignore []string
}

// Entry is the plan for a single hook.
type Entry struct {
	Repo    string   `json:"repo"`
	HookID  string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Path    string   `json:"path"`
	Stage   string   `json:"stage,omitempty"`
	Files   []string `json:"files,omitempty"`
	Skipped bool     `json:"skipped"`
	Reason  string   `json:"reason,omitempty"`
}

// Result is an ordered plan covering every hook in the manifest.
type Result struct {
	Stage   string  `json:"stage,omitempty"`
	Files   int     `json:"candidate_files"`
	Entries []Entry `json:"hooks"`
}

// Selected returns the entries that would run.
func (r *Result) Selected() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Skipped {
			out = append(out, e)
		}
	}
	return out
}

// Plan walks the manifest hooks in declaration order and decides for each
// whether it runs and on which files.
func Plan(m *manifest.Manifest, req Request) (*Result, error) {
	stage := ""
	if req.Stage != "" {
		canonical, ok := manifest.NormalizeStage(req.Stage)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown stage %q", req.Stage))
		}
		stage = canonical
	}

	candidates, err := applyIgnore(req.Files, req.Ignore)
	if err != nil {
		return nil, err
	}
	candidates, err = filterGlobal(m, candidates)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, id := range req.HookIDs {
		wanted[id] = true
	}

	result := &Result{Stage: stage, Files: len(candidates)}
	for _, ref := range m.Hooks() {
		hook := ref.Hook
		entry := Entry{
			Repo:   ref.Repo.URL,
			HookID: hook.ID,
			Name:   hook.Name,
			Path:   ref.Path(),
			Stage:  stage,
		}

		switch {
		case len(wanted) > 0 && !wanted[hook.ID] && !(hook.Alias != "" && wanted[hook.Alias]):
			entry.Skipped, entry.Reason = true, ReasonNotSelected
		case stage != "" && !contains(m.EffectiveStages(hook), stage):
			entry.Skipped, entry.Reason = true, ReasonWrongStage
		case stage != "" && !fileStages[stage]:
			// Message and checkout hooks take no file list.
		default:
			files, err := FilterHook(hook, candidates)
			if err != nil {
				entry.Skipped, entry.Reason = true, err.Error()
				break
			}
			if len(files) == 0 && !hook.RunsAlways() {
				entry.Skipped, entry.Reason = true, ReasonNoFiles
				break
			}
			if hook.PassesFilenames() {
				entry.Files = files
			}
		}

		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// FilterHook narrows files to those a hook's files, exclude and type filters
// accept.
func FilterHook(hook *manifest.Hook, files []string) ([]string, error) {
	include, err := compileOptional(hook.Files)
	if err != nil {
		return nil, fmt.Errorf("files pattern: %w", err)
	}
	exclude, err := compileOptional(hook.Exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude pattern: %w", err)
	}

	var out []string
	for _, f := range files {
		if include != nil && !include.MatchString(f) {
			continue
		}
		if exclude != nil && exclude.MatchString(f) {
			continue
		}
		if !matchesTypes(Tags(f), hook.Types, hook.TypesOr, hook.ExcludeTypes) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func filterGlobal(m *manifest.Manifest, files []string) ([]string, error) {
	include, err := compileOptional(m.Files)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid global files pattern").
			WithDetail("pattern", m.Files)
	}
	exclude, err := compileOptional(m.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid global exclude pattern").
			WithDetail("pattern", m.Exclude)
	}

	var out []string
	for _, f := range files {
		if include != nil && !include.MatchString(f) {
			continue
		}
		if exclude != nil && exclude.MatchString(f) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func applyIgnore(files, ignore []string) ([]string, error) {
	normalized := make([]string, 0, len(files))
	for _, f := range files {
		normalized = append(normalized, filepath.ToSlash(f))
	}
	if len(ignore) == 0 {
		return normalized, nil
	}

	pm, err := patternmatcher.New(ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid ignore pattern")
	}

	var out []string
	for _, f := range normalized {
		ignored, err := pm.MatchesOrParentMatches(f)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "matching ignore patterns").
				WithDetail("file", f)
		}
		if !ignored {
			out = append(out, f)
		}
	}
	return out, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return manifest.CompilePattern(pattern)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
