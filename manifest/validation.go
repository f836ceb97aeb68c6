package manifest

import (
	"fmt"
	"strings"

	"github.com/grovetools/hookcfg/errors"
)

// Severity grades a validation problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is a single validation finding.
type Problem struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", p.Line, p.Path, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.Path, p.Message)
}

// MetaHookIDs are the hooks the meta repository provides.
var MetaHookIDs = map[string]bool{
	"check-hooks-apply":      true,
	"check-useless-excludes": true,
	"identity":               true,
}

var ciSchedules = map[string]bool{
	"weekly":    true,
	"monthly":   true,
	"quarterly": true,
}

// Errors filters problems down to error severity.
func Errors(problems []Problem) []Problem {
	var out []Problem
	for _, p := range problems {
		if p.Severity == SeverityError {
			out = append(out, p)
		}
	}
	return out
}

// Validate returns a coded CONFIG_VALIDATION error when the manifest has any
// error-severity problem. Warnings never fail.
func (m *Manifest) Validate() error {
	errs := Errors(Validate(m))
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, len(errs))
	for i, p := range errs {
		messages[i] = "- " + p.String()
	}
	return errors.ValidationFailed("", messages)
}

// Validate checks the structural invariants of the manifest.
func Validate(m *Manifest) []Problem {
	v := &validator{}

	if len(m.Repos) == 0 {
		v.errorf("repos", 0, "at least one repository is required")
	}

	v.checkStages("default_stages", 0, m.DefaultStages)
	v.checkPattern("files", 0, m.Files)
	v.checkPattern("exclude", 0, m.Exclude)

	for i := range m.Repos {
		v.checkRepo(fmt.Sprintf("repos[%d]", i), &m.Repos[i])
	}

	v.checkCI(m)
	return v.problems
}

type validator struct {
	problems []Problem
}

func (v *validator) errorf(path string, line int, format string, args ...interface{}) {
	v.problems = append(v.problems, Problem{
		Severity: SeverityError,
		Path:     path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) warnf(path string, line int, format string, args ...interface{}) {
	v.problems = append(v.problems, Problem{
		Severity: SeverityWarning,
		Path:     path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkRepo(path string, repo *Repo) {
	if repo.URL == "" {
		v.errorf(path+".repo", repo.Line, "repository reference cannot be empty")
	}

	if repo.IsLocal() {
		if repo.Rev != "" {
			v.errorf(path+".rev", repo.Line, "%s repositories do not take a rev", repo.URL)
		}
	} else if repo.Rev == "" {
		v.errorf(path+".rev", repo.Line, "rev cannot be empty for %s", repo.URL)
	}

	if len(repo.Hooks) == 0 {
		v.errorf(path+".hooks", repo.Line, "at least one hook is required")
	}

	seen := make(map[string]bool)
	for j := range repo.Hooks {
		hook := &repo.Hooks[j]
		hookPath := fmt.Sprintf("%s.hooks[%d]", path, j)
		v.checkHook(hookPath, repo, hook)

		key := hook.ID
		if hook.Alias != "" {
			key = hook.ID + "/" + hook.Alias
		}
		if hook.ID != "" && seen[key] {
			v.warnf(hookPath+".id", hook.Line, "hook %q is declared more than once in this repository", hook.ID)
		}
		seen[key] = true
	}
}

func (v *validator) checkHook(path string, repo *Repo, hook *Hook) {
	if hook.ID == "" {
		v.errorf(path+".id", hook.Line, "hook id cannot be empty")
	}

	switch repo.URL {
	case RepoLocal:
		if hook.Name == "" {
			v.errorf(path+".name", hook.Line, "local hooks require a name")
		}
		if hook.Entry == "" {
			v.errorf(path+".entry", hook.Line, "local hooks require an entry")
		}
		if hook.Language == "" {
			v.errorf(path+".language", hook.Line, "local hooks require a language")
		}
	case RepoMeta:
		if hook.ID != "" && !MetaHookIDs[hook.ID] {
			v.errorf(path+".id", hook.Line, "unknown meta hook %q", hook.ID)
		}
	}

	v.checkStages(path+".stages", hook.Line, hook.Stages)
	v.checkPattern(path+".files", hook.Line, hook.Files)
	v.checkPattern(path+".exclude", hook.Line, hook.Exclude)

	for k, raw := range hook.AdditionalDependencies {
		depPath := fmt.Sprintf("%s.additional_dependencies[%d]", path, k)
		if strings.TrimSpace(raw) == "" {
			v.errorf(depPath, hook.Line, "dependency cannot be empty")
			continue
		}
		dep, err := ParseDependency(raw)
		if err != nil {
			v.warnf(depPath, hook.Line, "%v", err)
			continue
		}
		if !dep.Pinned() {
			v.warnf(depPath, hook.Line, "%s is not pinned to an exact version", dep.Name)
		}
	}
}

func (v *validator) checkStages(path string, line int, stages []string) {
	for i, stage := range stages {
		if _, ok := NormalizeStage(stage); !ok {
			v.errorf(fmt.Sprintf("%s[%d]", path, i), line, "unknown stage %q", stage)
		}
	}
}

func (v *validator) checkPattern(path string, line int, pattern string) {
	if pattern == "" {
		return
	}
	if _, err := CompilePattern(pattern); err != nil {
		if isUnsupportedSyntax(err) {
			v.errorf(path, line, "pattern uses syntax RE2 cannot evaluate: %v", err)
			return
		}
		v.errorf(path, line, "invalid pattern: %v", err)
	}
}

func (v *validator) checkCI(m *Manifest) {
	settings, err := m.CISettings()
	if err != nil {
		v.errorf("ci", 0, "%v", err)
		return
	}
	if settings.AutoupdateSchedule != "" && !ciSchedules[settings.AutoupdateSchedule] {
		v.errorf("ci.autoupdate_schedule", 0, "unknown schedule %q (weekly, monthly or quarterly)", settings.AutoupdateSchedule)
	}
	ids := m.HookIDs()
	for i, id := range settings.Skip {
		if !ids[id] {
			v.warnf(fmt.Sprintf("ci.skip[%d]", i), 0, "skips unknown hook %q", id)
		}
	}
}
