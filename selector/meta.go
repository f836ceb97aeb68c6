package selector

import (
	"fmt"

	"github.com/grovetools/hookcfg/manifest"
)

// CheckHooksApply reports hooks with a files pattern that matches none of the
// given files. Meta hooks and always_run hooks are not checked.
func CheckHooksApply(m *manifest.Manifest, files []string) []manifest.Problem {
	candidates, err := filterGlobal(m, files)
	if err != nil {
		return []manifest.Problem{patternProblem("files", 0, err)}
	}

	var problems []manifest.Problem
	for _, ref := range m.Hooks() {
		hook := ref.Hook
		if ref.Repo.URL == manifest.RepoMeta || hook.RunsAlways() || hook.Files == "" {
			continue
		}
		matched, err := FilterHook(hook, candidates)
		if err != nil {
			problems = append(problems, patternProblem(ref.Path(), hook.Line, err))
			continue
		}
		if len(matched) == 0 {
			problems = append(problems, manifest.Problem{
				Severity: manifest.SeverityError,
				Path:     ref.Path(),
				Line:     hook.Line,
				Message:  fmt.Sprintf("%s does not apply to this repository", hook.ID),
			})
		}
	}
	return problems
}

// CheckUselessExcludes reports exclude patterns, global or per hook, that
// exclude none of the given files.
func CheckUselessExcludes(m *manifest.Manifest, files []string) []manifest.Problem {
	var problems []manifest.Problem

	if m.Exclude != "" {
		re, err := manifest.CompilePattern(m.Exclude)
		switch {
		case err != nil:
			problems = append(problems, patternProblem("exclude", 0, err))
		case !anyMatch(re.MatchString, files):
			problems = append(problems, manifest.Problem{
				Severity: manifest.SeverityError,
				Path:     "exclude",
				Message:  fmt.Sprintf("the global exclude pattern %q does not match any files", m.Exclude),
			})
		}
	}

	candidates, err := filterGlobal(m, files)
	if err != nil {
		return append(problems, patternProblem("files", 0, err))
	}

	for _, ref := range m.Hooks() {
		hook := ref.Hook
		if ref.Repo.URL == manifest.RepoMeta || hook.Exclude == "" {
			continue
		}

		// Files the hook would see without its exclude.
		unexcluded := *hook
		unexcluded.Exclude = ""
		scope, err := FilterHook(&unexcluded, candidates)
		if err != nil {
			problems = append(problems, patternProblem(ref.Path(), hook.Line, err))
			continue
		}

		re, err := manifest.CompilePattern(hook.Exclude)
		if err != nil {
			problems = append(problems, patternProblem(ref.Path()+".exclude", hook.Line, err))
			continue
		}
		if !anyMatch(re.MatchString, scope) {
			problems = append(problems, manifest.Problem{
				Severity: manifest.SeverityError,
				Path:     ref.Path() + ".exclude",
				Line:     hook.Line,
				Message:  fmt.Sprintf("the exclude pattern %q for %s does not match any files", hook.Exclude, hook.ID),
			})
		}
	}
	return problems
}

func anyMatch(match func(string) bool, files []string) bool {
	for _, f := range files {
		if match(f) {
			return true
		}
	}
	return false
}

func patternProblem(path string, line int, err error) manifest.Problem {
	return manifest.Problem{
		Severity: manifest.SeverityError,
		Path:     path,
		Line:     line,
		Message:  err.Error(),
	}
}
