package pins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grovetools/hookcfg/manifest"
	"github.com/hashicorp/go-version"
)

// Policy controls how strictly pins are judged.
type Policy struct {
	// RequireSemverRevs turns commit, branch and unrecognised revs into errors.
	RequireSemverRevs bool `yaml:"require_semver_revs" json:"require_semver_revs"`
	// RequireExactDeps turns unpinned additional dependencies into errors.
	RequireExactDeps bool `yaml:"require_exact_deps" json:"require_exact_deps"`
	// Constraints maps a repo URL or package name to a version constraint
	// such as ">= 23.0, < 24".
	Constraints map[string]string `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// RevisionEntry describes one repo's revision pin.
type RevisionEntry struct {
	Repo    string       `json:"repo"`
	Rev     string       `json:"rev"`
	Kind    RevisionKind `json:"kind"`
	Version string       `json:"version,omitempty"`
	Line    int          `json:"line,omitempty"`
}

// DependencyEntry describes one additional dependency of a hook.
type DependencyEntry struct {
	HookID   string `json:"hook"`
	Raw      string `json:"raw"`
	Name     string `json:"name"`
	Operator string `json:"operator,omitempty"`
	Version  string `json:"version,omitempty"`
	Pinned   bool   `json:"pinned"`
	Line     int    `json:"line,omitempty"`
}

// Report is the result of Check.
type Report struct {
	Revisions    []RevisionEntry    `json:"revisions"`
	Dependencies []DependencyEntry  `json:"dependencies"`
	Problems     []manifest.Problem `json:"problems,omitempty"`
}

// Violations returns the error-severity problems.
func (r *Report) Violations() []manifest.Problem {
	return manifest.Errors(r.Problems)
}

// Check inspects every revision and dependency pin in m under policy.
func Check(m *manifest.Manifest, policy Policy) (*Report, error) {
	constraints, err := compileConstraints(policy.Constraints)
	if err != nil {
		return nil, err
	}

	c := &checker{policy: policy, constraints: constraints, report: &Report{}}
	revsByURL := make(map[string]string)

	for i, repo := range m.Repos {
		if repo.IsLocal() {
			continue
		}
		path := fmt.Sprintf("repos[%d].rev", i)
		c.checkRevision(path, repo)

		if prev, ok := revsByURL[repo.URL]; ok && prev != repo.Rev {
			c.add(manifest.SeverityWarning, path, repo.Line, "%s is also pinned to %s", repo.URL, prev)
		}
		revsByURL[repo.URL] = repo.Rev
	}

	depVersions := make(map[string]map[string]string)
	for _, ref := range m.Hooks() {
		for k, raw := range ref.Hook.AdditionalDependencies {
			path := fmt.Sprintf("%s.additional_dependencies[%d]", ref.Path(), k)
			dep, ok := c.checkDependency(path, ref.Hook, raw)
			if !ok || !dep.Pinned() {
				continue
			}
			key := normalizePackage(dep.Name)
			if depVersions[key] == nil {
				depVersions[key] = make(map[string]string)
			}
			depVersions[key][ref.Hook.ID] = dep.Version
		}
	}
	c.checkConsistency(depVersions)

	return c.report, nil
}

type checker struct {
	policy      Policy
	constraints map[string]version.Constraints
	report      *Report
}

func (c *checker) add(severity manifest.Severity, path string, line int, format string, args ...interface{}) {
	c.report.Problems = append(c.report.Problems, manifest.Problem{
		Severity: severity,
		Path:     path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// strictness returns error when strict is set, warning otherwise.
func strictness(strict bool) manifest.Severity {
	if strict {
		return manifest.SeverityError
	}
	return manifest.SeverityWarning
}

func (c *checker) checkRevision(path string, repo manifest.Repo) {
	entry := RevisionEntry{
		Repo: repo.URL,
		Rev:  repo.Rev,
		Kind: ClassifyRevision(repo.Rev),
		Line: repo.Line,
	}
	v := ParseRevision(repo.Rev)
	if v != nil {
		entry.Version = v.String()
	}
	c.report.Revisions = append(c.report.Revisions, entry)

	switch entry.Kind {
	case KindNone:
		c.add(manifest.SeverityError, path, repo.Line, "%s has no revision pin", repo.URL)
	case KindBranch:
		c.add(strictness(c.policy.RequireSemverRevs), path, repo.Line, "%q is a moving branch, not a pin", repo.Rev)
	case KindCommit:
		if c.policy.RequireSemverRevs {
			c.add(manifest.SeverityError, path, repo.Line, "%q is a commit, a version tag is required", repo.Rev)
		}
	case KindOther:
		c.add(strictness(c.policy.RequireSemverRevs), path, repo.Line, "%q is not a recognisable version", repo.Rev)
	}

	if cs, ok := c.constraints[repo.URL]; ok {
		switch {
		case v == nil:
			c.add(manifest.SeverityWarning, path, repo.Line, "cannot check %q against %s", repo.Rev, cs)
		case !cs.Check(v):
			c.add(manifest.SeverityError, path, repo.Line, "%s does not satisfy %s", repo.Rev, cs)
		}
	}
}

func (c *checker) checkDependency(path string, hook *manifest.Hook, raw string) (manifest.Dependency, bool) {
	dep, err := manifest.ParseDependency(raw)
	if err != nil {
		c.add(manifest.SeverityWarning, path, hook.Line, "%v", err)
		return dep, false
	}

	c.report.Dependencies = append(c.report.Dependencies, DependencyEntry{
		HookID:   hook.ID,
		Raw:      raw,
		Name:     dep.Name,
		Operator: dep.Operator,
		Version:  dep.Version,
		Pinned:   dep.Pinned(),
		Line:     hook.Line,
	})

	if !dep.Pinned() {
		c.add(strictness(c.policy.RequireExactDeps), path, hook.Line, "%s is not pinned to an exact version", dep.Name)
	}

	if cs, ok := c.constraints[normalizePackage(dep.Name)]; ok && dep.Pinned() {
		v, err := version.NewVersion(dep.Version)
		switch {
		case err != nil:
			c.add(manifest.SeverityWarning, path, hook.Line, "cannot check %s against %s", dep.Version, cs)
		case !cs.Check(v):
			c.add(manifest.SeverityError, path, hook.Line, "%s %s does not satisfy %s", dep.Name, dep.Version, cs)
		}
	}
	return dep, true
}

func (c *checker) checkConsistency(depVersions map[string]map[string]string) {
	names := make([]string, 0, len(depVersions))
	for name := range depVersions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		byHook := depVersions[name]
		distinct := make(map[string]bool)
		var parts []string
		for hook, v := range byHook {
			distinct[v] = true
			parts = append(parts, fmt.Sprintf("%s in %s", v, hook))
		}
		if len(distinct) > 1 {
			sort.Strings(parts)
			c.add(manifest.SeverityWarning, "additional_dependencies", 0, "%s is pinned inconsistently: %s", name, strings.Join(parts, ", "))
		}
	}
}

func compileConstraints(raw map[string]string) (map[string]version.Constraints, error) {
	out := make(map[string]version.Constraints, len(raw))
	for key, expr := range raw {
		cs, err := version.NewConstraint(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint for %s: %w", key, err)
		}
		if strings.Contains(key, "/") {
			out[key] = cs
		} else {
			out[normalizePackage(key)] = cs
		}
	}
	return out, nil
}

// normalizePackage applies PEP 503 name normalisation.
func normalizePackage(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}
