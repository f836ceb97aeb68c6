package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Dependency is a parsed additional_dependencies entry.
type Dependency struct {
	Raw      string
	Name     string
	Extras   string
	Operator string
	Version  string
}

// Pinned reports whether the dependency names one exact version.
func (d Dependency) Pinned() bool {
	return d.Operator == "==" || d.Operator == "==="
}

var dependencyRegex = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?\s*(?:(===|==|>=|<=|~=|!=|>|<|@)\s*(\S.*))?$`)

// ParseDependency parses name[extras]<op>version. Environment markers after
// ';' are ignored.
func ParseDependency(s string) (Dependency, error) {
	raw := s
	spec := strings.TrimSpace(s)
	if i := strings.Index(spec, ";"); i >= 0 {
		spec = strings.TrimSpace(spec[:i])
	}
	if spec == "" {
		return Dependency{Raw: raw}, fmt.Errorf("empty dependency")
	}

	// Only the first clause of a comma-separated specifier decides pinning.
	first := spec
	if i := strings.Index(spec, ","); i >= 0 {
		first = strings.TrimSpace(spec[:i])
	}

	matches := dependencyRegex.FindStringSubmatch(first)
	if matches == nil {
		return Dependency{Raw: raw}, fmt.Errorf("invalid dependency %q", s)
	}

	dep := Dependency{
		Raw:      raw,
		Name:     matches[1],
		Extras:   strings.Trim(matches[2], "[]"),
		Operator: matches[3],
		Version:  strings.TrimSpace(matches[4]),
	}
	if dep.Operator != "" && first != spec {
		dep.Operator = "range"
		dep.Version = strings.TrimSpace(strings.TrimPrefix(spec, matches[1]+matches[2]))
	}
	return dep, nil
}
