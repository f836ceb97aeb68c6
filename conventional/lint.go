package conventional

import (
	"fmt"
	"strings"

	"github.com/grovetools/hookcfg/errors"
)

// DefaultTypes are the commit types accepted when Rules.Types is empty.
var DefaultTypes = []string{
	"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert",
}

// DefaultMaxHeaderLength applies when Rules.MaxHeaderLength is zero.
const DefaultMaxHeaderLength = 72

// Rules configures Lint.
type Rules struct {
	Types           []string `yaml:"types,omitempty" json:"types,omitempty"`
	MaxHeaderLength int      `yaml:"max_header_length,omitempty" json:"max_header_length,omitempty"`
	RequireScope    bool     `yaml:"require_scope" json:"require_scope"`
	AllowMerge      bool     `yaml:"allow_merge" json:"allow_merge"`
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		Types:           append([]string(nil), DefaultTypes...),
		MaxHeaderLength: DefaultMaxHeaderLength,
		AllowMerge:      true,
	}
}

// Violation is a single broken rule.
type Violation struct {
	Rule    string `json:"rule"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("line %d: %s (%s)", v.Line, v.Message, v.Rule)
}

// Headers git and its tooling generate, skipped when AllowMerge is set.
var generatedPrefixes = []string{"Merge ", "Revert \"", "fixup! ", "squash! ", "amend! "}

// Lint checks a commit message against rules. Comment lines are ignored.
func Lint(message string, rules Rules) []Violation {
	types := rules.Types
	if len(types) == 0 {
		types = DefaultTypes
	}
	maxLength := rules.MaxHeaderLength
	if maxLength <= 0 {
		maxLength = DefaultMaxHeaderLength
	}

	stripped := StripComments(message)
	if strings.TrimSpace(stripped) == "" {
		return []Violation{{Rule: "message-empty", Line: 1, Message: "commit message is empty"}}
	}

	lines := strings.Split(stripped, "\n")
	header := lines[0]
	if rules.AllowMerge {
		for _, prefix := range generatedPrefixes {
			if strings.HasPrefix(header, prefix) {
				return nil
			}
		}
	}

	var violations []Violation
	add := func(rule string, line int, format string, args ...interface{}) {
		violations = append(violations, Violation{Rule: rule, Line: line, Message: fmt.Sprintf(format, args...)})
	}

	if n := len([]rune(header)); n > maxLength {
		add("header-max-length", 1, "header is %d characters, the limit is %d", n, maxLength)
	}
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		add("body-leading-blank", 2, "a blank line must separate the header from the body")
	}

	commit, err := Parse(stripped)
	if err != nil {
		add("header-format", 1, "header must look like type(scope): subject, got %q", header)
		return violations
	}

	if !contains(types, commit.Type) {
		add("type-enum", 1, "type %q is not one of %s", commit.Type, strings.Join(types, ", "))
	}
	if commit.Type != strings.ToLower(commit.Type) {
		add("type-case", 1, "type %q must be lower case", commit.Type)
	}
	if rules.RequireScope && strings.TrimSpace(commit.Scope) == "" {
		add("scope-empty", 1, "a scope is required")
	}
	if strings.HasSuffix(commit.Subject, ".") {
		add("subject-full-stop", 1, "subject may not end with a full stop")
	}

	return violations
}

// Check lints a message and returns a COMMIT_MESSAGE error listing every
// violation, or nil when the message passes.
func Check(message string, rules Rules) error {
	violations := Lint(message, rules)
	if len(violations) == 0 {
		return nil
	}

	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, "- "+v.String())
	}
	return errors.New(errors.ErrCodeCommitMessage,
		fmt.Sprintf("commit message has %d problem(s):\n%s", len(violations), strings.Join(lines, "\n"))).
		WithDetail("violations", violations)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
