package conventional

import (
	"fmt"
	"regexp"
	"strings"
)

// Footer is a single trailer such as "Refs: #42" or "BREAKING CHANGE: ...".
type Footer struct {
	Token string `json:"token"`
	Value string `json:"value"`
}

// Commit represents a parsed conventional commit message.
type Commit struct {
	Header         string   `json:"header"`
	Type           string   `json:"type"`
	Scope          string   `json:"scope,omitempty"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body,omitempty"`
	Footers        []Footer `json:"footers,omitempty"`
	IsBreaking     bool     `json:"breaking"`
	BreakingChange string   `json:"breaking_change,omitempty"`
}

// Regex to parse a conventional commit header.
// It captures: 1: type, 2: scope (optional), 3: breaking change indicator (!), 4: subject
var commitRegex = regexp.MustCompile(`^(\w+)(?:\(([^()]*)\))?(!?):\s(.*)$`)

var footerRegex = regexp.MustCompile(`^(BREAKING CHANGE|BREAKING-CHANGE|[\w-]+)(?:: | #)(.*)$`)

// git appends the diff below this line for `git commit -v`.
const scissors = "# ------------------------ >8 ------------------------"

// StripComments drops git comment lines and anything below the scissors
// line, then trims surrounding blank lines.
func StripComments(message string) string {
	var kept []string
	for _, line := range strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, scissors) {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n")
}

// Parse parses a raw git commit message string into a Commit struct.
func Parse(message string) (*Commit, error) {
	lines := strings.Split(StripComments(message), "\n")
	header := lines[0]

	matches := commitRegex.FindStringSubmatch(header)
	if matches == nil {
		return nil, fmt.Errorf("invalid commit message format: %s", header)
	}

	commit := &Commit{
		Header:     header,
		Type:       matches[1],
		Scope:      matches[2],
		IsBreaking: matches[3] == "!",
		Subject:    strings.TrimSpace(matches[4]),
	}

	paragraphs := splitParagraphs(lines[1:])
	if n := len(paragraphs); n > 0 && footerRegex.MatchString(paragraphs[n-1][0]) {
		commit.Footers = parseFooters(paragraphs[n-1])
		paragraphs = paragraphs[:n-1]
	}

	var body []string
	for _, p := range paragraphs {
		body = append(body, strings.Join(p, "\n"))
	}
	commit.Body = strings.Join(body, "\n\n")

	for _, f := range commit.Footers {
		if f.Token == "BREAKING CHANGE" || f.Token == "BREAKING-CHANGE" {
			commit.IsBreaking = true
			commit.BreakingChange = f.Value
		}
	}

	return commit, nil
}

// FooterValues returns the values of every footer with the given token.
func (c *Commit) FooterValues(token string) []string {
	var values []string
	for _, f := range c.Footers {
		if strings.EqualFold(f.Token, token) {
			values = append(values, f.Value)
		}
	}
	return values
}

func splitParagraphs(lines []string) [][]string {
	var paragraphs [][]string
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	return paragraphs
}

// parseFooters reads a trailer block. Lines that do not start a new footer
// continue the previous value.
func parseFooters(lines []string) []Footer {
	var footers []Footer
	for _, line := range lines {
		if m := footerRegex.FindStringSubmatch(line); m != nil {
			footers = append(footers, Footer{Token: m[1], Value: m[2]})
			continue
		}
		if n := len(footers); n > 0 {
			footers[n-1].Value += "\n" + line
		}
	}
	return footers
}
