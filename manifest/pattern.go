package manifest

import (
	"regexp"
	"regexp/syntax"
	"strings"
)

// CompilePattern compiles a files/exclude pattern. Patterns are searched,
// not anchored. A leading (?x) enables verbose mode: unescaped whitespace and
// #-comments outside character classes are dropped before compiling.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.HasPrefix(pattern, "(?x)") {
		pattern = stripVerbose(strings.TrimPrefix(pattern, "(?x)"))
	}
	return regexp.Compile(pattern)
}

// isUnsupportedSyntax reports whether err comes from Perl syntax RE2 lacks,
// such as lookaround assertions or backreferences.
func isUnsupportedSyntax(err error) bool {
	synErr, ok := err.(*syntax.Error)
	if !ok {
		return false
	}
	return synErr.Code == syntax.ErrInvalidPerlOp || synErr.Code == syntax.ErrInvalidEscape
}

func stripVerbose(pattern string) string {
	var b strings.Builder
	inClass := false
	inComment := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			}
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
		case c == '#':
			inComment = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
