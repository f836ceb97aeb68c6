// Package pins classifies the revision and dependency pins of a manifest and
// checks them against a pin policy.
package pins

import (
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// RevisionKind classifies a repo rev.
type RevisionKind string

const (
	KindNone   RevisionKind = "none"
	KindSemver RevisionKind = "semver"
	KindCommit RevisionKind = "commit"
	KindBranch RevisionKind = "branch"
	KindOther  RevisionKind = "other"
)

var (
	commitRegex = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
	hexLetter   = regexp.MustCompile(`[a-f]`)
)

// branchNames are refs that move; pinning to them is not reproducible.
var branchNames = map[string]bool{
	"main":    true,
	"master":  true,
	"develop": true,
	"dev":     true,
	"trunk":   true,
	"head":    true,
	"stable":  true,
	"latest":  true,
}

// ClassifyRevision determines what kind of ref rev is. Full 40 character
// hashes are always commits; shorter all-digit strings are read as versions.
func ClassifyRevision(rev string) RevisionKind {
	rev = strings.TrimSpace(rev)
	switch {
	case rev == "":
		return KindNone
	case commitRegex.MatchString(rev) && (len(rev) == 40 || hexLetter.MatchString(rev)):
		return KindCommit
	case branchNames[strings.ToLower(rev)]:
		return KindBranch
	}
	if _, err := version.NewVersion(rev); err == nil {
		return KindSemver
	}
	return KindOther
}

// ParseRevision returns the version a semver rev names, or nil.
func ParseRevision(rev string) *version.Version {
	if ClassifyRevision(rev) != KindSemver {
		return nil
	}
	v, err := version.NewVersion(strings.TrimSpace(rev))
	if err != nil {
		return nil
	}
	return v
}
