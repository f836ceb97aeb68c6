package git

import (
	"context"
	"strings"

	"github.com/grovetools/hookcfg/command"
	"github.com/grovetools/hookcfg/errors"
)

// ListTrackedFiles returns every file in the index, relative to the
// repository root.
func ListTrackedFiles(ctx context.Context, dir string) ([]string, error) {
	root, err := GetGitRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := runRaw(ctx, command.NewSafeBuilder(), root, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

// ListStagedFiles returns files added, copied, modified or renamed in the
// index. Deleted files are left out since no hook can read them.
func ListStagedFiles(ctx context.Context, dir string) ([]string, error) {
	root, err := GetGitRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := runRaw(ctx, command.NewSafeBuilder(), root,
		"diff", "--cached", "--name-only", "--diff-filter=ACMR", "--no-ext-diff", "-z")
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

// ListChangedFiles returns files changed between the merge base of from and
// to, and to. This is the set pre-push hooks see.
func ListChangedFiles(ctx context.Context, dir, from, to string) ([]string, error) {
	cmdBuilder := command.NewSafeBuilder()
	for _, ref := range []string{from, to} {
		if err := cmdBuilder.Validate("gitRef", ref); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid ref")
		}
	}

	root, err := GetGitRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := runRaw(ctx, cmdBuilder, root,
		"diff", "--name-only", "--diff-filter=ACMR", "--no-ext-diff", "-z", from+"..."+to)
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

func splitNUL(out string) []string {
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}
