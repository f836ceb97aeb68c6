package git

import (
	"context"
	stderrors "errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grovetools/hookcfg/command"
	"github.com/grovetools/hookcfg/errors"
)

// run executes git in dir and returns trimmed stdout. A missing git binary
// is reported as GIT_NOT_INSTALLED.
func run(ctx context.Context, cmdBuilder *command.SafeBuilder, dir string, args ...string) (string, error) {
	output, err := runRaw(ctx, cmdBuilder, dir, args...)
	return strings.TrimSpace(output), err
}

// runRaw is run without trimming. NUL-separated listings need it since
// file names may start or end with whitespace.
func runRaw(ctx context.Context, cmdBuilder *command.SafeBuilder, dir string, args ...string) (string, error) {
	cmd, err := cmdBuilder.Build(ctx, "git", args...)
	if err != nil {
		return "", err
	}
	output, err := cmd.InDir(dir).Output()
	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return "", errors.New(errors.ErrCodeGitNotInstalled, "git executable not found in PATH")
		}
		return "", err
	}
	return string(output), nil
}

// IsGitRepo checks if the given directory is inside a git repository
func IsGitRepo(ctx context.Context, dir string) bool {
	_, err := run(ctx, command.NewSafeBuilder(), dir, "rev-parse", "--git-dir")
	return err == nil
}

// GetGitRoot returns the root directory of the git repository
func GetGitRoot(ctx context.Context, dir string) (string, error) {
	root, err := run(ctx, command.NewSafeBuilder(), dir, "rev-parse", "--show-toplevel")
	if err != nil {
		if errors.Is(err, errors.ErrCodeGitNotInstalled) {
			return "", err
		}
		return "", errors.NotARepository(dir)
	}
	return root, nil
}

// GitDir returns the absolute path of the repository's git directory. For
// linked worktrees this is the per-worktree directory.
func GitDir(ctx context.Context, dir string) (string, error) {
	gitDir, err := run(ctx, command.NewSafeBuilder(), dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		if errors.Is(err, errors.ErrCodeGitNotInstalled) {
			return "", err
		}
		return "", errors.NotARepository(dir)
	}
	return gitDir, nil
}

// HooksDir returns the directory git runs hooks from, honouring
// core.hooksPath.
func HooksDir(ctx context.Context, dir string) (string, error) {
	hooks, err := run(ctx, command.NewSafeBuilder(), dir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		if errors.Is(err, errors.ErrCodeGitNotInstalled) {
			return "", err
		}
		return "", errors.NotARepository(dir)
	}
	if !filepath.IsAbs(hooks) {
		hooks = filepath.Join(dir, hooks)
	}
	return filepath.Clean(hooks), nil
}
