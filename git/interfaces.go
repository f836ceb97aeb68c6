package git

import "context"

// HookProvider defines the interface for git hook operations
type HookProvider interface {
	InstallHooks(ctx context.Context, repoPath string, hookTypes []string) ([]string, error)
	UninstallHooks(ctx context.Context, repoPath string) ([]string, error)
}

// RepositoryProvider defines the interface for the repository queries hook
// planning needs
type RepositoryProvider interface {
	IsGitRepo(ctx context.Context, dir string) bool
	GetGitRoot(ctx context.Context, dir string) (string, error)
	ListTrackedFiles(ctx context.Context, dir string) ([]string, error)
	ListStagedFiles(ctx context.Context, dir string) ([]string, error)
	ListChangedFiles(ctx context.Context, dir, from, to string) ([]string, error)
}
