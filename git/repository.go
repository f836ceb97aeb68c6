package git

import "context"

// CLIRepository implements RepositoryProvider using git CLI
type CLIRepository struct{}

// Ensure it implements the interface
var _ RepositoryProvider = (*CLIRepository)(nil)

// NewCLIRepository creates a new CLI repository provider
func NewCLIRepository() *CLIRepository {
	return &CLIRepository{}
}

// IsGitRepo checks if a directory is a git repository
func (r *CLIRepository) IsGitRepo(ctx context.Context, dir string) bool {
	return IsGitRepo(ctx, dir)
}

// GetGitRoot returns the root directory of the git repository
func (r *CLIRepository) GetGitRoot(ctx context.Context, dir string) (string, error) {
	return GetGitRoot(ctx, dir)
}

// ListTrackedFiles returns every tracked file
func (r *CLIRepository) ListTrackedFiles(ctx context.Context, dir string) ([]string, error) {
	return ListTrackedFiles(ctx, dir)
}

// ListStagedFiles returns the files staged for commit
func (r *CLIRepository) ListStagedFiles(ctx context.Context, dir string) ([]string, error) {
	return ListStagedFiles(ctx, dir)
}

// ListChangedFiles returns the files changed between two refs
func (r *CLIRepository) ListChangedFiles(ctx context.Context, dir, from, to string) ([]string, error) {
	return ListChangedFiles(ctx, dir, from, to)
}
