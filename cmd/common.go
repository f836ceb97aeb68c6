package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/config"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/git"
	"github.com/grovetools/hookcfg/logging"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/pkg/profiling"
	"github.com/grovetools/hookcfg/theme"
)

// newRepository is swapped in tests.
var newRepository = func() git.RepositoryProvider {
	return git.NewCLIRepository()
}

// session is the state most commands start from.
type session struct {
	opts     cli.CommandOptions
	settings *config.Settings
	// manifestPath is absolute.
	manifestPath string
	data         []byte
	manifest     *manifest.Manifest
}

// loadSession loads the settings and resolves the manifest path without
// reading the manifest. When only the manifest lookup fails the session is
// returned along with the error.
func loadSession(cmd *cobra.Command) (*session, error) {
	defer profiling.Start(cmd.Context(), "load settings").Stop()

	opts := cli.GetOptions(cmd)
	settings, err := cli.LoadSettings(opts)
	if err != nil {
		return nil, err
	}

	path, err := cli.ResolveManifest(opts, settings)
	if err != nil {
		return &session{opts: opts, settings: settings}, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	cli.GetLogger(cmd, "hookcfg").WithField("manifest", path).Debug("Resolved manifest")
	return &session{opts: opts, settings: settings, manifestPath: path}, nil
}

// loadManifest loads the settings and parses the manifest.
func loadManifest(cmd *cobra.Command) (*session, error) {
	s, err := loadSession(cmd)
	if err != nil {
		return nil, err
	}
	span := profiling.Start(cmd.Context(), "parse manifest")
	defer span.Stop()
	if err := s.readManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) readManifest() error {
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ConfigNotFound(s.manifestPath)
		}
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read manifest").
			WithDetail("path", s.manifestPath)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		if hookErr, ok := errors.As(err); ok {
			hookErr.WithDetail("path", s.manifestPath)
		}
		return err
	}
	s.data, s.manifest = data, m
	return nil
}

// repoRoot returns the work tree root of the repository holding the
// manifest, or of the working directory when no manifest was resolved.
func (s *session) repoRoot(ctx context.Context) (string, error) {
	dir := "."
	if s.manifestPath != "" {
		dir = filepath.Dir(s.manifestPath)
	}
	return newRepository().GetGitRoot(ctx, dir)
}

// relPath shortens path for display when it is under the working directory.
func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func newPretty(cmd *cobra.Command) *logging.PrettyLogger {
	return logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
}

// outputContext routes unified logger output to the command's stdout.
func outputContext(cmd *cobra.Command) context.Context {
	return logging.WithWriter(cmd.Context(), cmd.OutOrStdout())
}

// printProblems writes one line per problem, errors first.
func printProblems(w io.Writer, problems []manifest.Problem) {
	t := theme.DefaultTheme
	for _, severity := range []manifest.Severity{manifest.SeverityError, manifest.SeverityWarning} {
		for _, p := range problems {
			if p.Severity != severity {
				continue
			}
			if severity == manifest.SeverityError {
				fmt.Fprintf(w, "%s %s\n", t.Error.Render(theme.IconError), p)
			} else {
				fmt.Fprintf(w, "%s %s\n", t.Warning.Render(theme.IconWarning), p)
			}
		}
	}
}

// problemsError turns error-severity problems into a CONFIG_VALIDATION error.
func problemsError(path string, problems []manifest.Problem) error {
	errs := manifest.Errors(problems)
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, len(errs))
	for i, p := range errs {
		messages[i] = "- " + p.String()
	}
	return errors.ValidationFailed(path, messages)
}
