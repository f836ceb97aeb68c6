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
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/pkg/profiling"
	"github.com/grovetools/hookcfg/selector"
	"github.com/grovetools/hookcfg/theme"
)

// fileSource picks where plan and meta take their candidate files from.
type fileSource struct {
	staged   bool
	allFiles bool
	fromRef  string
	toRef    string
	explicit []string
}

func (f fileSource) validate() error {
	modes := 0
	for _, set := range []bool{f.staged, f.allFiles, f.fromRef != "" || f.toRef != "", len(f.explicit) > 0} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			"choose one of --staged, --all-files, --from-ref/--to-ref or explicit files")
	}
	if (f.fromRef == "") != (f.toRef == "") {
		return errors.New(errors.ErrCodeInvalidInput, "--from-ref and --to-ref must be used together")
	}
	return nil
}

// files lists candidate files relative to root. Tracked files are the default.
func (f fileSource) files(ctx context.Context, root string) ([]string, error) {
	defer profiling.Start(ctx, "list files").Stop()

	repo := newRepository()
	switch {
	case len(f.explicit) > 0:
		return rootRelative(root, f.explicit)
	case f.staged:
		return repo.ListStagedFiles(ctx, root)
	case f.fromRef != "":
		return repo.ListChangedFiles(ctx, root, f.fromRef, f.toRef)
	default:
		return repo.ListTrackedFiles(ctx, root)
	}
}

// rootRelative rewrites paths given on the command line, which are relative
// to the working directory, as slash-separated paths relative to root.
func rootRelative(root string, paths []string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get working directory")
	}
	cwd = resolveSymlinks(cwd)
	root = resolveSymlinks(root)

	files := make([]string, 0, len(paths))
	for _, path := range paths {
		abs := path
		if filepath.IsAbs(abs) {
			abs = filepath.Join(resolveSymlinks(filepath.Dir(abs)), filepath.Base(abs))
		} else {
			abs = filepath.Join(cwd, abs)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("%s is outside the repository %s", path, root))
		}
		files = append(files, filepath.ToSlash(rel))
	}
	return files, nil
}

// resolveSymlinks returns path with symlinks resolved, or path unchanged
// when it cannot be resolved.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func NewPlanCmd() *cobra.Command {
	var (
		source  fileSource
		stage   string
		hookIDs []string
	)

	cmd := &cobra.Command{
		Use:   "plan [files...]",
		Short: "Show which hooks would run and on which files",
		Long: `Resolves, for a stage, which hooks of the manifest would run and which
files each would receive after the global and per-hook files, exclude and
types filters. Nothing is executed. Candidate files default to every
tracked file; the ignore globs of .hookcfg.yml are removed first.`,
		Example: `  hookcfg plan --staged
  hookcfg plan --stage pre-push --from-ref origin/main --to-ref HEAD
  hookcfg plan --hook flake8 --hook mypy gitlab/client.py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source.explicit = args
			if err := source.validate(); err != nil {
				return err
			}

			s, err := loadManifest(cmd)
			if err != nil {
				return err
			}
			if len(hookIDs) > 0 {
				known := s.manifest.HookIDs()
				for _, id := range hookIDs {
					if !known[id] {
						return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("no hook with id %q", id))
					}
				}
			}

			root, err := s.repoRoot(cmd.Context())
			if err != nil {
				return err
			}
			files, err := source.files(cmd.Context(), root)
			if err != nil {
				return err
			}

			span := profiling.Start(cmd.Context(), "plan")
			result, err := selector.Plan(s.manifest, selector.Request{
				Stage:   stage,
				Files:   files,
				HookIDs: hookIDs,
				Ignore:  s.settings.Ignore,
			})
			span.Stop()
			if err != nil {
				return err
			}

			if s.opts.JSONOutput {
				return cli.PrintJSON(cmd.OutOrStdout(), result)
			}
			printPlan(cmd.OutOrStdout(), result, s.opts.Verbose)
			return nil
		},
	}

	cmd.Flags().StringVarP(&stage, "stage", "s", manifest.StagePreCommit, "Stage to plan for")
	cmd.Flags().BoolVar(&source.staged, "staged", false, "Use the files staged for commit")
	cmd.Flags().BoolVarP(&source.allFiles, "all-files", "a", false, "Use every tracked file")
	cmd.Flags().StringVar(&source.fromRef, "from-ref", "", "Use the files changed since this ref")
	cmd.Flags().StringVar(&source.toRef, "to-ref", "", "End ref for --from-ref")
	cmd.Flags().StringSliceVar(&hookIDs, "hook", nil, "Only plan these hook ids (repeatable)")
	return cmd
}

func printPlan(w io.Writer, result *selector.Result, verbose bool) {
	t := theme.DefaultTheme

	header := fmt.Sprintf("%d candidate files", result.Files)
	if result.Stage != "" {
		header = fmt.Sprintf("Stage %s, %s", result.Stage, header)
	}
	fmt.Fprintln(w, t.Header.Render(header))

	idWidth := 0
	for _, e := range result.Entries {
		idWidth = max(idWidth, len(e.HookID))
	}

	for _, e := range result.Entries {
		switch {
		case e.Skipped:
			fmt.Fprintf(w, "%s %-*s  %s\n", t.Muted.Render(theme.IconSkipped), idWidth, e.HookID, t.Muted.Render(e.Reason))
		case len(e.Files) > 0:
			fmt.Fprintf(w, "%s %-*s  %d file(s)\n", t.Success.Render(theme.IconSuccess), idWidth, e.HookID, len(e.Files))
			if verbose {
				for _, file := range e.Files {
					fmt.Fprintf(w, "    %s\n", t.Path.Render(file))
				}
			}
		default:
			fmt.Fprintf(w, "%s %-*s  %s\n", t.Success.Render(theme.IconSuccess), idWidth, e.HookID, "runs without files")
		}
	}

	selected := result.Selected()
	ids := make([]string, len(selected))
	for i, e := range selected {
		ids[i] = e.HookID
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No hooks would run."))
		return
	}
	fmt.Fprintf(w, "%d hook(s) would run: %s\n", len(ids), strings.Join(ids, ", "))
}
