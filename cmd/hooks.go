package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/conventional"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/git"
	"github.com/grovetools/hookcfg/logging"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/selector"
	"github.com/grovetools/hookcfg/state"
)

// newHookProvider is swapped in tests.
var newHookProvider = func(binary string) git.HookProvider {
	return git.NewHookManager(binary)
}

type installResult struct {
	Repository string   `json:"repository"`
	HookTypes  []string `json:"hook_types"`
	Hooks      []string `json:"hooks"`
}

func NewInstallCmd() *cobra.Command {
	var hookTypes []string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install git hook shims for the stages the manifest uses",
		Long: `Writes a small shell script into the repository's hooks directory for
every git hook type the manifest uses. The scripts call "hookcfg run-shim".
Existing hooks not written by hookcfg are moved aside with a .pre-hookcfg
suffix and restored by uninstall.`,
		Example: `  hookcfg install
  hookcfg install --hook-type pre-commit --hook-type commit-msg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil && (s == nil || !errors.Is(err, errors.ErrCodeConfigNotFound)) {
				return err
			}
			if err == nil {
				if err := s.readManifest(); err != nil {
					return err
				}
			}

			types, err := resolveHookTypes(hookTypes, s.manifest)
			if err != nil {
				return err
			}

			root, err := s.repoRoot(cmd.Context())
			if err != nil {
				return err
			}
			written, err := newHookProvider(s.settings.ShimBinary).InstallHooks(cmd.Context(), root, types)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeCommandFailed, "failed to install hooks")
			}

			store, err := state.ForRepo(cmd.Context(), root)
			if err != nil {
				return err
			}
			if err := store.RecordInstall(state.InstallRecord{
				Binary:    s.settings.ShimBinary,
				HookTypes: types,
				Hooks:     written,
				Manifest:  s.manifestPath,
			}); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to record install")
			}

			if s.opts.JSONOutput {
				return cli.PrintJSON(cmd.OutOrStdout(), installResult{Repository: root, HookTypes: types, Hooks: written})
			}
			ulog := logging.NewUnifiedLogger("hookcfg.install")
			for _, path := range written {
				ulog.Success(fmt.Sprintf("Installed %s", filepath.Base(path))).
					Field("path", path).
					Log(outputContext(cmd))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&hookTypes, "hook-type", "t", nil, "Git hook type to install (repeatable, default: the stages the manifest uses)")
	return cmd
}

// resolveHookTypes canonicalises requested hook types, falling back to the
// manifest's stages and then to pre-commit alone.
func resolveHookTypes(requested []string, m *manifest.Manifest) ([]string, error) {
	if len(requested) == 0 {
		if m != nil {
			if types := m.GitHookTypes(); len(types) > 0 {
				return types, nil
			}
		}
		return []string{manifest.StagePreCommit}, nil
	}

	seen := make(map[string]bool)
	var types []string
	for _, t := range requested {
		canonical, ok := manifest.NormalizeStage(t)
		if !ok || canonical == manifest.StageManual {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown hook type %q", t))
		}
		if !seen[canonical] {
			seen[canonical] = true
			types = append(types, canonical)
		}
	}
	return types, nil
}

func NewUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the git hook shims written by install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil && (s == nil || !errors.Is(err, errors.ErrCodeConfigNotFound)) {
				return err
			}

			root, err := s.repoRoot(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := newHookProvider(s.settings.ShimBinary).UninstallHooks(cmd.Context(), root)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeCommandFailed, "failed to uninstall hooks")
			}

			store, err := state.ForRepo(cmd.Context(), root)
			if err != nil {
				return err
			}
			if err := store.ClearInstall(); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to clear install record")
			}

			if s.opts.JSONOutput {
				if removed == nil {
					removed = []string{}
				}
				return cli.PrintJSON(cmd.OutOrStdout(), map[string]interface{}{"repository": root, "removed": removed})
			}
			ulog := logging.NewUnifiedLogger("hookcfg.install")
			if len(removed) == 0 {
				ulog.Skipped("No hookcfg hooks installed").Log(outputContext(cmd))
				return nil
			}
			for _, path := range removed {
				ulog.Success(fmt.Sprintf("Removed %s", filepath.Base(path))).
					Field("path", path).
					Log(outputContext(cmd))
			}
			return nil
		},
	}
}

// zeroSHA is what git sends on pre-push stdin for refs that do not exist.
const zeroSHA = "0000000000000000000000000000000000000000"

func NewRunShimCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "run-shim HOOK_TYPE [args...]",
		Short:  "Entry point for installed git hooks",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType, ok := manifest.NormalizeStage(args[0])
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown hook type %q", args[0]))
			}
			ctx := cmd.Context()

			if hookType == manifest.StageCommitMsg {
				if len(args) < 2 {
					return errors.New(errors.ErrCodeInvalidInput, "commit-msg hook needs the message file")
				}
				message, err := readMessage(args[1], cmd.InOrStdin())
				if err != nil {
					return err
				}
				rules, err := commitRules(cmd)
				if err != nil {
					return err
				}
				return conventional.Check(message, rules)
			}

			s, err := loadSession(cmd)
			if err != nil {
				if s != nil && errors.Is(err, errors.ErrCodeConfigNotFound) {
					cli.GetLogger(cmd, "hookcfg.shim").Debug("No manifest, nothing to do")
					return nil
				}
				return err
			}
			if err := s.readManifest(); err != nil {
				return err
			}
			if err := s.manifest.Validate(); err != nil {
				return err
			}

			root, err := s.repoRoot(ctx)
			if err != nil {
				return err
			}
			warnMissingShims(ctx, cmd, root, s.manifest)

			files, err := shimFiles(ctx, hookType, root, cmd.InOrStdin())
			if err != nil {
				return err
			}
			result, err := selector.Plan(s.manifest, selector.Request{
				Stage:  hookType,
				Files:  files,
				Ignore: s.settings.Ignore,
			})
			if err != nil {
				return err
			}
			printPlan(cmd.ErrOrStderr(), result, false)
			return nil
		},
	}
}

// warnMissingShims logs when the manifest uses stages that were never
// installed.
func warnMissingShims(ctx context.Context, cmd *cobra.Command, root string, m *manifest.Manifest) {
	log := cli.GetLogger(cmd, "hookcfg.shim")
	store, err := state.ForRepo(ctx, root)
	if err != nil {
		log.WithError(err).Debug("No install state")
		return
	}
	rec, err := store.Install()
	if err != nil || rec == nil {
		return
	}
	if missing := rec.Missing(m.GitHookTypes()); len(missing) > 0 {
		logging.NewUnifiedLogger("hookcfg.shim").
			Warn(fmt.Sprintf("Manifest uses hook types that are not installed: %s (run hookcfg install)", strings.Join(missing, ", "))).
			Log(logging.WithWriter(ctx, cmd.ErrOrStderr()))
	}
}

// shimFiles returns the candidate files git would hand a hook of hookType.
func shimFiles(ctx context.Context, hookType, root string, stdin io.Reader) ([]string, error) {
	repo := newRepository()
	switch hookType {
	case manifest.StagePreCommit, manifest.StagePreMergeCommit:
		return repo.ListStagedFiles(ctx, root)
	case manifest.StagePrePush:
		return pushedFiles(ctx, repo, root, stdin)
	default:
		return nil, nil
	}
}

// pushedFiles reads the pre-push ref lines from stdin and collects the files
// changed by each pushed ref. A ref new to the remote counts every tracked
// file; deleted refs are ignored.
func pushedFiles(ctx context.Context, repo git.RepositoryProvider, root string, stdin io.Reader) ([]string, error) {
	set := make(map[string]bool)
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}
		localSHA, remoteSHA := fields[1], fields[3]
		if localSHA == zeroSHA {
			continue
		}

		var (
			files []string
			err   error
		)
		if remoteSHA == zeroSHA {
			files, err = repo.ListTrackedFiles(ctx, root)
		} else {
			files, err = repo.ListChangedFiles(ctx, root, remoteSHA, localSHA)
		}
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			set[f] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read pre-push refs")
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}
