package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/pins"
	"github.com/grovetools/hookcfg/theme"
)

func NewPinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "Report revision and dependency pins",
		Long: `Lists every repository revision and additional dependency with how it is
pinned, then checks them against the pins section of .hookcfg.yml:

  pins:
    require_semver_revs: true
    require_exact_deps: true
    constraints:
      https://github.com/psf/black: ">= 23, < 24"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadManifest(cmd)
			if err != nil {
				return err
			}
			policy, err := s.settings.PinPolicy()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid pins settings")
			}

			report, err := pins.Check(s.manifest, policy)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid pins settings")
			}

			if s.opts.JSONOutput {
				if err := cli.PrintJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printPinReport(cmd.OutOrStdout(), report)
			}

			if violations := report.Violations(); len(violations) > 0 {
				return errors.PinPolicyViolated(len(violations))
			}
			return nil
		},
	}
}

func printPinReport(w io.Writer, report *pins.Report) {
	t := theme.DefaultTheme

	fmt.Fprintln(w, t.Header.Render("Revisions"))
	repoWidth := 0
	for _, rev := range report.Revisions {
		repoWidth = max(repoWidth, lipgloss.Width(rev.Repo))
	}
	for _, rev := range report.Revisions {
		kind := string(rev.Kind)
		if rev.Kind != pins.KindSemver {
			kind = t.Warning.Render(kind)
		}
		fmt.Fprintf(w, "  %-*s  %-12s %s\n", repoWidth, rev.Repo, rev.Rev, kind)
	}

	if len(report.Dependencies) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Header.Render("Dependencies"))
		hookWidth := 0
		for _, dep := range report.Dependencies {
			hookWidth = max(hookWidth, len(dep.HookID))
		}
		for _, dep := range report.Dependencies {
			status := t.Success.Render("pinned")
			if !dep.Pinned {
				status = t.Warning.Render("unpinned")
			}
			fmt.Fprintf(w, "  %-*s  %s %s\n", hookWidth, dep.HookID, dep.Raw, status)
		}
	}

	if len(report.Problems) > 0 {
		fmt.Fprintln(w)
		printProblems(w, report.Problems)
	}
}
