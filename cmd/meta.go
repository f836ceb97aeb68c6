package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/selector"
)

func NewMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Run the meta checks against the repository's files",
	}

	cmd.AddCommand(
		newMetaCheckCmd("check-hooks-apply",
			"Report hooks whose files pattern matches no file",
			selector.CheckHooksApply),
		newMetaCheckCmd("check-useless-excludes",
			"Report exclude patterns that match no file",
			selector.CheckUselessExcludes),
	)
	return cmd
}

type metaCheck func(m *manifest.Manifest, files []string) []manifest.Problem

func newMetaCheckCmd(use, short string, check metaCheck) *cobra.Command {
	var source fileSource

	cmd := &cobra.Command{
		Use:   use + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			source.explicit = args
			if err := source.validate(); err != nil {
				return err
			}

			s, err := loadManifest(cmd)
			if err != nil {
				return err
			}
			root, err := s.repoRoot(cmd.Context())
			if err != nil {
				return err
			}
			files, err := source.files(cmd.Context(), root)
			if err != nil {
				return err
			}

			problems := check(s.manifest, files)
			if s.opts.JSONOutput {
				if problems == nil {
					problems = []manifest.Problem{}
				}
				if err := cli.PrintJSON(cmd.OutOrStdout(), problems); err != nil {
					return err
				}
			} else if len(problems) == 0 {
				newPretty(cmd).Success(fmt.Sprintf("%s: no problems in %d files", use, len(files)))
			} else {
				printProblems(cmd.OutOrStdout(), problems)
			}
			return problemsError(s.manifestPath, problems)
		},
	}

	cmd.Flags().BoolVarP(&source.allFiles, "all-files", "a", false, "Use every tracked file (default)")
	return cmd
}
