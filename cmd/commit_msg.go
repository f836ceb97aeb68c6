package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/conventional"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/logging"
)

type commitResult struct {
	Valid      bool                     `json:"valid"`
	Commit     *conventional.Commit     `json:"commit,omitempty"`
	Violations []conventional.Violation `json:"violations"`
}

func NewCommitMsgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit-msg FILE",
		Short: "Lint a commit message as a conventional commit",
		Long: `Checks a commit message against the commit rules of .hookcfg.yml. FILE is
usually .git/COMMIT_EDITMSG; "-" reads the message from stdin. Comment
lines and everything below the scissors line are ignored.`,
		Example: `  hookcfg commit-msg .git/COMMIT_EDITMSG
  echo "feat(api): add pagination" | hookcfg commit-msg -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			message, err := readMessage(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			rules, err := commitRules(cmd)
			if err != nil {
				return err
			}

			if !opts.JSONOutput {
				if err := conventional.Check(message, rules); err != nil {
					return err
				}
				logging.NewUnifiedLogger("hookcfg.commit").
					Success("Commit message is valid").
					Log(outputContext(cmd))
				return nil
			}

			result := commitResult{Violations: conventional.Lint(message, rules)}
			result.Valid = len(result.Violations) == 0
			if result.Violations == nil {
				result.Violations = []conventional.Violation{}
			}
			if commit, err := conventional.Parse(conventional.StripComments(message)); err == nil {
				result.Commit = commit
			}
			if err := cli.PrintJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			return conventional.Check(message, rules)
		},
	}
}

func readMessage(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read commit message").
			WithDetail("path", path)
	}
	return string(data), nil
}

// commitRules loads the commit section of the settings.
func commitRules(cmd *cobra.Command) (conventional.Rules, error) {
	settings, err := cli.LoadSettings(cli.GetOptions(cmd))
	if err != nil {
		return conventional.Rules{}, err
	}
	rules, err := settings.CommitRules()
	if err != nil {
		return conventional.Rules{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid commit settings")
	}
	return rules, nil
}
