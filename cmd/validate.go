package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/pkg/watcher"
	"github.com/grovetools/hookcfg/schema"
	"github.com/grovetools/hookcfg/theme"
)

// validationResult is the --json output of validate.
type validationResult struct {
	Path     string             `json:"path"`
	Valid    bool               `json:"valid"`
	Repos    int                `json:"repos"`
	Hooks    int                `json:"hooks"`
	Schema   []string           `json:"schema_errors,omitempty"`
	Problems []manifest.Problem `json:"problems,omitempty"`
}

func NewValidateCmd() *cobra.Command {
	var useSchema, watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the manifest for errors",
		Long: `Parses the manifest and reports every problem found: unknown stages,
invalid regular expressions, duplicate hook ids, meta hooks that do not
exist, revisions missing on remote repositories and more. Warnings never
fail validation.

With --schema the raw document is also checked against the manifest JSON
Schema, which catches type mistakes such as an unquoted numeric rev.`,
		Example: `  hookcfg validate
  hookcfg validate --schema --json
  # re-validate on every save
  hookcfg validate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			if !watch {
				return runValidate(cmd.OutOrStdout(), s, useSchema)
			}

			if err := runValidate(cmd.OutOrStdout(), s, useSchema); err != nil {
				cli.NewErrorHandler(false).Handle(err)
			}
			w, err := watcher.New([]string{s.manifestPath}, 0, func(string) {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := runValidate(cmd.OutOrStdout(), s, useSchema); err != nil {
					cli.NewErrorHandler(false).Handle(err)
				}
			})
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to watch manifest")
			}
			defer w.Close()
			newPretty(cmd).InfoPretty(fmt.Sprintf("Watching %s (Ctrl-C to stop)", relPath(s.manifestPath)))
			w.Start(cmd.Context())
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSchema, "schema", false, "Also validate the raw document against the JSON Schema")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate whenever the manifest changes")
	return cmd
}

// runValidate re-reads the manifest and reports on it.
func runValidate(out io.Writer, s *session, useSchema bool) error {
	if err := s.readManifest(); err != nil {
		return err
	}

	result := validationResult{
		Path:  s.manifestPath,
		Repos: len(s.manifest.Repos),
		Hooks: len(s.manifest.Hooks()),
	}

	if useSchema {
		v, err := schema.NewValidator()
		if err != nil {
			return err
		}
		if err := v.ValidateDocument(s.data); err != nil {
			hookErr, ok := errors.As(err)
			if !ok || hookErr.Code != errors.ErrCodeSchemaInvalid {
				return err
			}
			messages, _ := hookErr.Details["errors"].([]string)
			result.Schema = messages
		}
	}

	result.Problems = manifest.Validate(s.manifest)
	result.Valid = len(result.Schema) == 0 && len(manifest.Errors(result.Problems)) == 0

	if s.opts.JSONOutput {
		if err := cli.PrintJSON(out, result); err != nil {
			return err
		}
	} else {
		t := theme.DefaultTheme
		for _, message := range result.Schema {
			fmt.Fprintf(out, "%s schema %s\n", t.Error.Render(theme.IconError), strings.TrimPrefix(message, "- "))
		}
		printProblems(out, result.Problems)
		if result.Valid {
			fmt.Fprintf(out, "%s %s is valid (%d repos, %d hooks)\n",
				t.Success.Render(theme.IconSuccess), relPath(result.Path), result.Repos, result.Hooks)
		}
	}

	if len(result.Schema) > 0 {
		return errors.New(errors.ErrCodeSchemaInvalid,
			fmt.Sprintf("%d schema error(s)", len(result.Schema))).WithDetail("path", s.manifestPath)
	}
	return problemsError(s.manifestPath, result.Problems)
}
