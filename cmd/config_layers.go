package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/hookcfg/config"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/theme"
)

func NewConfigLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-layers",
		Short: "Display the layered settings for the current directory",
		Long: `Shows how the final settings are built by merging layers:
1. Global settings (~/.config/hookcfg/hookcfg.yml, or $HOOKCFG_HOME)
2. Project settings (the nearest .hookcfg.yml)
3. Override files (.hookcfg.override.yml next to the project file)
This is useful for debugging settings issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to get current directory")
			}

			layered, err := config.LoadLayered(cwd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printLayer(out, "GLOBAL", layered.FilePaths[config.SourceGlobal], layered.Global); err != nil {
				return err
			}
			if err := printLayer(out, "PROJECT", layered.FilePaths[config.SourceProject], layered.Project); err != nil {
				return err
			}
			for _, override := range layered.Overrides {
				if err := printLayer(out, "OVERRIDE", override.Path, override.Settings); err != nil {
					return err
				}
			}
			return printLayer(out, "FINAL MERGED", "", layered.Final)
		},
	}
}

func printLayer(w io.Writer, title, path string, settings *config.Settings) error {
	if settings == nil {
		return nil
	}
	t := theme.DefaultTheme

	fmt.Fprintf(w, "--- # %s\n", t.Header.Render(title))
	if path != "" {
		fmt.Fprintf(w, "# Source: %s\n", t.Path.Render(path))
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to render settings")
	}
	fmt.Fprintln(w, string(data))
	return nil
}
