package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/config"
	"github.com/grovetools/hookcfg/logging"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/theme"
)

// CommandOptions holds the persistent flags shared by every command.
type CommandOptions struct {
	ConfigFile   string
	ManifestFile string
	Verbose      bool
	JSONOutput   bool
	NoColor      bool
}

// NewStandardCommand creates a root command with the standard flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ApplyOptions(GetOptions(cmd))
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to a .hookcfg.yml settings file")
	cmd.PersistentFlags().StringP("manifest", "m", "", "Path to the pre-commit manifest")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	SetStyledHelp(cmd)

	return cmd
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	manifestFile, _ := cmd.Flags().GetString("manifest")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	return CommandOptions{
		ConfigFile:   configFile,
		ManifestFile: manifestFile,
		Verbose:      verbose,
		JSONOutput:   jsonOutput,
		NoColor:      noColor,
	}
}

// ApplyOptions applies the process-wide effects of the standard flags.
func ApplyOptions(opts CommandOptions) {
	if opts.NoColor || opts.JSONOutput || theme.ColorDisabled() {
		theme.DisableColor()
	}
	if opts.Verbose {
		logging.SetLevel(logrus.DebugLevel)
	}
	if opts.JSONOutput {
		logging.SetGlobalOutput(io.Discard)
	} else {
		logging.SetGlobalOutput(os.Stderr)
	}
}

// GetLogger returns the component logger, at debug level under --verbose.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	return entry
}

// LoadSettings loads the file named by --config, or the layered settings
// found from the working directory.
func LoadSettings(opts CommandOptions) (*config.Settings, error) {
	if opts.ConfigFile == "" {
		return config.LoadDefault()
	}

	settings, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if settings.Manifest != "" && !filepath.IsAbs(settings.Manifest) {
		settings.Manifest = filepath.Join(filepath.Dir(opts.ConfigFile), settings.Manifest)
	}
	return settings, nil
}

// ResolveManifest picks the manifest path: --manifest, then the settings,
// then the nearest manifest above the working directory.
func ResolveManifest(opts CommandOptions, settings *config.Settings) (string, error) {
	if opts.ManifestFile != "" {
		return opts.ManifestFile, nil
	}
	if settings != nil && settings.Manifest != "" {
		return settings.Manifest, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return manifest.Find(cwd)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
