package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/config"
	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/manifest"
	"github.com/grovetools/hookcfg/schema"
)

func NewFmtCmd() *cobra.Command {
	var check, write bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Print the manifest in canonical form",
		Long: `Re-renders the manifest with canonical key order, two-space indentation
and quoting of scalars YAML would otherwise retype. Comments are not kept.`,
		Example: `  hookcfg fmt
  hookcfg fmt --check
  hookcfg fmt --write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && write {
				return errors.New(errors.ErrCodeInvalidInput, "--check and --write are mutually exclusive")
			}

			s, err := loadManifest(cmd)
			if err != nil {
				return err
			}
			canonical, err := manifest.Marshal(s.manifest)
			if err != nil {
				return err
			}

			switch {
			case check:
				if !bytes.Equal(canonical, s.data) {
					return errors.New(errors.ErrCodeConfigValidation,
						fmt.Sprintf("%s is not canonically formatted", relPath(s.manifestPath))).
						WithDetail("path", s.manifestPath)
				}
				newPretty(cmd).Success(fmt.Sprintf("%s is canonically formatted", relPath(s.manifestPath)))
			case write:
				if bytes.Equal(canonical, s.data) {
					return nil
				}
				if err := manifest.Save(s.manifestPath, s.manifest); err != nil {
					return err
				}
				newPretty(cmd).Success(fmt.Sprintf("Formatted %s", relPath(s.manifestPath)))
			default:
				_, err := cmd.OutOrStdout().Write(canonical)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Fail when the file differs from its canonical form")
	cmd.Flags().BoolVar(&write, "write", false, "Rewrite the file in canonical form")
	return cmd
}

func NewExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the manifest to JSON, TOML or YAML",
		Example: `  hookcfg export --format json | jq '.repos[].repo'
  hookcfg export --format toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadManifest(cmd)
			if err != nil {
				return err
			}

			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = manifest.ExportJSON(s.manifest)
			case "toml":
				data, err = manifest.ExportTOML(s.manifest)
			case "yaml", "yml":
				data, err = manifest.Marshal(s.manifest)
			default:
				return errors.New(errors.ErrCodeInvalidInput,
					fmt.Sprintf("unsupported format %q (want json, toml or yaml)", format))
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, toml, yaml")
	return cmd
}

func NewSchemaCmd() *cobra.Command {
	var settings bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the manifest",
		Long: `Prints the JSON Schema (draft-07) describing .pre-commit-config.yaml.
With --settings it prints the schema of hookcfg's own .hookcfg.yml instead,
for editor completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if settings {
				data, err = config.GenerateSchema()
			} else {
				data, err = schema.Generate()
			}
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to generate schema")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&settings, "settings", false, "Print the schema of .hookcfg.yml")
	return cmd
}
