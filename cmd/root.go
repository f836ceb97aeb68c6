// Package cmd holds the hookcfg subcommands.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/grovetools/hookcfg/cli"
	"github.com/grovetools/hookcfg/pkg/profiling"
)

// NewRootCmd builds the hookcfg command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"hookcfg",
		"Validate, format and plan pre-commit hook manifests",
	)
	root.Long = `hookcfg reads .pre-commit-config.yaml and answers questions about it
without running any hook: is it valid, are its pins sound, which hooks would
run for a stage and on which files. It can also install git hook shims that
check the manifest and lint commit messages.`

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	root.PersistentPreRun = nil
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cli.ApplyOptions(cli.GetOptions(cmd))
		return profiler.PreRun(cmd)
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		profiler.PostRun(cmd)
	}

	root.AddCommand(
		NewValidateCmd(),
		NewFmtCmd(),
		NewExportCmd(),
		NewSchemaCmd(),
		NewPinsCmd(),
		NewPlanCmd(),
		NewMetaCmd(),
		NewInstallCmd(),
		NewUninstallCmd(),
		NewCommitMsgCmd(),
		NewRunShimCmd(),
		NewConfigLayersCmd(),
		cli.NewVersionCommand("hookcfg"),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)
	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}

	verbose := false
	if cmd != nil {
		verbose = cli.GetOptions(cmd).Verbose
	}
	cli.NewErrorHandler(verbose).Handle(err)
	return cli.ExitCode(err)
}
