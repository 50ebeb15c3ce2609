package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-refdocs"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Expand pages and write the resolved output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, false)
		},
	}
	addBuildFlags(cmd)
	cmd.Flags().String("out", "", "output directory")
	cmd.Flags().String("format", "", "output format (markdown|html)")
	cmd.Flags().Bool("clean", false, "remove the output directory before writing")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Expand pages and report diagnostics without writing output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, true)
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("content", "", "directory holding the markdown pages")
	flags.StringSlice("pages", nil, "pages to build, in order (default: every page)")
	flags.StringSlice("modules", nil, "modules @docs targets resolve against")
	flags.Bool("strict-refs", false, "treat ambiguous symbol references as errors")
	flags.Int("workers", 0, "concurrent page workers (0 = one per page)")
	flags.String("provider", "", "symbol provider (memory|file|sql)")
	flags.String("symbols", "", "symbol table file for the file provider")
	flags.Bool("fail-on-warnings", false, "exit non-zero when warnings are reported")
}

func runBuild(cmd *cobra.Command, dryRun bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dryRun && cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}

	module, err := refdocs.New(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	strict, _ := cmd.Flags().GetBool("fail-on-warnings")
	out, err := module.Build(ctx, refdocs.BuildOptions{DryRun: dryRun, FailOnWarnings: strict})

	p := newPrinter(cmd.OutOrStdout(), colorMode(cmd))
	if out != nil {
		p.diagnostics(out.Result.Diagnostics)
		p.summary(out, dryRun)
	}
	if errors.Is(err, refdocs.ErrBuildFailed) {
		return exitError{code: 1}
	}
	return err
}

func colorMode(cmd *cobra.Command) string {
	mode, _ := cmd.Flags().GetString("color")
	return mode
}
