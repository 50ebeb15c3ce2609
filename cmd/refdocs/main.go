package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("refdocs: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "refdocs",
		Short:         "Expand documentation directives and resolve @ref links",
		Long:          "refdocs reads markdown pages, splices symbol documentation into @docs blocks, builds @index and @contents listings and rewrites @ref links into concrete targets.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (defaults to ./refdocs.yaml when present)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error)")
	root.PersistentFlags().String("log-provider", "", "logger provider (console|gologger)")

	root.AddCommand(newBuildCmd(), newCheckCmd())
	return root
}
