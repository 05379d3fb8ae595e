package cmd

import (
	"fmt"
	"os"

	"github.com/birlc/birl/output"
	"github.com/birlc/birl/telemetry"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "birl",
	Short: "A pruned-SSA optimizing compiler for the Bril-like IR",
	Long: `Birl - reads a JSON-encoded function IR, builds its control-flow graph,
computes dominators, converts to pruned SSA form, and runs a configurable
pipeline of local and global optimizations.

Every stage can be inspected independently: basic blocks, the CFG with
dominator/frontier annotations, or the renamed SSA form.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		verboseFlag, _ = cmd.Flags().GetBool("verbose")             //nolint:all
		telemetry.LoadEnvFile()
		telemetry.Init(disableMetrics)
		telemetry.SetVersion(Version)

		// Show banner for help command
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			verbosity := output.VerbosityDefault
			if verboseFlag {
				verbosity = output.VerbosityVerbose
			}
			logger := output.NewLogger(verbosity)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymous usage metrics")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
