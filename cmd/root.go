// Package cmd implements the acidtest standalone runner's CLI surface:
// flag parsing, banner display, and wiring the CORE packages
// (bundle/config/acidtest/output) together. Grounded on the teacher's
// own cmd package: a cobra root command with persistent flags, a
// PersistentPreRun that loads the analytics env file and shows the
// startup banner, and one subcommand per user-facing operation.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/currentlycurrently/acidtest/analytics"
	"github.com/currentlycurrently/acidtest/output"
)

var (
	verboseFlag bool
	debugFlag   bool

	// Version and GitCommit are injected at build time via -ldflags.
	Version   = "0.1.0"
	GitCommit = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "acidtest",
	Short: "Trust scanner for AI-agent skill bundles",
	Long: `acidtest scans a self-contained AI-agent bundle (a SKILL.md manifest plus
its code) for prompt-injection, credential-exfiltration, and
capability-mismatch risk, and produces a scored trust verdict.

Learn more: https://github.com/currentlycurrently/acidtest`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics")
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
		analytics.SetVersion(Version)

		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

// Execute runs the root command; the caller (main) is responsible for
// mapping a returned error to a process exit code.
func Execute() error {
	return rootCmd.Execute()
}

func loggerVerbosity() output.VerbosityLevel {
	switch {
	case debugFlag:
		return output.VerbosityDebug
	case verboseFlag:
		return output.VerbosityVerbose
	default:
		return output.VerbosityDefault
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymized usage metrics")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Show per-layer progress and timing")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug diagnostics")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable the startup banner")
}
