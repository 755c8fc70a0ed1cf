package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/currentlycurrently/acidtest/acidtest"
	"github.com/currentlycurrently/acidtest/analytics"
	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/discover"
	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/output"
	"github.com/currentlycurrently/acidtest/watch"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an AI-agent skill bundle and produce a trust verdict",
	Long: `Scan a skill bundle directory and produce a scored trust verdict.

Examples:
  # Scan a bundle, printing text to stdout
  acidtest scan --bundle ./weather-skill

  # Scan with a custom rule pattern directory
  acidtest scan --bundle ./weather-skill --patterns ./rules

  # JSON output for machine consumption
  acidtest scan --bundle ./weather-skill --output json

  # SARIF output for code-scanning integrations
  acidtest scan --bundle ./weather-skill --output sarif --output-file results.sarif

  # Fail the process (exit 1) only below a score threshold
  acidtest scan --bundle ./weather-skill --min-score 50`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bundlePath, _ := cmd.Flags().GetString("bundle")
		watchMode, _ := cmd.Flags().GetBool("watch")

		if bundlePath == "" {
			analytics.ReportEventWithProperties(analytics.ScanFailed, map[string]interface{}{"error_type": "validation"})
			return fmt.Errorf("--bundle flag is required")
		}

		if !watchMode {
			exitCode, err := runScanOnce(cmd, bundlePath)
			if err != nil {
				return err
			}
			os.Exit(int(exitCode))
			return nil
		}

		return runScanWatch(cmd, bundlePath)
	},
}

// runScanOnce runs a single scan and renders its result to stdout or
// --output-file, returning the process exit code the caller should use.
func runScanOnce(cmd *cobra.Command, bundlePath string) (output.ExitCode, error) {
	startTime := time.Now()

	patternsDir, _ := cmd.Flags().GetString("patterns")
	outputFormat, _ := cmd.Flags().GetString("output")
	outputFile, _ := cmd.Flags().GetString("output-file")
	showRemediation, _ := cmd.Flags().GetBool("show-remediation")
	noColor, _ := cmd.Flags().GetBool("no-color")
	minScore, _ := cmd.Flags().GetInt("min-score")

	analytics.ReportEventWithProperties(analytics.ScanStarted, map[string]interface{}{
		"output_format": outputFormat,
	})

	logger := output.NewLogger(loggerVerbosity())

	cfg, err := config.Load(bundlePath)
	if err != nil {
		logger.Warning("%s", err)
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if showRemediation {
		cfg.Output.ShowRemediation = true
	}
	if noColor {
		cfg.Output.Colors = false
	}
	if minScore > 0 {
		cfg.Thresholds.MinScore = minScore
	}

	fs := discover.New()
	stop := logger.StartTiming("scan")
	result, errResult, err := acidtest.Scan(context.Background(), fs, bundlePath, patternsDir, cfg, logger)
	stop()

	if err != nil {
		analytics.ReportEventWithProperties(analytics.ScanFailed, map[string]interface{}{"error_type": "internal"})
		return output.ExitFail, err
	}

	if errResult != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errResult.Message)
		analytics.ReportEventWithProperties(analytics.ScanFailed, map[string]interface{}{"error_type": "input"})
		return output.ExitFail, nil
	}

	dest := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return output.ExitFail, fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	if err := renderResult(dest, *result, cfg); err != nil {
		return output.ExitFail, err
	}

	failByThreshold := cfg.Thresholds.MinScore > 0 && result.Score < cfg.Thresholds.MinScore
	analytics.ReportEventWithProperties(analytics.ScanCompleted, map[string]interface{}{
		"status":        string(result.Status),
		"finding_count": len(result.Findings),
		"duration_ms":   time.Since(startTime).Milliseconds(),
	})

	exitCode := output.DetermineExitCode(result.Status, false)
	if failByThreshold {
		exitCode = output.ExitFail
	}
	return exitCode, nil
}

// runScanWatch scans once immediately, then re-scans on every debounced
// batch of filesystem changes under bundlePath until interrupted.
func runScanWatch(cmd *cobra.Command, bundlePath string) error {
	if _, err := runScanOnce(cmd, bundlePath); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	w, err := watch.New(bundlePath, func(changes []watch.Change) {
		fmt.Fprintf(os.Stderr, "\n--- %d file(s) changed, re-scanning ---\n", len(changes))
		if _, err := runScanOnce(cmd, bundlePath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
	}, watch.Options{})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	sig := <-sigChan
	fmt.Fprintf(os.Stderr, "\nreceived %v, stopping watch\n", sig)
	return nil
}

func renderResult(w *os.File, result model.ScanResult, cfg config.Config) error {
	switch cfg.Output.Format {
	case "json":
		return output.NewJSONFormatterWithWriter(w).Format(result)
	case "sarif":
		return output.NewSARIFFormatterWithWriter(w).Format(result)
	default:
		return output.NewTextFormatterWithWriter(w, &output.Options{
			Format:          cfg.Output.Format,
			ShowRemediation: cfg.Output.ShowRemediation,
			Colors:          cfg.Output.Colors,
		}).Format(result)
	}
}

func init() {
	scanCmd.Flags().StringP("bundle", "b", "", "Path to the skill bundle directory to scan (required)")
	scanCmd.Flags().String("patterns", "", "Path to a directory of additional JSON pattern bundles")
	scanCmd.Flags().StringP("output", "o", "text", "Output format: text, json, or sarif")
	scanCmd.Flags().StringP("output-file", "f", "", "Write output to file instead of stdout")
	scanCmd.Flags().Bool("show-remediation", false, "Include remediation guidance in text output")
	scanCmd.Flags().Bool("no-color", false, "Disable ANSI color in text output")
	scanCmd.Flags().Int("min-score", 0, "Exit 1 if the trust score is below this threshold")
	scanCmd.Flags().Bool("watch", false, "Re-scan automatically whenever a bundle file changes")
	rootCmd.AddCommand(scanCmd)
}
