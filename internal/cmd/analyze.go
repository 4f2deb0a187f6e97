package cmd

import (
	"fmt"
	"os"

	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <log-file>",
	Short: "Analyze a captured test log for corruption patterns",
	Long: `Analyze reads a completed harness log once, partitions it into backend
sections, runs the corruption detectors on every line, and prints the
report to standard output.

Corruption findings are results, not failures: the exit status is zero
whenever the file could be read in full.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer f.Close()

	a := analyzer.New()
	if err := a.AnalyzeReader(f); err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	gen := report.NewGenerator(os.Stdout, reportOptions())
	return gen.Render(a.Snapshot())
}

// reportOptions resolves presentation options from flags, config file, and
// environment.
func reportOptions() report.Options {
	opts := report.DefaultOptions()
	if v := viper.GetInt("expected"); v > 0 {
		opts.ExpectedPerWorker = v
	}
	if v := viper.GetInt("width"); v > 0 {
		opts.TruncateWidth = v
	}
	if v := viper.GetInt("examples"); v > 0 {
		opts.MaxExamples = v
	}
	return opts
}
