package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command when called without subcommands. A bare file
// argument runs a one-shot analysis, matching the original workflow
// (`logcheck output.log`).
var rootCmd = &cobra.Command{
	Use:   "logcheck [log-file]",
	Short: "Logcheck — Logger thread-safety output analyzer",
	Long: `Logcheck analyzes the serial output of the Logger thread-safety test
suite for evidence of unsynchronized backends: interleaved lines, torn
timestamps, truncated messages, and out-of-order worker sequences.

Capture the test run first, then analyze it:
  pio run -t monitor | tee output.log
  logcheck output.log`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one log file argument")
		}
		return runAnalyze(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.logcheck.yaml)")
	rootCmd.PersistentFlags().Int("expected", 50, "expected messages per worker task")
	rootCmd.PersistentFlags().Int("width", 80, "display width for offending lines")
	rootCmd.PersistentFlags().Int("examples", 3, "offending lines shown per finding kind")

	viper.BindPFlag("expected", rootCmd.PersistentFlags().Lookup("expected"))
	viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	viper.BindPFlag("examples", rootCmd.PersistentFlags().Lookup("examples"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logcheck")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
