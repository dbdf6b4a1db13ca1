package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qdc/internal/config"
	"qdc/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	// cfg is loaded once by the root PersistentPreRunE and read by
	// every subcommand.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qdc",
	Short: "Compile the 74bzs open-science survey dataset",
	Long: "qdc downloads the Qualtrics survey export published at\n" +
		"https://doi.org/10.17605/osf.io/74bzs and compiles its categorical\n" +
		"columns into small integer codes.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logging.Init(level, flagLogFormat)

		cfg = config.Default()
		if flagConfig != "" {
			cfg, err = config.LoadFromPath(flagConfig)
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config override file (YAML/JSON)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text|json)")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
