package main

import (
	"github.com/spf13/cobra"

	"qdc/internal/config"
)

var (
	fetchRawDataset bool
	fetchNoDocs     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the project files without compiling",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner(fetchRawDataset, !fetchNoDocs, false)
		return runner.Fetch(cmd.Context())
	},
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchRawDataset, "raw-dataset", "r",
		config.BoolFromEnv(config.EnvRawDataset, false),
		"Store the raw dataset inside the output directory")
	fetchCmd.Flags().BoolVarP(&fetchNoDocs, "no-docs", "n",
		!config.BoolFromEnv(config.EnvDocs, true),
		"Skip downloading the supplemental project documents")
}
