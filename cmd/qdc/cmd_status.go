package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qdc/internal/config"
	"qdc/internal/format"
)

var statusRawDataset bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which project artifacts exist locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		tb := format.NewTable(format.ASCII)
		tb.Header("Artifact", "Path", "Present")

		addRow := func(name, path string) {
			_, err := os.Stat(path)
			tb.Row(name, path, format.BoolMark(err == nil))
		}
		addRow("raw dataset", cfg.RawDataPath(statusRawDataset))
		addRow("compiled dataset", cfg.CompiledDataPath())
		for _, doc := range cfg.Docs {
			addRow(doc.Name, cfg.DocPath(doc))
		}

		fmt.Fprintln(cmd.OutOrStdout(), tb.String())
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusRawDataset, "raw-dataset", "r",
		config.BoolFromEnv(config.EnvRawDataset, false),
		"Look for the raw dataset inside the output directory")
}
