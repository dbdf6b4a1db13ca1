package main

import (
	"github.com/spf13/cobra"

	"qdc/adapters/osf"
	"qdc/internal/compile"
	"qdc/internal/config"
	"qdc/internal/logging"
)

var (
	compileRawDataset bool
	compileNoDocs     bool
	compileForce      bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Download the raw dataset and write the compiled CSV",
	Long: "Download the raw Qualtrics export if absent, remap its categorical\n" +
		"columns to integer codes, and write the compiled CSV. Exits early\n" +
		"when the compiled file already exists (see --force).",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner(compileRawDataset, !compileNoDocs, compileForce)
		return runner.Run(cmd.Context())
	},
}

// newRunner wires a compile.Runner from the loaded config and flags.
func newRunner(rawInOutputDir, fetchDocs, force bool) *compile.Runner {
	client := osf.New(
		osf.WithLogger(logging.New("osf")),
		osf.WithProject(cfg.Project),
	)
	return &compile.Runner{
		Config:         cfg,
		Client:         client,
		Logger:         logging.New("compile"),
		RawInOutputDir: rawInOutputDir,
		FetchDocs:      fetchDocs,
		Force:          force,
	}
}

func init() {
	compileCmd.Flags().BoolVarP(&compileRawDataset, "raw-dataset", "r",
		config.BoolFromEnv(config.EnvRawDataset, false),
		"Store the raw dataset inside the output directory")
	compileCmd.Flags().BoolVarP(&compileNoDocs, "no-docs", "n",
		!config.BoolFromEnv(config.EnvDocs, true),
		"Skip downloading the supplemental project documents")
	compileCmd.Flags().BoolVar(&compileForce,
		"force", config.BoolFromEnv(config.EnvForce, false),
		"Re-download the raw dataset and rebuild the compiled CSV")
}
