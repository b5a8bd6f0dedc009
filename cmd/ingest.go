package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"revenuecast/internal/pipeline"
	"revenuecast/internal/ui"
)

var ingestInputFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the raw subscription JSON file into PostgreSQL",
	Long: "Creates the raw_saas_metrics table if needed and loads the input file in a\n" +
		"single transaction. Any bad record aborts the whole batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		run := newRun(cfg, ingestInputFile)
		defer run.Close()

		if err := pipeline.IngestOnly().Execute(cmd.Context(), run); err != nil {
			return err
		}

		ui.ShowSuccess(fmt.Sprintf("ingested %d raw records from %s", run.IngestedCount, run.InputFile))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestInputFile, "input", "i", "", "path to the raw subscription JSON file")
	rootCmd.AddCommand(ingestCmd)
}
