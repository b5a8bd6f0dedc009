package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"revenuecast/internal/config"
	"revenuecast/internal/pipeline"
	"revenuecast/internal/ui"
	"revenuecast/pkg/models"
)

var runInputFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: ingest, transform, forecast, publish",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ui.ShowHeader("RevenueCast Pipeline")

		run := newRun(cfg, runInputFile)
		defer run.Close()

		if err := pipeline.Full().Execute(cmd.Context(), run); err != nil {
			return err
		}

		ui.ShowSuccess(fmt.Sprintf("ingested %d raw records", run.IngestedCount))
		ui.ShowSuccess(fmt.Sprintf("published %d forecast rows", len(run.Forecast.Points())))
		ui.ShowInfo("forecast tail (history + horizon):")
		ui.RenderForecastPreview(os.Stdout, run.Forecast.Points(), cfg.Forecast.PreviewRows)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInputFile, "input", "i", "", "path to the raw subscription JSON file")
	rootCmd.AddCommand(runCmd)
}

// loadConfig reads the persisted configuration, falling back to defaults
// when no config file exists
func loadConfig() (*models.Config, error) {
	return config.Load()
}

// newRun builds the shared pipeline state, letting a flag override the
// configured input file
func newRun(cfg *models.Config, inputOverride string) *pipeline.Run {
	input := cfg.Project.InputFile
	if inputOverride != "" {
		input = inputOverride
	}
	return &pipeline.Run{Config: cfg, InputFile: input}
}
