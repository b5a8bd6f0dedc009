package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"revenuecast/internal/pipeline"
	"revenuecast/internal/ui"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Fit the seasonal model on the mart and publish the forecast table",
	Long: "Reads fact_monthly_revenue, fits an additive seasonal model over the monthly\n" +
		"history, extends it 24 months with confidence bands, and replaces the\n" +
		"fact_monthly_revenue_forecast table with the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		run := newRun(cfg, "")
		defer run.Close()

		if err := pipeline.ForecastOnly().Execute(cmd.Context(), run); err != nil {
			return err
		}

		points := run.Forecast.Points()
		ui.ShowSuccess(fmt.Sprintf("published %d forecast rows (%d history, %d horizon)",
			len(points), run.Series.Len(), len(points)-run.Series.Len()))
		ui.RenderForecastPreview(os.Stdout, points, cfg.Forecast.PreviewRows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}
