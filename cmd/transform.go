package cmd

import (
	"github.com/spf13/cobra"

	"revenuecast/internal/pipeline"
	"revenuecast/internal/ui"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Generate the dbt project and build the monthly revenue mart",
	Long: "Writes profiles.yml and the model graph (staging view, schema tests, mart\n" +
		"table), then invokes dbt run against the configured target.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		run := newRun(cfg, "")
		defer run.Close()

		spinner := ui.NewSpinner("running transformation")
		spinner.Start()
		err = pipeline.TransformOnly().Execute(cmd.Context(), run)
		if err != nil {
			spinner.Stop(false, "transformation failed")
			return err
		}
		spinner.Stop(true, "fact_monthly_revenue rebuilt")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
