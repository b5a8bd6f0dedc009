package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"revenuecast/internal/config"
	"revenuecast/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively create the configuration file",
	Long: "Walks through project, transformation, and forecast settings and writes them\n" +
		"to the config file. Database credentials are read from the DB_HOST, DB_PORT,\n" +
		"DB_NAME, DB_USER, and DB_PASS environment variables and are never persisted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists() {
			overwrite, err := ui.Confirm("A configuration file already exists. Overwrite it?", false)
			if err != nil {
				return err
			}
			if !overwrite {
				ui.ShowInfo("keeping the existing configuration")
				return nil
			}
		}

		cfg, err := ui.NewConfigWizard().Run()
		if err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		ui.ShowSuccess(fmt.Sprintf("configuration written to %s", config.GetConfigFile()))
		ui.ShowInfo("export DB_HOST, DB_PORT, DB_NAME, DB_USER, and DB_PASS (or use a .env file) before running the pipeline")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
