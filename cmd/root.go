package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revenuecast/internal/config"
	"revenuecast/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "revenuecast",
	Short: "Forecast monthly recurring revenue from raw subscription data",
	Long: "RevenueCast - a batch pipeline that loads raw SaaS subscription records into\n" +
		"PostgreSQL, builds a monthly revenue mart with dbt, and publishes a 24-month\n" +
		"seasonal forecast with confidence bands.",
}

// Execute runs the root command, printing a formatted error and exiting
// non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(config.GetConfigPath())
	viper.SetEnvPrefix("REVENUECAST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay; defaults cover everything
	}
}
