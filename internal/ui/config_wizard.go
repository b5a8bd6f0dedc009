package ui

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"revenuecast/pkg/models"
)

// ConfigWizard provides an interactive configuration setup. Database
// credentials are deliberately not asked for here: they live in the DB_*
// environment variables (or a .env file) and are never written to disk by
// this tool.
type ConfigWizard struct{}

// NewConfigWizard creates a new configuration wizard
func NewConfigWizard() *ConfigWizard {
	return &ConfigWizard{}
}

// Run executes the configuration wizard and returns the assembled config
func (w *ConfigWizard) Run() (*models.Config, error) {
	ShowHeader("RevenueCast - Configuration Setup")

	config := &models.Config{}
	config.ApplyDefaults()

	if err := w.configureProjectStep(config); err != nil {
		if err == terminal.InterruptErr {
			return nil, fmt.Errorf("configuration cancelled")
		}
		return nil, err
	}

	if err := w.configureForecastStep(config); err != nil {
		if err == terminal.InterruptErr {
			return nil, fmt.Errorf("configuration cancelled")
		}
		return nil, err
	}

	return config, nil
}

func (w *ConfigWizard) configureProjectStep(config *models.Config) error {
	ShowInfo("Project and transformation settings")

	questions := []*survey.Question{
		{
			Name: "name",
			Prompt: &survey.Input{
				Message: "Project name:",
				Default: config.Project.Name,
				Help:    "Used as the dbt project and profile name",
			},
			Validate: survey.Required,
		},
		{
			Name: "dir",
			Prompt: &survey.Input{
				Message: "Project directory:",
				Default: config.Project.Dir,
				Help:    "Where the generated dbt project is written",
			},
			Validate: survey.Required,
		},
		{
			Name: "inputfile",
			Prompt: &survey.Input{
				Message: "Raw input file:",
				Default: config.Project.InputFile,
				Help:    "JSON array of raw subscription records",
			},
			Validate: survey.Required,
		},
		{
			Name: "schema",
			Prompt: &survey.Input{
				Message: "Target schema:",
				Default: config.Project.Schema,
			},
			Validate: survey.Required,
		},
		{
			Name: "binary",
			Prompt: &survey.Input{
				Message: "dbt executable:",
				Default: config.Dbt.Binary,
				Help:    "Path or name of the dbt binary on PATH",
			},
			Validate: survey.Required,
		},
	}

	answers := struct {
		Name      string
		Dir       string
		InputFile string
		Schema    string
		Binary    string
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	config.Project.Name = answers.Name
	config.Project.Dir = answers.Dir
	config.Project.InputFile = answers.InputFile
	config.Project.Schema = answers.Schema
	config.Dbt.Binary = answers.Binary
	return nil
}

func (w *ConfigWizard) configureForecastStep(config *models.Config) error {
	ShowInfo("Forecast settings")

	questions := []*survey.Question{
		{
			Name: "horizon",
			Prompt: &survey.Input{
				Message: "Forecast horizon (months):",
				Default: strconv.Itoa(config.Forecast.Horizon),
			},
			Validate: positiveInt,
		},
		{
			Name: "interval",
			Prompt: &survey.Select{
				Message: "Confidence interval:",
				Options: []string{"0.80", "0.90", "0.95", "0.99"},
				Default: fmt.Sprintf("%.2f", config.Forecast.Interval),
			},
		},
	}

	answers := struct {
		Horizon  string
		Interval string
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	horizon, err := strconv.Atoi(answers.Horizon)
	if err != nil {
		return fmt.Errorf("invalid horizon %q: %w", answers.Horizon, err)
	}
	interval, err := strconv.ParseFloat(answers.Interval, 64)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", answers.Interval, err)
	}

	config.Forecast.Horizon = horizon
	config.Forecast.Interval = interval
	return nil
}

// positiveInt validates that a survey answer parses as a positive integer
func positiveInt(val interface{}) error {
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("expected a string answer")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
