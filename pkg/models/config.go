package models

// Config is the application configuration persisted under ~/.revenuecast.
// Database credentials are deliberately absent: they are sourced from the
// environment on every run and never written to disk.
type Config struct {
	Project  Project  `yaml:"project"`
	Dbt      Dbt      `yaml:"dbt"`
	Forecast Forecast `yaml:"forecast"`
}

// Project holds pipeline project settings
type Project struct {
	Name      string `yaml:"name"`       // dbt profile key, e.g. "financial_forecasting"
	Dir       string `yaml:"dir"`        // dbt project directory
	InputFile string `yaml:"input_file"` // default raw JSON input path
	Schema    string `yaml:"schema"`     // target schema for all tables
}

// Dbt holds transformation engine settings
type Dbt struct {
	Binary      string `yaml:"binary"`       // dbt executable name or path
	ProfilesDir string `yaml:"profiles_dir"` // directory holding profiles.yml
	Target      string `yaml:"target"`       // profile target name
}

// Forecast holds forecasting settings
type Forecast struct {
	Horizon      int     `yaml:"horizon"`       // future periods to forecast
	SeasonLength int     `yaml:"season_length"` // months per seasonal cycle
	Interval     float64 `yaml:"interval"`      // uncertainty interval width, e.g. 0.95
	PreviewRows  int     `yaml:"preview_rows"`  // forecast rows shown after publish
}

// ApplyDefaults fills unset fields with the standard pipeline configuration
func (c *Config) ApplyDefaults() {
	if c.Project.Name == "" {
		c.Project.Name = "financial_forecasting"
	}
	if c.Project.Dir == "" {
		c.Project.Dir = "financial_forecasting"
	}
	if c.Project.InputFile == "" {
		c.Project.InputFile = "raw_saas_data.json"
	}
	if c.Project.Schema == "" {
		c.Project.Schema = "public"
	}
	if c.Dbt.Binary == "" {
		c.Dbt.Binary = "dbt"
	}
	if c.Dbt.Target == "" {
		c.Dbt.Target = "dev"
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = 24
	}
	if c.Forecast.SeasonLength == 0 {
		c.Forecast.SeasonLength = 12
	}
	if c.Forecast.Interval == 0 {
		c.Forecast.Interval = 0.95
	}
	if c.Forecast.PreviewRows == 0 {
		c.Forecast.PreviewRows = 12
	}
}
