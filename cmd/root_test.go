package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenuecast/pkg/models"
)

func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{"run", "ingest", "transform", "forecast", "setup", "version"}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}

func TestNewRunUsesConfiguredInputByDefault(t *testing.T) {
	cfg := &models.Config{}
	cfg.ApplyDefaults()

	run := newRun(cfg, "")
	assert.Equal(t, cfg.Project.InputFile, run.InputFile)
}

func TestNewRunFlagOverridesInput(t *testing.T) {
	cfg := &models.Config{}
	cfg.ApplyDefaults()

	run := newRun(cfg, "/tmp/other.json")
	assert.Equal(t, "/tmp/other.json", run.InputFile)
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("REVENUECAST_CONFIG", t.TempDir()+"/config.yaml")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "financial_forecasting", cfg.Project.Name)
	assert.Equal(t, 24, cfg.Forecast.Horizon)
}
