package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenuecast/pkg/models"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("REVENUECAST_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "financial_forecasting", cfg.Project.Name)
	assert.Equal(t, 24, cfg.Forecast.Horizon)
}

func TestSaveAndLoad(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("REVENUECAST_CONFIG", configFile)

	cfg := &models.Config{
		Project:  models.Project{Name: "financial_forecasting", Dir: "/srv/dbt", Schema: "public"},
		Dbt:      models.Dbt{Binary: "dbt", Target: "dev"},
		Forecast: models.Forecast{Horizon: 24, SeasonLength: 12, Interval: 0.95, PreviewRows: 12},
	}

	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/dbt", loaded.Project.Dir)
	assert.Equal(t, 24, loaded.Forecast.Horizon)
}

func TestSaveUsesRestrictivePermissions(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("REVENUECAST_CONFIG", configFile)

	var cfg models.Config
	cfg.ApplyDefaults()
	require.NoError(t, Save(&cfg))

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("REVENUECAST_CONFIG", configFile)
	require.NoError(t, os.WriteFile(configFile, []byte("project: [unclosed"), 0600))

	_, err := Load()
	assert.Error(t, err)
}
