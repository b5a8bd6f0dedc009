package dbt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestModelGraphWrite(t *testing.T) {
	projectDir := t.TempDir()
	graph := DefaultModelGraph("financial_forecasting", "public")

	require.NoError(t, graph.Write(projectDir))

	stagingDir := filepath.Join(projectDir, "models", "staging")
	martsDir := filepath.Join(projectDir, "models", "marts")

	for _, path := range []string{
		filepath.Join(stagingDir, "sources.yml"),
		filepath.Join(stagingDir, "stg_raw_saas_metrics_data.sql"),
		filepath.Join(stagingDir, "schema.yml"),
		filepath.Join(martsDir, "fact_monthly_revenue.sql"),
		filepath.Join(projectDir, "dbt_project.yml"),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestModelGraphStagingSQL(t *testing.T) {
	graph := DefaultModelGraph("financial_forecasting", "public")
	sql := graph.stagingSQL()

	assert.Contains(t, sql, "{{ source('raw', 'raw_saas_metrics') }}")
	assert.Contains(t, sql, "CAST(customer_id AS INTEGER)")
	assert.Contains(t, sql, "CAST(subscription_start_date AS DATE)")
	assert.Contains(t, sql, "CAST(monthly_recurring_revenue AS NUMERIC)")
	assert.Contains(t, sql, "CAST(churn_date AS DATE)")
	assert.Contains(t, sql, "CAST(plan_type AS VARCHAR)")
}

func TestModelGraphMartSQL(t *testing.T) {
	graph := DefaultModelGraph("financial_forecasting", "public")
	sql := graph.martSQL()

	assert.Contains(t, sql, "DATE_TRUNC('month', subscription_start_date) AS subscription_month")
	assert.Contains(t, sql, "SUM(monthly_recurring_revenue) AS monthly_recurring_revenue")
	assert.Contains(t, sql, "{{ ref('stg_raw_saas_metrics_data') }}")
	assert.Contains(t, sql, "GROUP BY 1")
	assert.Contains(t, sql, "ORDER BY 1")
}

func TestModelGraphSchemaTests(t *testing.T) {
	projectDir := t.TempDir()
	graph := DefaultModelGraph("financial_forecasting", "public")
	require.NoError(t, graph.Write(projectDir))

	data, err := os.ReadFile(filepath.Join(projectDir, "models", "staging", "schema.yml"))
	require.NoError(t, err)

	var doc schemaFile
	require.NoError(t, yaml.Unmarshal(data, &doc))

	require.Len(t, doc.Models, 1)
	model := doc.Models[0]
	assert.Equal(t, "stg_raw_saas_metrics_data", model.Name)

	require.Len(t, model.Columns, 2)
	assert.Equal(t, []string{"unique", "not_null"}, model.Columns[0].Tests)
	assert.Equal(t, []string{"not_null"}, model.Columns[1].Tests)
}

func TestModelGraphWriteIsIdempotent(t *testing.T) {
	projectDir := t.TempDir()
	graph := DefaultModelGraph("financial_forecasting", "public")

	require.NoError(t, graph.Write(projectDir))
	first, err := os.ReadFile(filepath.Join(projectDir, "models", "marts", "fact_monthly_revenue.sql"))
	require.NoError(t, err)

	require.NoError(t, graph.Write(projectDir))
	second, err := os.ReadFile(filepath.Join(projectDir, "models", "marts", "fact_monthly_revenue.sql"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEnsureProjectFilePatchesExisting(t *testing.T) {
	projectDir := t.TempDir()
	existing := "name: \"financial_forecasting\"\nconfig-version: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "dbt_project.yml"), []byte(existing), 0644))

	graph := DefaultModelGraph("financial_forecasting", "public")
	require.NoError(t, graph.Write(projectDir))

	data, err := os.ReadFile(filepath.Join(projectDir, "dbt_project.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `model-paths: ["models/staging", "models/marts"]`)
}
