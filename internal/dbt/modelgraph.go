package dbt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"revenuecast/internal/common"
	"revenuecast/pkg/errors"
)

// ModelGraph is the in-memory model graph the transformation engine
// compiles: one source declaration, one staging model with schema tests,
// and one mart model. Writing it to disk is a serialization step over this
// struct.
type ModelGraph struct {
	ProfileName  string
	SourceName   string
	SourceSchema string
	SourceTable  string
	StagingModel string
	MartModel    string
}

// DefaultModelGraph returns the monthly revenue model graph
func DefaultModelGraph(profileName, schema string) ModelGraph {
	return ModelGraph{
		ProfileName:  profileName,
		SourceName:   "raw",
		SourceSchema: schema,
		SourceTable:  "raw_saas_metrics",
		StagingModel: "stg_raw_saas_metrics_data",
		MartModel:    "fact_monthly_revenue",
	}
}

type sourcesFile struct {
	Version int          `yaml:"version"`
	Sources []sourceDecl `yaml:"sources"`
}

type sourceDecl struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Schema      string        `yaml:"schema"`
	Tables      []sourceTable `yaml:"tables"`
}

type sourceTable struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type schemaFile struct {
	Version int           `yaml:"version"`
	Models  []modelSchema `yaml:"models"`
}

type modelSchema struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Columns     []columnSchema `yaml:"columns"`
}

type columnSchema struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tests       []string `yaml:"tests,omitempty"`
}

// stagingSQL casts every raw column to its canonical type and passes rows
// through otherwise unchanged.
func (g ModelGraph) stagingSQL() string {
	return fmt.Sprintf(`WITH source_data AS (
    SELECT
        customer_id,
        subscription_start_date,
        monthly_recurring_revenue,
        churn_date,
        plan_type
    FROM
        {{ source('%s', '%s') }}
)
SELECT
    CAST(customer_id AS INTEGER) AS customer_id,
    CAST(subscription_start_date AS DATE) AS subscription_start_date,
    CAST(monthly_recurring_revenue AS NUMERIC) AS monthly_recurring_revenue,
    CAST(churn_date AS DATE) AS churn_date,
    CAST(plan_type AS VARCHAR) AS plan_type
FROM
    source_data
`, g.SourceName, g.SourceTable)
}

// martSQL truncates each subscription start date to month granularity and
// sums revenue per month, ordered ascending for time-series consumption.
func (g ModelGraph) martSQL() string {
	return fmt.Sprintf(`SELECT
    DATE_TRUNC('month', subscription_start_date) AS subscription_month,
    SUM(monthly_recurring_revenue) AS monthly_recurring_revenue
FROM
    {{ ref('%s') }}
GROUP BY 1
ORDER BY 1
`, g.StagingModel)
}

func (g ModelGraph) sourcesYAML() ([]byte, error) {
	return yaml.Marshal(sourcesFile{
		Version: 2,
		Sources: []sourceDecl{{
			Name:        g.SourceName,
			Description: "Raw data ingested from external sources.",
			Schema:      g.SourceSchema,
			Tables: []sourceTable{{
				Name:        g.SourceTable,
				Description: "Raw financial metrics data ingested from a JSON file.",
			}},
		}},
	})
}

func (g ModelGraph) schemaYAML() ([]byte, error) {
	return yaml.Marshal(schemaFile{
		Version: 2,
		Models: []modelSchema{{
			Name:        g.StagingModel,
			Description: "Staging model for raw SaaS metrics data.",
			Columns: []columnSchema{
				{
					Name:        "customer_id",
					Description: "The unique identifier for a customer.",
					Tests:       []string{"unique", "not_null"},
				},
				{
					Name:        "subscription_start_date",
					Description: "The date the customer's subscription began.",
					Tests:       []string{"not_null"},
				},
			},
		}},
	})
}

// Write materializes the model graph under projectDir/models, creating the
// staging and marts directories as needed. Re-running overwrites prior
// content.
func (g ModelGraph) Write(projectDir string) error {
	stagingDir := filepath.Join(projectDir, "models", "staging")
	martsDir := filepath.Join(projectDir, "models", "marts")

	for _, dir := range []string{stagingDir, martsDir} {
		if err := common.EnsureDir(dir, common.DirPermissionPrivate); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to create model directory")
		}
	}

	sources, err := g.sourcesYAML()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to marshal sources.yml")
	}
	schema, err := g.schemaYAML()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to marshal schema.yml")
	}

	files := map[string][]byte{
		filepath.Join(stagingDir, "sources.yml"):         sources,
		filepath.Join(stagingDir, g.StagingModel+".sql"): []byte(g.stagingSQL()),
		filepath.Join(stagingDir, "schema.yml"):          schema,
		filepath.Join(martsDir, g.MartModel+".sql"):      []byte(g.martSQL()),
	}

	for path, content := range files {
		if err := os.WriteFile(path, content, common.FilePermissionNormal); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write model file").
				WithContext("path", path)
		}
	}

	return ensureProjectFile(projectDir, g.ProfileName)
}

// ensureProjectFile generates dbt_project.yml if absent, or patches an
// existing one that lacks model-paths.
func ensureProjectFile(projectDir, profileName string) error {
	path := filepath.Join(projectDir, "dbt_project.yml")

	data, err := os.ReadFile(path) // #nosec G304 - project dir comes from validated config
	if os.IsNotExist(err) {
		content := fmt.Sprintf(`name: %q
version: "1.0.0"
config-version: 2

profile: %q

model-paths: ["models/staging", "models/marts"]
`, profileName, profileName)
		if err := os.WriteFile(path, []byte(content), common.FilePermissionNormal); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write dbt_project.yml")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to read dbt_project.yml")
	}

	content := string(data)
	if !strings.Contains(content, "model-paths:") {
		content = strings.Replace(content, "config-version: 2",
			"config-version: 2\n\nmodel-paths: [\"models/staging\", \"models/marts\"]", 1)
		if err := os.WriteFile(path, []byte(content), common.FilePermissionNormal); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to update dbt_project.yml")
		}
	}

	return nil
}
