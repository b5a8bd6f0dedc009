package pipeline

import (
	"context"
	"fmt"

	"revenuecast/internal/config"
	"revenuecast/internal/dbt"
	"revenuecast/internal/forecast"
	"revenuecast/internal/ingest"
	"revenuecast/internal/observability"
	"revenuecast/internal/postgres"
	"revenuecast/pkg/errors"
	"revenuecast/pkg/models"
)

// Run carries state between pipeline stages. Each stage reads what its
// predecessors produced and adds its own result.
type Run struct {
	Config    *models.Config
	InputFile string

	Credentials   *config.Credentials
	DB            *postgres.Service
	IngestedCount int
	Series        models.Series
	Forecast      *forecast.Result
}

// Close releases any resources the run acquired. Safe to call regardless
// of which stage failed.
func (r *Run) Close() {
	if r.DB != nil {
		r.DB.Close()
	}
}

// Stage is one step of the pipeline: a named function from the shared run
// state to a typed error.
type Stage struct {
	Name string
	Run  func(ctx context.Context, run *Run) error
}

// Pipeline is an explicit ordered list of stages executed strictly
// sequentially. A failure in any stage aborts the run; there is no
// partial-success mode and no retry.
type Pipeline struct {
	Stages []Stage
	logger *observability.Logger
}

// New builds a pipeline over the given stages
func New(stages ...Stage) *Pipeline {
	return &Pipeline{
		Stages: stages,
		logger: observability.Default().WithField("component", "pipeline"),
	}
}

// Execute runs every stage in order, stopping at the first failure. The
// returned error names the failing stage.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, stage := range p.Stages {
		p.logger.Info("stage %s starting", stage.Name)
		if err := stage.Run(ctx, run); err != nil {
			p.logger.Error("stage %s failed: %v", stage.Name, err)
			return errors.Wrap(err, errors.GetErrorCode(err), fmt.Sprintf("stage %s failed", stage.Name))
		}
		p.logger.Info("stage %s complete", stage.Name)
	}
	return nil
}

// Stage constructors. Each returns a pure function over the run state so
// stages can be unit tested without a live database.

// ResolveCredentials validates the five DB_* environment variables before
// any network or file I/O happens.
func ResolveCredentials() Stage {
	return Stage{
		Name: "resolve-credentials",
		Run: func(ctx context.Context, run *Run) error {
			creds, err := config.ResolveCredentials()
			if err != nil {
				return err
			}
			run.Credentials = creds
			return nil
		},
	}
}

// Connect opens the database connection used by the run
func Connect() Stage {
	return Stage{
		Name: "connect",
		Run: func(ctx context.Context, run *Run) error {
			run.DB = postgres.NewService(postgres.ConfigFromCredentials(run.Credentials))
			return run.DB.Connect()
		},
	}
}

// EnsureSchema idempotently creates the raw metrics table
func EnsureSchema() Stage {
	return Stage{
		Name: "ensure-schema",
		Run: func(ctx context.Context, run *Run) error {
			return ingest.NewService(run.DB).EnsureSchema(ctx)
		},
	}
}

// Ingest loads the raw input file in one transaction
func Ingest() Stage {
	return Stage{
		Name: "ingest",
		Run: func(ctx context.Context, run *Run) error {
			count, err := ingest.NewService(run.DB).Ingest(ctx, run.InputFile)
			if err != nil {
				return err
			}
			run.IngestedCount = count
			return nil
		},
	}
}

// WriteProfile materializes the dbt connection profile
func WriteProfile() Stage {
	return Stage{
		Name: "write-profile",
		Run: func(ctx context.Context, run *Run) error {
			profile, err := dbt.NewProfile(
				run.Config.Project.Name,
				run.Config.Dbt.Target,
				run.Config.Project.Schema,
				run.Credentials,
			)
			if err != nil {
				return err
			}
			return profile.Write(profilesDir(run.Config))
		},
	}
}

// WriteModelGraph materializes the source, staging, schema, and mart
// declarations under the project directory
func WriteModelGraph() Stage {
	return Stage{
		Name: "write-models",
		Run: func(ctx context.Context, run *Run) error {
			graph := dbt.DefaultModelGraph(run.Config.Project.Name, run.Config.Project.Schema)
			return graph.Write(run.Config.Project.Dir)
		},
	}
}

// RunTransformation invokes the transformation engine and blocks until it
// completes
func RunTransformation() Stage {
	return Stage{
		Name: "run-transformation",
		Run: func(ctx context.Context, run *Run) error {
			runner := dbt.NewRunner(run.Config.Dbt.Binary, run.Config.Project.Dir, profilesDir(run.Config))
			return runner.Run(ctx)
		},
	}
}

// LoadSeries reads the mart table into the canonical series
func LoadSeries() Stage {
	return Stage{
		Name: "load-series",
		Run: func(ctx context.Context, run *Run) error {
			series, err := forecast.LoadSeries(ctx, run.DB)
			if err != nil {
				return err
			}
			run.Series = series
			return nil
		},
	}
}

// FitForecast fits the seasonal additive model and extends the horizon
func FitForecast() Stage {
	return Stage{
		Name: "fit-forecast",
		Run: func(ctx context.Context, run *Run) error {
			engine := forecast.NewEngine(run.Config.Forecast)
			result, err := engine.Fit(run.Series)
			if err != nil {
				return err
			}
			run.Forecast = result
			return nil
		},
	}
}

// PublishForecast writes the forecast table wholesale, replacing prior
// content
func PublishForecast() Stage {
	return Stage{
		Name: "publish-forecast",
		Run: func(ctx context.Context, run *Run) error {
			return forecast.Publish(ctx, run.DB, run.Forecast.Points())
		},
	}
}

func profilesDir(cfg *models.Config) string {
	if cfg.Dbt.ProfilesDir != "" {
		return cfg.Dbt.ProfilesDir
	}
	return dbt.DefaultProfilesDir()
}

// Full returns the complete pipeline: ingest, transform, forecast, publish
func Full() *Pipeline {
	return New(
		ResolveCredentials(),
		Connect(),
		EnsureSchema(),
		Ingest(),
		WriteProfile(),
		WriteModelGraph(),
		RunTransformation(),
		LoadSeries(),
		FitForecast(),
		PublishForecast(),
	)
}

// IngestOnly returns the ingestion slice of the pipeline
func IngestOnly() *Pipeline {
	return New(
		ResolveCredentials(),
		Connect(),
		EnsureSchema(),
		Ingest(),
	)
}

// TransformOnly returns the transformation slice of the pipeline
func TransformOnly() *Pipeline {
	return New(
		ResolveCredentials(),
		WriteProfile(),
		WriteModelGraph(),
		RunTransformation(),
	)
}

// ForecastOnly returns the forecasting slice of the pipeline, assuming a
// fresh mart table
func ForecastOnly() *Pipeline {
	return New(
		ResolveCredentials(),
		Connect(),
		LoadSeries(),
		FitForecast(),
		PublishForecast(),
	)
}
