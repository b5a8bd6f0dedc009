package dbt

import (
	"bytes"
	"context"
	"os/exec"

	"revenuecast/internal/observability"
	"revenuecast/pkg/errors"
)

// Runner invokes the external transformation engine against a generated
// profile and model graph, blocking until it completes.
type Runner struct {
	Binary      string
	ProjectDir  string
	ProfilesDir string
	logger      *observability.Logger
}

// NewRunner creates a runner for the given project and profiles directories
func NewRunner(binary, projectDir, profilesDir string) *Runner {
	if binary == "" {
		binary = "dbt"
	}
	if profilesDir == "" {
		profilesDir = DefaultProfilesDir()
	}
	return &Runner{
		Binary:      binary,
		ProjectDir:  projectDir,
		ProfilesDir: profilesDir,
		logger:      observability.Default().WithField("stage", "transform"),
	}
}

// Run executes `dbt run`. On a non-zero exit it returns a transformation
// error carrying the engine's combined output verbatim; the pipeline must
// not proceed to forecasting after that.
func (r *Runner) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Binary, "run",
		"--project-dir", r.ProjectDir,
		"--profiles-dir", r.ProfilesDir,
	)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	r.logger.Info("running transformation engine: %s run --project-dir %s", r.Binary, r.ProjectDir)

	if err := cmd.Run(); err != nil {
		return errors.TransformationError("Transformation engine failed", output.String(), err).
			WithContext("project_dir", r.ProjectDir)
	}

	r.logger.Info("transformation complete, mart table is fresh")
	return nil
}
