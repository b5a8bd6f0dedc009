package dbt

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenuecast/pkg/errors"
)

// writeStubEngine writes an executable shell script standing in for dbt
func writeStubEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub engine scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "dbt-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0700))
	return path
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner("", "/srv/project", "")

	assert.Equal(t, "dbt", runner.Binary)
	assert.Equal(t, "/srv/project", runner.ProjectDir)
	assert.NotEmpty(t, runner.ProfilesDir)
}

func TestRunSuccess(t *testing.T) {
	stub := writeStubEngine(t, "echo 'Completed successfully'\nexit 0\n")
	runner := NewRunner(stub, t.TempDir(), t.TempDir())

	assert.NoError(t, runner.Run(context.Background()))
}

func TestRunFailureCarriesEngineOutput(t *testing.T) {
	stub := writeStubEngine(t, "echo 'Compilation Error in model fact_monthly_revenue' >&2\nexit 1\n")
	runner := NewRunner(stub, t.TempDir(), t.TempDir())

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTransformFailed, errors.GetErrorCode(err))

	appErr := err.(*errors.AppError)
	assert.Contains(t, appErr.Context["engine_output"], "Compilation Error in model fact_monthly_revenue")
}

func TestRunMissingBinary(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "no-such-dbt"), t.TempDir(), t.TempDir())

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTransformFailed, errors.GetErrorCode(err))
}
